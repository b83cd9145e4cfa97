package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/anadolubroker/sigorta-backend/pkg/config"
)

// Store persists rendered artifacts (policy PDFs, receipts) and returns
// the public URL they are served from. Raw customer upload mechanics
// live in the separate upload service; this is the write-side seam the
// issuance pipeline needs.
type Store interface {
	SaveDocument(ctx context.Context, data []byte, fileName string) (fileURL string, err error)
}

// DiskStore writes documents under a local root, sharded by date.
type DiskStore struct {
	rootDir   string
	publicURL string
}

// NewDiskStore builds a Store rooted at cfg.RootDir.
func NewDiskStore(cfg config.StorageConfig) (*DiskStore, error) {
	if cfg.RootDir == "" {
		return nil, errors.New("storage root dir is required")
	}
	if err := os.MkdirAll(cfg.RootDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = "/uploads"
	}
	return &DiskStore{rootDir: cfg.RootDir, publicURL: publicURL}, nil
}

// SaveDocument writes the payload and returns its public URL.
func (s *DiskStore) SaveDocument(ctx context.Context, data []byte, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := sanitizeFileName(fileName)
	if name == "" {
		return "", errors.New("file name is required")
	}

	shard := time.Now().UTC().Format("2006/01")
	dir := filepath.Join(s.rootDir, filepath.FromSlash(shard))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating storage dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing document: %w", err)
	}
	return s.publicURL + "/" + path.Join(shard, name), nil
}

func sanitizeFileName(fileName string) string {
	name := path.Base(strings.TrimSpace(fileName))
	if name == "." || name == "/" {
		return ""
	}
	return strings.ReplaceAll(name, " ", "_")
}
