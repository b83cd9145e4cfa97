package policydoc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anadolubroker/sigorta-backend/pkg/auth"
	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	pkgerrors "github.com/anadolubroker/sigorta-backend/pkg/errors"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
	"github.com/anadolubroker/sigorta-backend/pkg/storage"
)

type policyReader interface {
	GetPolicy(ctx context.Context, actor auth.Actor, policyID int64) (*models.Policy, error)
}

type documentRecorder interface {
	Create(ctx context.Context, document *models.Document) (*models.Document, error)
	ListByPolicy(ctx context.Context, policyID int64) ([]models.Document, error)
}

type policyRenderer interface {
	Render(ctx context.Context, snapshot PolicySnapshot) ([]byte, error)
}

// RenderedDocument is the download payload for a policy certificate.
type RenderedDocument struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Service renders policy certificates on demand. The first render for a
// policy is also persisted to storage and recorded as a document row so
// the certificate shows up in document listings.
type Service interface {
	PolicyDocument(ctx context.Context, actor auth.Actor, policyID int64) (*RenderedDocument, error)
}

type service struct {
	policies  policyReader
	documents documentRecorder
	renderer  policyRenderer
	store     storage.Store
	logg      *logger.Logger

	now func() time.Time
}

func NewService(policies policyReader, documents documentRecorder, renderer policyRenderer, store storage.Store, logg *logger.Logger) (Service, error) {
	if policies == nil {
		return nil, errors.New("policy reader is required")
	}
	if documents == nil {
		return nil, errors.New("document repository is required")
	}
	if renderer == nil {
		return nil, errors.New("renderer is required")
	}
	if store == nil {
		return nil, errors.New("document store is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{
		policies:  policies,
		documents: documents,
		renderer:  renderer,
		store:     store,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) PolicyDocument(ctx context.Context, actor auth.Actor, policyID int64) (*RenderedDocument, error) {
	policy, err := s.policies.GetPolicy(ctx, actor, policyID)
	if err != nil {
		return nil, err
	}

	data, err := s.renderer.Render(ctx, SnapshotFromPolicy(*policy))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render policy document")
	}

	fileName := fmt.Sprintf("%s.pdf", policy.PolicyNumber)
	s.recordCertificate(ctx, policy, data, fileName)

	return &RenderedDocument{
		FileName:    fileName,
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// recordCertificate persists the rendered PDF the first time a policy is
// downloaded. Failures here never block the download.
func (s *service) recordCertificate(ctx context.Context, policy *models.Policy, data []byte, fileName string) {
	logCtx := s.logg.WithPolicyID(ctx, policy.ID)

	existing, err := s.documents.ListByPolicy(ctx, policy.ID)
	if err != nil {
		s.logg.Error(logCtx, "failed to check existing policy documents", err)
		return
	}
	for _, doc := range existing {
		if doc.Category == enums.DocumentCategoryPolicy {
			return
		}
	}

	fileURL, err := s.store.SaveDocument(ctx, data, fileName)
	if err != nil {
		s.logg.Error(logCtx, "failed to store policy certificate", err)
		return
	}

	size := int64(len(data))
	_, err = s.documents.Create(ctx, &models.Document{
		Category:   enums.DocumentCategoryPolicy,
		FileName:   fileName,
		FileURL:    fileURL,
		FileType:   enums.FileTypeDocument,
		FileSize:   &size,
		Status:     enums.DocumentStatusActive,
		CustomerID: &policy.CustomerID,
		PolicyID:   &policy.ID,
		UploadedAt: s.now(),
	})
	if err != nil {
		s.logg.Error(logCtx, "failed to record policy certificate", err)
	}
}
