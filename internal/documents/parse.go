package documents

import (
	"fmt"
	"strings"
	"time"

	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	"github.com/anadolubroker/sigorta-backend/pkg/types"
)

// categoryByInfoKey maps additional-info blob keys to document
// categories. Keys missing from the map fall back to the generic offer
// document category.
var categoryByInfoKey = map[string]enums.DocumentCategory{
	"deedDocument": enums.DocumentCategoryDeed,
	"healthReport": enums.DocumentCategoryHealthReport,
	"receipt":      enums.DocumentCategoryReceipt,
}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// fileRefFromValue extracts an uploaded-file reference from a blob
// value, re-parsing legacy composite strings when necessary. Returns
// nil when the value is plain text.
func fileRefFromValue(value types.AdditionalInfoValue) *types.FileReference {
	if value.File != nil {
		return value.File
	}
	if parsed := types.ParseAdditionalInfoValue(value.Text); parsed.File != nil {
		return parsed.File
	}
	return nil
}

// documentFromInfoEntry builds the document row for one blob entry.
// A (nil, nil) return means the entry is plain text and carries no file.
func documentFromInfoEntry(key string, value types.AdditionalInfoValue, customerID int64, policyID *int64, uploadedBy *int64, now time.Time) (*models.Document, error) {
	ref := fileRefFromValue(value)
	if ref == nil {
		return nil, nil
	}
	if strings.TrimSpace(ref.URL) == "" {
		return nil, fmt.Errorf("entry %q has an empty file url", key)
	}

	category := enums.DocumentCategoryOffer
	if mapped, ok := categoryByInfoKey[key]; ok {
		category = mapped
	}

	return &models.Document{
		Category:         category,
		FileName:         ref.Label,
		FileURL:          ref.URL,
		FileType:         classifyFileType(ref.URL),
		Status:           enums.DocumentStatusActive,
		CustomerID:       &customerID,
		PolicyID:         policyID,
		UploadedByUserID: uploadedBy,
		UploadedAt:       now,
	}, nil
}

// classifyFileType sniffs the URL extension.
func classifyFileType(fileURL string) enums.FileType {
	lower := strings.ToLower(fileURL)
	if idx := strings.LastIndex(lower, "."); idx >= 0 {
		if _, ok := imageExtensions[lower[idx:]]; ok {
			return enums.FileTypeImage
		}
	}
	return enums.FileTypeDocument
}
