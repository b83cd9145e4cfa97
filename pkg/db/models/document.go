package models

import (
	"time"

	"github.com/anadolubroker/sigorta-backend/pkg/enums"
)

// Document is a stored file tied to a customer and, once issued, a
// policy: customer uploads referenced from an offer's additional info,
// payment receipts, and rendered policy documents.
type Document struct {
	ID               int64                  `gorm:"column:id;primaryKey;autoIncrement"`
	Category         enums.DocumentCategory `gorm:"column:category;type:text;not null"`
	FileName         string                 `gorm:"column:file_name;not null"`
	FileURL          string                 `gorm:"column:file_url;not null"`
	FileType         enums.FileType         `gorm:"column:file_type;type:text;not null"`
	FileSize         *int64                 `gorm:"column:file_size"`
	Status           enums.DocumentStatus   `gorm:"column:status;type:text;not null;default:'active'"`
	CustomerID       *int64                 `gorm:"column:customer_id;index"`
	PolicyID         *int64                 `gorm:"column:policy_id;index"`
	ClaimID          *int64                 `gorm:"column:claim_id"`
	UploadedByUserID *int64                 `gorm:"column:uploaded_by_user_id"`
	UploadedAt       time.Time              `gorm:"column:uploaded_at;not null"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
