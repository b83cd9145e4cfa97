package documents

import (
	"context"

	"gorm.io/gorm"

	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
)

// Repository exposes document persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, document *models.Document) (*models.Document, error)
	FindByID(ctx context.Context, id int64) (*models.Document, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Document, error)
	ListByPolicy(ctx context.Context, policyID int64) ([]models.Document, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a documents repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, document *models.Document) (*models.Document, error) {
	if err := r.db.WithContext(ctx).Create(document).Error; err != nil {
		return nil, err
	}
	return document, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Document, error) {
	var document models.Document
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&document).Error
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID int64) ([]models.Document, error) {
	var rows []models.Document
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("uploaded_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByPolicy(ctx context.Context, policyID int64) ([]models.Document, error) {
	var rows []models.Document
	err := r.db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		Order("uploaded_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
