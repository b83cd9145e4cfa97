package offers

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
)

// ErrVersionConflict is returned when a guarded write matched no rows:
// another transition bumped the offer's lock_version first.
var ErrVersionConflict = errors.New("offer was modified concurrently")

// Repository exposes offer persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, offer *models.Offer) (*models.Offer, error)
	FindByID(ctx context.Context, id int64) (*models.Offer, error)
	List(ctx context.Context, opts listQuery) ([]models.Offer, error)
	UpdateGuarded(ctx context.Context, id int64, lockVersion int64, updates map[string]any) error
	DeleteGuarded(ctx context.Context, id int64, lockVersion int64) error
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an offers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("InsuranceType").
		Where("id = ?", id).
		First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) List(ctx context.Context, opts listQuery) ([]models.Offer, error) {
	query := r.db.WithContext(ctx).Model(&models.Offer{}).
		Preload("Customer").
		Preload("InsuranceType")

	if opts.customerID != nil {
		query = query.Where("customer_id = ?", *opts.customerID)
	}
	if opts.insuranceTypeID != nil {
		query = query.Where("insurance_type_id = ?", *opts.insuranceTypeID)
	}
	if opts.status != nil {
		query = query.Where("status = ?", *opts.status)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Offer
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateGuarded applies updates only when lock_version still matches,
// bumping the version in the same statement.
func (r *repository) UpdateGuarded(ctx context.Context, id int64, lockVersion int64, updates map[string]any) error {
	merged := make(map[string]any, len(updates)+1)
	for column, value := range updates {
		merged[column] = value
	}
	merged["lock_version"] = lockVersion + 1

	result := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("id = ? AND lock_version = ?", id, lockVersion).
		Updates(merged)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *repository) DeleteGuarded(ctx context.Context, id int64, lockVersion int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND lock_version = ?", id, lockVersion).
		Delete(&models.Offer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// ExpireDue flips every overdue non-terminal offer to expired and
// returns how many rows changed.
func (r *repository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("status NOT IN ?", []enums.OfferStatus{enums.OfferStatusPaid, enums.OfferStatusExpired}).
		Where("valid_until < ?", now).
		Updates(map[string]any{
			"status":       enums.OfferStatusExpired,
			"lock_version": gorm.Expr("lock_version + 1"),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
