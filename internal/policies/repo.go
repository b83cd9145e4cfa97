package policies

import (
	"context"

	"gorm.io/gorm"

	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
)

// Repository exposes policy and payment persistence. Payments live
// here because a payment row only ever exists alongside its policy.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, policy *models.Policy) (*models.Policy, error)
	FindByID(ctx context.Context, id int64) (*models.Policy, error)
	FindByOfferID(ctx context.Context, offerID int64) (*models.Policy, error)
	List(ctx context.Context, opts listQuery) ([]models.Policy, error)
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindPaymentByPolicyID(ctx context.Context, policyID int64) (*models.Payment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a policies repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, policy *models.Policy) (*models.Policy, error) {
	if err := r.db.WithContext(ctx).Create(policy).Error; err != nil {
		return nil, err
	}
	return policy, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Policy, error) {
	var policy models.Policy
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("InsuranceType").
		Preload("Payment").
		Where("id = ?", id).
		First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *repository) FindByOfferID(ctx context.Context, offerID int64) (*models.Policy, error) {
	var policy models.Policy
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("InsuranceType").
		Preload("Payment").
		Where("offer_id = ?", offerID).
		First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *repository) List(ctx context.Context, opts listQuery) ([]models.Policy, error) {
	query := r.db.WithContext(ctx).Model(&models.Policy{}).
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

	var rows []models.Policy
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repository) FindPaymentByPolicyID(ctx context.Context, policyID int64) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
