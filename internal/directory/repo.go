package directory

import (
	"context"

	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository resolves the parties an offer references: customers, agents and
// the insurance type catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCustomer(ctx context.Context, id int64) (*models.Customer, error)
	FindCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error)
	FindAgent(ctx context.Context, id int64) (*models.Agent, error)
	FindAgentByUserID(ctx context.Context, userID int64) (*models.Agent, error)
	FindInsuranceType(ctx context.Context, id int64) (*models.InsuranceType, error)
	FindInsuranceTypeByName(ctx context.Context, name string) (*models.InsuranceType, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a directory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindAgent(ctx context.Context, id int64) (*models.Agent, error) {
	var agent models.Agent
	err := r.db.WithContext(ctx).
		Preload("InsuranceType").
		Where("id = ?", id).
		First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repository) FindAgentByUserID(ctx context.Context, userID int64) (*models.Agent, error) {
	var agent models.Agent
	err := r.db.WithContext(ctx).
		Preload("InsuranceType").
		Where("user_id = ?", userID).
		First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repository) FindInsuranceType(ctx context.Context, id int64) (*models.InsuranceType, error) {
	var insuranceType models.InsuranceType
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&insuranceType).Error
	if err != nil {
		return nil, err
	}
	return &insuranceType, nil
}

func (r *repository) FindInsuranceTypeByName(ctx context.Context, name string) (*models.InsuranceType, error) {
	var insuranceType models.InsuranceType
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&insuranceType).Error
	if err != nil {
		return nil, err
	}
	return &insuranceType, nil
}
