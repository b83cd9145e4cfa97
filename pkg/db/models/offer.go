package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	"github.com/anadolubroker/sigorta-backend/pkg/types"
)

// Offer is a priced insurance proposal moving through review and
// customer approval before it becomes a policy. Once IsCustomerApproved
// is set only the payment-triggered issuance transition may mutate it.
type Offer struct {
	ID                 int64                `gorm:"column:id;primaryKey;autoIncrement"`
	CustomerID         int64                `gorm:"column:customer_id;not null;index"`
	AgentID            *int64               `gorm:"column:agent_id;index"`
	InsuranceTypeID    int64                `gorm:"column:insurance_type_id;not null;index"`
	BasePrice          decimal.Decimal      `gorm:"column:base_price;type:numeric(14,2);not null"`
	DiscountRate       decimal.Decimal      `gorm:"column:discount_rate;type:numeric(5,2);not null;default:0"`
	FinalPrice         decimal.Decimal      `gorm:"column:final_price;type:numeric(14,2);not null"`
	CoverageAmount     decimal.Decimal      `gorm:"column:coverage_amount;type:numeric(14,2);not null;default:0"`
	Status             enums.OfferStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	ValidUntil         time.Time            `gorm:"column:valid_until;not null"`
	RequestedStartDate *time.Time           `gorm:"column:requested_start_date"`
	AdditionalInfo     types.AdditionalInfo `gorm:"column:customer_additional_info;type:jsonb;serializer:json"`
	IsCustomerApproved bool                 `gorm:"column:is_customer_approved;not null;default:false"`
	CustomerApprovedAt *time.Time           `gorm:"column:customer_approved_at"`
	ReviewedAt         *time.Time           `gorm:"column:reviewed_at"`
	ReviewedBy         *int64               `gorm:"column:reviewed_by"`
	LockVersion        int64                `gorm:"column:lock_version;not null;default:0"`
	Customer           *Customer            `gorm:"foreignKey:CustomerID"`
	InsuranceType      *InsuranceType       `gorm:"foreignKey:InsuranceTypeID"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// IsExpired reports whether the offer's validity window has passed.
func (o Offer) IsExpired(now time.Time) bool {
	return !o.Status.IsTerminal() && now.After(o.ValidUntil)
}
