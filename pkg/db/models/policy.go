package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/anadolubroker/sigorta-backend/pkg/enums"
)

// Policy is the issued contract derived from a paid offer. OfferID is
// unique: at most one policy may ever exist per offer.
type Policy struct {
	ID              int64              `gorm:"column:id;primaryKey;autoIncrement"`
	OfferID         int64              `gorm:"column:offer_id;not null;uniqueIndex:uq_policies_offer_id"`
	PolicyNumber    string             `gorm:"column:policy_number;not null;uniqueIndex"`
	CustomerID      int64              `gorm:"column:customer_id;not null;index"`
	AgentID         *int64             `gorm:"column:agent_id"`
	InsuranceTypeID int64              `gorm:"column:insurance_type_id;not null;index"`
	StartDate       time.Time          `gorm:"column:start_date;not null"`
	EndDate         time.Time          `gorm:"column:end_date;not null"`
	TotalPremium    decimal.Decimal    `gorm:"column:total_premium;type:numeric(14,2);not null"`
	Status          enums.PolicyStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Offer           *Offer             `gorm:"foreignKey:OfferID"`
	Customer        *Customer          `gorm:"foreignKey:CustomerID"`
	InsuranceType   *InsuranceType     `gorm:"foreignKey:InsuranceTypeID"`
	Payment         *Payment           `gorm:"foreignKey:PolicyID"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
