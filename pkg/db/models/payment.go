package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/anadolubroker/sigorta-backend/pkg/enums"
)

// Payment records the settlement that triggered issuance of its policy.
// It is created in the same transaction as the Policy row.
type Payment struct {
	ID            int64               `gorm:"column:id;primaryKey;autoIncrement"`
	PolicyID      int64               `gorm:"column:policy_id;not null;uniqueIndex"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(14,2);not null"`
	Method        enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Status        enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'completed'"`
	TransactionID string              `gorm:"column:transaction_id;not null"`
	PaidAt        time.Time           `gorm:"column:paid_at;not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
