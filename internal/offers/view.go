package offers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	"github.com/anadolubroker/sigorta-backend/pkg/types"
)

// OfferView is the read shape handed to controllers.
type OfferView struct {
	ID                 int64                `json:"id"`
	CustomerID         int64                `json:"customer_id"`
	CustomerName       string               `json:"customer_name,omitempty"`
	InsuranceTypeID    int64                `json:"insurance_type_id"`
	InsuranceTypeName  string               `json:"insurance_type_name,omitempty"`
	BasePrice          decimal.Decimal      `json:"base_price"`
	DiscountRate       decimal.Decimal      `json:"discount_rate"`
	FinalPrice         decimal.Decimal      `json:"final_price"`
	CoverageAmount     decimal.Decimal      `json:"coverage_amount"`
	Status             enums.OfferStatus    `json:"status"`
	ValidUntil         time.Time            `json:"valid_until"`
	RequestedStartDate *time.Time           `json:"requested_start_date,omitempty"`
	AdditionalInfo     types.AdditionalInfo `json:"additional_info,omitempty"`
	IsCustomerApproved bool                 `json:"is_customer_approved"`
	CustomerApprovedAt *time.Time           `json:"customer_approved_at,omitempty"`
	ReviewedAt         *time.Time           `json:"reviewed_at,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// NewOfferView flattens an offer row and its preloaded associations.
func NewOfferView(offer models.Offer) OfferView {
	view := OfferView{
		ID:                 offer.ID,
		CustomerID:         offer.CustomerID,
		InsuranceTypeID:    offer.InsuranceTypeID,
		BasePrice:          offer.BasePrice,
		DiscountRate:       offer.DiscountRate,
		FinalPrice:         offer.FinalPrice,
		CoverageAmount:     offer.CoverageAmount,
		Status:             offer.Status,
		ValidUntil:         offer.ValidUntil,
		RequestedStartDate: offer.RequestedStartDate,
		AdditionalInfo:     offer.AdditionalInfo,
		IsCustomerApproved: offer.IsCustomerApproved,
		CustomerApprovedAt: offer.CustomerApprovedAt,
		ReviewedAt:         offer.ReviewedAt,
		CreatedAt:          offer.CreatedAt,
		UpdatedAt:          offer.UpdatedAt,
	}
	if offer.Customer != nil {
		view.CustomerName = offer.Customer.FullName
	}
	if offer.InsuranceType != nil {
		view.InsuranceTypeName = offer.InsuranceType.Name
	}
	return view
}
