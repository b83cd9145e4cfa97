package policies

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	pkgpagination "github.com/anadolubroker/sigorta-backend/pkg/pagination"
)

// ListParams filters the role-scoped policy listing.
type ListParams struct {
	Status *enums.PolicyStatus
	pkgpagination.Params
}

// ListResult carries one page of policies plus the next-page cursor.
type ListResult struct {
	Items  []PolicyView `json:"items"`
	Cursor string       `json:"cursor"`
}

type listQuery struct {
	customerID      *int64
	insuranceTypeID *int64
	status          *enums.PolicyStatus
	cursor          *pkgpagination.Cursor
	limit           int
}

// PolicyView is the read shape handed to controllers.
type PolicyView struct {
	ID                int64              `json:"id"`
	OfferID           int64              `json:"offer_id"`
	PolicyNumber      string             `json:"policy_number"`
	CustomerID        int64              `json:"customer_id"`
	CustomerName      string             `json:"customer_name,omitempty"`
	InsuranceTypeID   int64              `json:"insurance_type_id"`
	InsuranceTypeName string             `json:"insurance_type_name,omitempty"`
	StartDate         time.Time          `json:"start_date"`
	EndDate           time.Time          `json:"end_date"`
	TotalPremium      decimal.Decimal    `json:"total_premium"`
	Status            enums.PolicyStatus `json:"status"`
	CreatedAt         time.Time          `json:"created_at"`
}

// NewPolicyView flattens a policy row and its preloaded associations.
func NewPolicyView(policy models.Policy) PolicyView {
	view := PolicyView{
		ID:              policy.ID,
		OfferID:         policy.OfferID,
		PolicyNumber:    policy.PolicyNumber,
		CustomerID:      policy.CustomerID,
		InsuranceTypeID: policy.InsuranceTypeID,
		StartDate:       policy.StartDate,
		EndDate:         policy.EndDate,
		TotalPremium:    policy.TotalPremium,
		Status:          policy.Status,
		CreatedAt:       policy.CreatedAt,
	}
	if policy.Customer != nil {
		view.CustomerName = policy.Customer.FullName
	}
	if policy.InsuranceType != nil {
		view.InsuranceTypeName = policy.InsuranceType.Name
	}
	return view
}
