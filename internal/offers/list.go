package offers

import (
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	pkgpagination "github.com/anadolubroker/sigorta-backend/pkg/pagination"
)

// ListParams filters the role-scoped offer listing.
type ListParams struct {
	Status *enums.OfferStatus
	pkgpagination.Params
}

// ListResult carries one page of offers plus the next-page cursor.
type ListResult struct {
	Items  []OfferView `json:"items"`
	Cursor string      `json:"cursor"`
}

type listQuery struct {
	customerID      *int64
	insuranceTypeID *int64
	status          *enums.OfferStatus
	cursor          *pkgpagination.Cursor
	limit           int
}
