package policies

import (
	"fmt"
	"time"

	"github.com/anadolubroker/sigorta-backend/internal/offers"
)

// defaultTypeCode is used for categories outside the fixed code map.
const defaultTypeCode = "GEN"

// typeCodeByCategory holds the fixed category code segment of a policy
// number, keyed by normalized category name.
var typeCodeByCategory = map[string]string{
	"trafik":  "ARC",
	"traffic": "ARC",
	"seyahat": "SYH",
	"travel":  "SYH",
	"konut":   "KNT",
	"home":    "KNT",
	"saglik":  "SGL",
	"health":  "SGL",
	"hayat":   "HYT",
	"life":    "HYT",
}

// TypeCode returns the policy number segment for an insurance category.
func TypeCode(categoryName string) string {
	if code, ok := typeCodeByCategory[offers.NormalizeCategory(categoryName)]; ok {
		return code
	}
	return defaultTypeCode
}

// PolicyNumber derives the globally unique policy number. It is a pure
// function of the issuance date, the category and the offer id:
//
//	POL-{YYYYMMDD}-{TYPECODE}-{OFFERID:4digits}
func PolicyNumber(issuedAt time.Time, categoryName string, offerID int64) string {
	return fmt.Sprintf("POL-%s-%s-%04d", issuedAt.UTC().Format("20060102"), TypeCode(categoryName), offerID)
}

// CoverageEnd computes the policy end date for a category: travel cover
// runs 30 days, life cover 10 years, everything else one year.
func CoverageEnd(start time.Time, categoryName string) time.Time {
	switch offers.NormalizeCategory(categoryName) {
	case "seyahat", "travel":
		return start.AddDate(0, 0, 30)
	case "hayat", "life":
		return start.AddDate(10, 0, 0)
	default:
		return start.AddDate(1, 0, 0)
	}
}
