package offers

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	pkgerrors "github.com/anadolubroker/sigorta-backend/pkg/errors"
)

// lifeMinimumPremium is the floor for life insurance prices entered by
// agents and admins. Customer-submitted prices are placeholders and
// skip the check.
var lifeMinimumPremium = decimal.NewFromInt(1000)

type categoryRule func(input CreateOfferInput, actorRole enums.ActorRole, now time.Time) error

// categoryRules keys are normalized category names. A category listed
// with a nil-effect rule passes; a name absent from the map is treated
// as an unknown category.
var categoryRules = map[string]categoryRule{
	"seyahat":   validateTravelOffer,
	"travel":    validateTravelOffer,
	"konut":     validateHomeOffer,
	"home":      validateHomeOffer,
	"hayat":     validateLifeOffer,
	"life":      validateLifeOffer,
	"trafik":    validateNothing,
	"traffic":   validateNothing,
	"saglik":    validateNothing,
	"health":    validateNothing,
	"is yeri":   validateNothing,
	"workplace": validateNothing,
}

// validateCategoryRules runs the category-specific rule set for a
// named insurance category.
func validateCategoryRules(categoryName string, input CreateOfferInput, actorRole enums.ActorRole, now time.Time) error {
	rule, ok := categoryRules[NormalizeCategory(categoryName)]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "insurance category not found")
	}
	return rule(input, actorRole, now)
}

func validateNothing(CreateOfferInput, enums.ActorRole, time.Time) error {
	return nil
}

// validateTravelOffer requires a start date strictly after today. The
// comparison is date-only: booking travel cover for later today is
// still rejected.
func validateTravelOffer(input CreateOfferInput, _ enums.ActorRole, now time.Time) error {
	if input.RequestedStartDate == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "travel insurance requires a start date")
	}
	today := dateOnly(now)
	start := dateOnly(*input.RequestedStartDate)
	if !start.After(today) {
		return pkgerrors.New(pkgerrors.CodeValidation, "must choose a future date")
	}
	return nil
}

func validateHomeOffer(input CreateOfferInput, _ enums.ActorRole, _ time.Time) error {
	address, ok := input.AdditionalInfo["address"]
	if !ok || strings.TrimSpace(address.Text) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "home insurance requires an address")
	}
	return nil
}

func validateLifeOffer(input CreateOfferInput, actorRole enums.ActorRole, _ time.Time) error {
	if actorRole == enums.ActorRoleCustomer {
		return nil
	}
	if input.BasePrice.LessThan(lifeMinimumPremium) || input.FinalPrice.LessThan(lifeMinimumPremium) {
		return pkgerrors.New(pkgerrors.CodeValidation, "life insurance premium must be at least 1000")
	}
	return nil
}

// validatePrices enforces the non-negative lower bound on monetary
// fields. Customer-submitted prices are placeholders overwritten at
// review time, so the bound is skipped for the customer role.
func validatePrices(input CreateOfferInput, actorRole enums.ActorRole) error {
	if actorRole == enums.ActorRoleCustomer {
		return nil
	}
	if input.BasePrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "base_price must not be negative")
	}
	if input.FinalPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "final_price must not be negative")
	}
	if input.DiscountRate.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_rate must not be negative")
	}
	if input.CoverageAmount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "coverage_amount must not be negative")
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
