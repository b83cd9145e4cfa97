package offers

import (
	"strings"
	"time"
)

// defaultValidityDays applies when a category name is not in the
// validity table.
const defaultValidityDays = 30

// validityDaysByCategory maps normalized category names (Turkish and
// English) to the number of days an offer stays actionable.
var validityDaysByCategory = map[string]int{
	"seyahat":   30,
	"travel":    30,
	"trafik":    365,
	"traffic":   365,
	"konut":     365,
	"home":      365,
	"is yeri":   365,
	"workplace": 365,
	"saglik":    365,
	"health":    365,
	"hayat":     365,
	"life":      365,
}

var turkishFold = map[rune]rune{
	'ç': 'c',
	'ğ': 'g',
	'ı': 'i',
	'ö': 'o',
	'ş': 's',
	'ü': 'u',
}

// NormalizeCategory lowercases a category name and folds Turkish
// diacritics so "Seyahat", "seyahat" and "SEYAHAT" all match, and
// "İş Yeri" matches "is yeri".
func NormalizeCategory(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		// ToLower of the dotted capital I leaves a combining dot behind
		if r == '̇' {
			return -1
		}
		if folded, ok := turkishFold[r]; ok {
			return folded
		}
		return r
	}, lower)
}

// ValidityDays returns how many days an offer in the given category
// remains valid.
func ValidityDays(categoryName string) int {
	if days, ok := validityDaysByCategory[NormalizeCategory(categoryName)]; ok {
		return days
	}
	return defaultValidityDays
}

// ValidUntil computes the offer expiry timestamp for a category.
func ValidUntil(now time.Time, categoryName string) time.Time {
	return now.AddDate(0, 0, ValidityDays(categoryName))
}
