package enums

import "fmt"

// DocumentCategory classifies stored documents.
type DocumentCategory string

const (
	DocumentCategoryReceipt      DocumentCategory = "receipt"
	DocumentCategoryDeed         DocumentCategory = "deed_document"
	DocumentCategoryHealthReport DocumentCategory = "health_report"
	DocumentCategoryOffer        DocumentCategory = "offer_document"
	DocumentCategoryPolicy       DocumentCategory = "policy_document"
)

var validDocumentCategories = []DocumentCategory{
	DocumentCategoryReceipt,
	DocumentCategoryDeed,
	DocumentCategoryHealthReport,
	DocumentCategoryOffer,
	DocumentCategoryPolicy,
}

// String implements fmt.Stringer.
func (d DocumentCategory) String() string {
	return string(d)
}

// DisplayName returns the human-readable label shown to customers.
func (d DocumentCategory) DisplayName() string {
	switch d {
	case DocumentCategoryReceipt:
		return "Receipt"
	case DocumentCategoryDeed:
		return "Deed Document"
	case DocumentCategoryHealthReport:
		return "Health Report"
	case DocumentCategoryPolicy:
		return "Policy Document"
	default:
		return "Offer Document"
	}
}

// IsValid reports whether the value is a known DocumentCategory.
func (d DocumentCategory) IsValid() bool {
	for _, candidate := range validDocumentCategories {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDocumentCategory converts raw input into a DocumentCategory.
func ParseDocumentCategory(value string) (DocumentCategory, error) {
	for _, candidate := range validDocumentCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document category %q", value)
}
