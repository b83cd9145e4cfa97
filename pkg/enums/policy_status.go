package enums

import "fmt"

// PolicyStatus tracks the lifecycle of an issued policy.
type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "active"
	PolicyStatusExpired   PolicyStatus = "expired"
	PolicyStatusCancelled PolicyStatus = "cancelled"
)

var validPolicyStatuses = []PolicyStatus{
	PolicyStatusActive,
	PolicyStatusExpired,
	PolicyStatusCancelled,
}

// String implements fmt.Stringer.
func (p PolicyStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PolicyStatus.
func (p PolicyStatus) IsValid() bool {
	for _, candidate := range validPolicyStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePolicyStatus converts raw input into a PolicyStatus.
func ParsePolicyStatus(value string) (PolicyStatus, error) {
	for _, candidate := range validPolicyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid policy status %q", value)
}
