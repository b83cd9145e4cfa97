package enums

import "fmt"

// OfferStatus tracks the lifecycle of an insurance offer.
type OfferStatus string

const (
	OfferStatusPending          OfferStatus = "pending"
	OfferStatusReviewed         OfferStatus = "reviewed"
	OfferStatusApproved         OfferStatus = "approved"
	OfferStatusRejected         OfferStatus = "rejected"
	OfferStatusCustomerApproved OfferStatus = "customer_approved"
	OfferStatusPaid             OfferStatus = "paid"
	OfferStatusExpired          OfferStatus = "expired"
)

var validOfferStatuses = []OfferStatus{
	OfferStatusPending,
	OfferStatusReviewed,
	OfferStatusApproved,
	OfferStatusRejected,
	OfferStatusCustomerApproved,
	OfferStatusPaid,
	OfferStatusExpired,
}

// String implements fmt.Stringer.
func (o OfferStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OfferStatus.
func (o OfferStatus) IsValid() bool {
	for _, candidate := range validOfferStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (o OfferStatus) IsTerminal() bool {
	return o == OfferStatusPaid || o == OfferStatusExpired
}

// CanTransition reports whether moving from o to target is a legal step
// in the offer state machine. Expiry is reachable from every
// non-terminal state; payment only follows customer approval.
func (o OfferStatus) CanTransition(target OfferStatus) bool {
	if !o.IsValid() || !target.IsValid() {
		return false
	}
	if o.IsTerminal() {
		return false
	}
	if target == OfferStatusExpired {
		return true
	}
	switch o {
	case OfferStatusPending:
		return target == OfferStatusReviewed || target == OfferStatusApproved || target == OfferStatusRejected
	case OfferStatusReviewed, OfferStatusApproved:
		return target == OfferStatusCustomerApproved || target == OfferStatusRejected ||
			target == OfferStatusReviewed || target == OfferStatusApproved
	case OfferStatusCustomerApproved:
		return target == OfferStatusPaid
	case OfferStatusRejected:
		return false
	}
	return false
}

// ParseOfferStatus converts raw input into an OfferStatus.
func ParseOfferStatus(value string) (OfferStatus, error) {
	for _, candidate := range validOfferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer status %q", value)
}
