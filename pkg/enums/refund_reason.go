package enums

import "fmt"

// RefundReason enumerates why a refund was issued.
type RefundReason string

const (
	RefundReasonCustomerRequest      RefundReason = "customer_request"
	RefundReasonWeatherCancellation  RefundReason = "weather_cancellation"
	RefundReasonEquipmentIssue       RefundReason = "equipment_issue"
	RefundReasonBusinessCancellation RefundReason = "business_cancellation"
	RefundReasonDuplicateCharge      RefundReason = "duplicate_charge"
	RefundReasonFraudulent           RefundReason = "fraudulent"
)

var validRefundReasons = []RefundReason{
	RefundReasonCustomerRequest,
	RefundReasonWeatherCancellation,
	RefundReasonEquipmentIssue,
	RefundReasonBusinessCancellation,
	RefundReasonDuplicateCharge,
	RefundReasonFraudulent,
}

// String implements fmt.Stringer.
func (r RefundReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RefundReason.
func (r RefundReason) IsValid() bool {
	for _, candidate := range validRefundReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRefundReason converts raw input into a RefundReason.
func ParseRefundReason(value string) (RefundReason, error) {
	for _, candidate := range validRefundReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund reason %q", value)
}

// GatewayCode maps the reason onto the gateway's restricted reason set.
func (r RefundReason) GatewayCode() string {
	switch r {
	case RefundReasonDuplicateCharge:
		return "duplicate"
	case RefundReasonFraudulent:
		return "fraudulent"
	default:
		return "requested_by_customer"
	}
}
