package enums

import "fmt"

// NotificationKind identifies the customer-facing notices the payment flow emits.
type NotificationKind string

const (
	NotificationKindPaymentReceipt NotificationKind = "payment_receipt"
	NotificationKindPaymentFailed  NotificationKind = "payment_failed"
	NotificationKindRefundNotice   NotificationKind = "refund_notice"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindPaymentReceipt,
	NotificationKindPaymentFailed,
	NotificationKindRefundNotice,
}

// String implements fmt.Stringer.
func (n NotificationKind) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationKind.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw input into a NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
