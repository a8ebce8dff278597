package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alphasup/alphasup-backend/pkg/enums"
)

// Refund records a single refund against a payment. Immutable once created.
type Refund struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StripeRefundID string             `gorm:"column:stripe_refund_id;not null;uniqueIndex"`
	PaymentID      uuid.UUID          `gorm:"column:payment_id;type:uuid;not null;index"`
	Amount         decimal.Decimal    `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency       string             `gorm:"column:currency;not null;default:'usd'"`
	Status         enums.RefundStatus `gorm:"column:status;not null;default:'pending'"`
	Reason         enums.RefundReason `gorm:"column:reason;not null"`
	RequestedBy    uuid.UUID          `gorm:"column:requested_by;type:uuid;not null"`
	AdminNotes     *string            `gorm:"column:admin_notes"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
}
