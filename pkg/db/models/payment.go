package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alphasup/alphasup-backend/pkg/enums"
)

// Payment is the durable ledger entry created once per terminal gateway
// outcome. The unique stripe_payment_intent_id index is what makes webhook
// redelivery idempotent: a second insert for the same intent is a no-op.
type Payment struct {
	ID                    uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StripePaymentIntentID string    `gorm:"column:stripe_payment_intent_id;not null;uniqueIndex"`
	StripeChargeID        string    `gorm:"column:stripe_charge_id"`
	BookingID             uuid.UUID `gorm:"column:booking_id;type:uuid;not null;index"`
	CustomerID            uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index"`

	Amount           decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	RefundableAmount decimal.Decimal     `gorm:"column:refundable_amount;type:numeric(12,2);not null;default:0"`
	Currency         string              `gorm:"column:currency;not null;default:'usd'"`
	Status           enums.PaymentStatus `gorm:"column:status;not null"`

	MethodType string `gorm:"column:method_type;not null;default:'card'"`
	CardBrand  string `gorm:"column:card_brand"`
	CardLast4  string `gorm:"column:card_last4"`

	ProcessingFee decimal.Decimal `gorm:"column:processing_fee;type:numeric(12,2);not null;default:0"`
	PlatformFee   decimal.Decimal `gorm:"column:platform_fee;type:numeric(12,2);not null;default:0"`

	FailureReason *string    `gorm:"column:failure_reason"`
	CapturedAt    *time.Time `gorm:"column:captured_at"`
	FailedAt      *time.Time `gorm:"column:failed_at"`
	ReceiptSent   bool       `gorm:"column:receipt_sent;not null;default:false"`

	Refunds []Refund `gorm:"foreignKey:PaymentID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
