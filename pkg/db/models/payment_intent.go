package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/alphasup/alphasup-backend/pkg/enums"
)

// PaymentIntent mirrors a gateway intent for a booking. The gateway-issued ID
// is the primary key; superseded intents are left stale, never deleted, and
// expiry is advisory only.
type PaymentIntent struct {
	ID                 string             `gorm:"column:id;primaryKey"`
	BookingID          uuid.UUID          `gorm:"column:booking_id;type:uuid;not null;index"`
	CustomerID         uuid.UUID          `gorm:"column:customer_id;type:uuid;not null"`
	AmountCents        int64              `gorm:"column:amount_cents;not null"`
	Currency           string             `gorm:"column:currency;not null;default:'usd'"`
	Status             enums.IntentStatus `gorm:"column:status;not null;default:'requires_payment_method'"`
	ClientSecret       string             `gorm:"column:client_secret;not null"`
	PaymentMethodTypes string             `gorm:"column:payment_method_types;not null;default:'card'"`
	DepositOnly        bool               `gorm:"column:deposit_only;not null;default:false"`
	ExpiresAt          time.Time          `gorm:"column:expires_at;not null"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
