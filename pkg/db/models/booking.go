package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alphasup/alphasup-backend/pkg/enums"
)

// Booking is a reserved SUP rental or tour slot awaiting or holding payment.
// Status transitions are owned exclusively by the payment lifecycle services.
type Booking struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ServiceID     uuid.UUID `gorm:"column:service_id;type:uuid;not null;index"`
	ServiceName   string    `gorm:"column:service_name;not null"`
	CustomerID    uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index"`
	CustomerName  string    `gorm:"column:customer_name;not null"`
	CustomerEmail string    `gorm:"column:customer_email;not null"`
	CustomerPhone string    `gorm:"column:customer_phone"`
	Participants  int       `gorm:"column:participants;not null;default:1"`
	ScheduledAt   time.Time `gorm:"column:scheduled_at;not null"`

	TotalAmount decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Currency    string              `gorm:"column:currency;not null;default:'usd'"`
	Status      enums.BookingStatus `gorm:"column:status;not null;default:'pending_payment'"`

	PaymentStatus   *enums.PaymentStatus `gorm:"column:payment_status"`
	PaymentType     enums.PaymentType    `gorm:"column:payment_type;not null;default:'full'"`
	PaidAmount      decimal.Decimal      `gorm:"column:paid_amount;type:numeric(12,2);not null;default:0"`
	RemainingAmount decimal.Decimal      `gorm:"column:remaining_amount;type:numeric(12,2);not null;default:0"`
	PaymentDueAt    *time.Time           `gorm:"column:payment_due_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
