package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/alphasup/alphasup-backend/pkg/enums"
)

// Notification is a persisted customer notice (receipt, failure, refund).
// Delivery is fire-and-forget from the payment flow's point of view.
type Notification struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID              `gorm:"column:customer_id;type:uuid;not null;index"`
	BookingID  uuid.UUID              `gorm:"column:booking_id;type:uuid;not null;index"`
	Kind       enums.NotificationKind `gorm:"column:kind;not null"`
	Body       string                 `gorm:"column:body;not null"`
	SentAt     *time.Time             `gorm:"column:sent_at"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}
