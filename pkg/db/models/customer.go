package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer holds contact details plus the gateway customer mapping used for
// idempotent gateway-customer resolution.
type Customer struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string    `gorm:"column:name;not null"`
	Email            string    `gorm:"column:email;not null;uniqueIndex"`
	Phone            string    `gorm:"column:phone"`
	StripeCustomerID string    `gorm:"column:stripe_customer_id;index"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
