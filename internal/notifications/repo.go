package notifications

import (
	"context"

	"gorm.io/gorm"

	"github.com/alphasup/alphasup-backend/pkg/db/models"
)

// Repository handles notification persistence.
type Repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a notification repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}
