package devices

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/authdash-backend/internal/repo"
	"github.com/angelmondragon/authdash-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes device persistence operations.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByOwner returns the oldest row for (email, deviceID), or nil.
func (r *Repository) FindByOwner(ctx context.Context, email, deviceID string) (*models.Device, error) {
	var device models.Device
	err := r.DB(ctx).
		Where("email = ? AND device_id = ?", email, deviceID).
		Order("id").
		First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// Increment bumps device_count by one and refreshes the timestamp.
func (r *Repository) Increment(ctx context.Context, id uint, at time.Time) error {
	return r.DB(ctx).
		Model(&models.Device{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"device_count": gorm.Expr("device_count + ?", 1),
			"timestamp":    at,
		}).Error
}

func (r *Repository) Insert(ctx context.Context, device *models.Device) error {
	return r.DB(ctx).Create(device).Error
}

// ListByOwner returns every row for the email, oldest first.
func (r *Repository) ListByOwner(ctx context.Context, email string) ([]models.Device, error) {
	var rows []models.Device
	if err := r.DB(ctx).Where("email = ?", email).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
