package webhooks

import (
	"context"

	"github.com/angelmondragon/authdash-backend/internal/repo"
	"github.com/angelmondragon/authdash-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists emitted events in the webhooks table.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Append stores one emitted event. An empty userEmail is stored as NULL.
func (r *Repository) Append(ctx context.Context, userEmail, event, data string) error {
	row := models.WebhookLog{Event: event, Data: data}
	if userEmail != "" {
		row.UserEmail = &userEmail
	}
	return r.DB(ctx).Create(&row).Error
}

// Recent returns the newest rows first; used by tests and diagnostics.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.WebhookLog, error) {
	var rows []models.WebhookLog
	if err := repo.NewestFirst(r.DB(ctx)).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
