package auditlog

import (
	"context"

	"github.com/angelmondragon/authdash-backend/internal/repo"
	"github.com/angelmondragon/authdash-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists rows in the append-only logs table.
type Repository struct {
	repo.Base
}

// NewRepository binds the audit log repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Append inserts a single audit row; the store assigns the timestamp.
func (r *Repository) Append(ctx context.Context, eventType, description string) error {
	entry := models.LogEntry{EventType: eventType, EventDescription: description}
	return r.DB(ctx).Create(&entry).Error
}

// Recent returns at most limit rows, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	err := repo.NewestFirst(r.DB(ctx)).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
