package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Dialect names the underlying driver ("postgres" or "sqlite").
func (b Base) Dialect() string {
	if b.db == nil || b.db.Dialector == nil {
		return ""
	}
	return b.db.Dialector.Name()
}

// NewestFirst orders rows by their timestamp column with id as the tiebreaker.
// The column is quoted because timestamp is a reserved word in postgres.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order(`"timestamp" DESC`).Order("id DESC")
}
