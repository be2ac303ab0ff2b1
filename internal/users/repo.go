package users

import (
	"context"
	"errors"

	"github.com/angelmondragon/authdash-backend/internal/repo"
	"github.com/angelmondragon/authdash-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Upsert inserts the user or overwrites its sign-in columns when the id
// already exists. Token and company columns are left alone.
func (r *Repository) Upsert(ctx context.Context, user *models.User) error {
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "gender", "birthday", "password"}),
	}).Create(user).Error
}

// FindByEmail returns the first user with the email, or nil when none exists.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).Where("email = ?", email).Order("id").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateByID overwrites the given columns of the user with the id.
func (r *Repository) UpdateByID(ctx context.Context, id string, columns map[string]any) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(columns).Error
}

// UpdateByEmail overwrites the given columns of every user with the email.
func (r *Repository) UpdateByEmail(ctx context.Context, email string, columns map[string]any) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Updates(columns).Error
}

// FindCompanyInfo returns the company columns, or nil when no user matches.
func (r *Repository) FindCompanyInfo(ctx context.Context, email string) (*CompanyInfo, error) {
	var rows []CompanyInfo
	err := r.DB(ctx).
		Model(&models.User{}).
		Select("org_name", "position").
		Where("email = ?", email).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// GetToken reports the stored token. found is false when no user matches;
// a user with no token yields found=true and a nil token.
func (r *Repository) GetToken(ctx context.Context, email string) (token *string, found bool, err error) {
	var rows []struct {
		Token *string
	}
	err = r.DB(ctx).
		Model(&models.User{}).
		Select("token").
		Where("email = ?", email).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0].Token, true, nil
}
