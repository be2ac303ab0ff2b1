package users

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelmondragon/authdash-backend/internal/auditlog"
	"github.com/angelmondragon/authdash-backend/internal/credentials"
	"github.com/angelmondragon/authdash-backend/internal/webhooks"
	"github.com/angelmondragon/authdash-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/authdash-backend/pkg/db/types"
	pkgerrors "github.com/angelmondragon/authdash-backend/pkg/errors"
)

type usersRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateByID(ctx context.Context, id string, columns map[string]any) error
	UpdateByEmail(ctx context.Context, email string, columns map[string]any) error
	FindCompanyInfo(ctx context.Context, email string) (*CompanyInfo, error)
	GetToken(ctx context.Context, email string) (*string, bool, error)
}

// Service exposes the dashboard user operations. Every call appends one
// audit row and, on success, emits one event before returning.
type Service interface {
	CheckUser(ctx context.Context, email string) (*models.User, error)
	StoreAuthInfo(ctx context.Context, info AuthInfo) error
	UpdateProfile(ctx context.Context, input ProfileUpdate) error
	UpdateCompanyInfo(ctx context.Context, input CompanyUpdate) error
	StoreToken(ctx context.Context, email string, token *string) error
	FetchToken(ctx context.Context, email string) (*string, error)
	UpdateToken(ctx context.Context, email string, token *string) error
	FetchCompanyInfo(ctx context.Context, email string) (*CompanyInfo, error)
}

type service struct {
	repo   usersRepository
	codec  credentials.Codec
	audit  *auditlog.Recorder
	events webhooks.Emitter
}

// NewService wires the users service. A nil codec stores passwords as
// submitted and a nil emitter drops events.
func NewService(repo usersRepository, codec credentials.Codec, audit *auditlog.Recorder, events webhooks.Emitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if codec == nil {
		codec = credentials.Plaintext{}
	}
	if events == nil {
		events = webhooks.NopEmitter{}
	}
	return &service{repo: repo, codec: codec, audit: audit, events: events}, nil
}

func (s *service) CheckUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Error checking user: %s", err.Error()))
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error checking user.")
	}
	if user == nil {
		s.audit.Info(ctx, fmt.Sprintf("User with email %s not found.", email))
		s.events.Emit(ctx, webhooks.UserEvent(webhooks.EventUserNotFound, webhooks.UserPayload{Email: email}))
		return nil, nil
	}
	s.audit.Info(ctx, fmt.Sprintf("User with email %s found.", email))
	s.events.Emit(ctx, webhooks.UserEvent(webhooks.EventUserChecked, payloadFromModel(user)))
	return user, nil
}

func (s *service) StoreAuthInfo(ctx context.Context, info AuthInfo) error {
	if missing := info.MissingFields(); len(missing) > 0 {
		raw, _ := json.Marshal(info)
		s.audit.Error(ctx, fmt.Sprintf("Missing required auth info fields: %s", raw))
		details := map[string]string{}
		for _, field := range missing {
			details[field] = "is required"
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "Missing required auth info fields.").WithDetails(details)
	}

	birthday, err := dbtypes.ParseDate(info.Birthday)
	if err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Invalid birthday for user %s: %s", info.Email, info.Birthday))
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "birthday must be formatted YYYY-MM-DD").
			WithDetails(map[string]string{"birthday": "must be formatted YYYY-MM-DD"})
	}

	password, err := s.codec.Encode(info.Password)
	if err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Error storing or updating auth info: %s", err.Error()))
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error storing or updating auth info.")
	}

	user := &models.User{
		ID:       info.ID,
		Email:    ptr(info.Email),
		Name:     ptr(info.Name),
		Gender:   ptr(info.Gender),
		Birthday: &birthday,
		Password: ptr(password),
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Error storing or updating auth info: %s", err.Error()))
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error storing or updating auth info.")
	}

	s.audit.Info(ctx, fmt.Sprintf("Auth info for user %s stored/updated successfully.", info.Email))
	s.events.Emit(ctx, webhooks.UserEvent(webhooks.EventUserSignedUp, webhooks.UserPayload{
		ID:       info.ID,
		Email:    info.Email,
		Name:     info.Name,
		Gender:   info.Gender,
		Birthday: birthday.String(),
	}))
	return nil
}

func (s *service) UpdateProfile(ctx context.Context, input ProfileUpdate) error {
	birthday, err := parseOptionalDate(input.Birthday)
	if err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Error updating profile for user %s: %s", input.ID, err.Error()))
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "birthday must be formatted YYYY-MM-DD").
			WithDetails(map[string]string{"birthday": "must be formatted YYYY-MM-DD"})
	}

	password := input.Password
	if password != nil {
		encoded, err := s.codec.Encode(*password)
		if err != nil {
			s.audit.Error(ctx, fmt.Sprintf("Error updating profile for user %s: %s", input.ID, err.Error()))
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error updating profile.")
		}
		password = &encoded
	}

	columns := map[string]any{
		"name":            input.Name,
		"email":           input.Email,
		"gender":          input.Gender,
		"birthday":        birthday,
		"password":        password,
		"profile_picture": input.ProfilePicture,
		"country_code":    input.CountryCode,
		"contact":         input.Contact,
	}
	if err := s.repo.UpdateByID(ctx, input.ID, columns); err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Error updating profile for user %s: %s", input.ID, err.Error()))
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error updating profile.")
	}

	s.audit.Info(ctx, fmt.Sprintf("Profile updated successfully for user %s.", input.ID))
	payload := webhooks.UserPayload{
		ID:          input.ID,
		Email:       deref(input.Email),
		Name:        deref(input.Name),
		Gender:      deref(input.Gender),
		CountryCode: deref(input.CountryCode),
		Contact:     deref(input.Contact),
	}
	if birthday != nil {
		payload.Birthday = birthday.String()
	}
	s.events.Emit(ctx, webhooks.UserEvent(webhooks.EventProfileUpdated, payload))
	return nil
}

func (s *service) UpdateCompanyInfo(ctx context.Context, input CompanyUpdate) error {
	columns := map[string]any{
		"org_name": input.OrgName,
		"position": input.Position,
	}
	if err := s.repo.UpdateByEmail(ctx, input.Email, columns); err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Error updating company info for user %s: %s", input.Email, err.Error()))
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error updating company info.")
	}

	s.audit.Info(ctx, fmt.Sprintf("Company info updated successfully for user %s.", input.Email))
	s.events.Emit(ctx, webhooks.UserEvent(webhooks.EventCompanyInfoUpdated, webhooks.UserPayload{
		Email:    input.Email,
		OrgName:  deref(input.OrgName),
		Position: deref(input.Position),
	}))
	return nil
}

func (s *service) StoreToken(ctx context.Context, email string, token *string) error {
	if err := s.repo.UpdateByEmail(ctx, email, map[string]any{"token": token}); err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Error storing token for user %s: %s", email, err.Error()))
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error storing token.")
	}
	s.audit.Info(ctx, fmt.Sprintf("Token stored successfully for user %s.", email))
	s.events.Emit(ctx, webhooks.UserEvent(webhooks.EventTokenStored, webhooks.UserPayload{Email: email}))
	return nil
}

func (s *service) FetchToken(ctx context.Context, email string) (*string, error) {
	token, found, err := s.repo.GetToken(ctx, email)
	if err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Error fetching token for user %s: %s", email, err.Error()))
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error fetching token.")
	}
	if !found {
		s.audit.Info(ctx, fmt.Sprintf("Token not found for user %s.", email))
		s.events.Emit(ctx, webhooks.UserEvent(webhooks.EventTokenNotFound, webhooks.UserPayload{Email: email}))
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Token not found.")
	}
	s.audit.Info(ctx, fmt.Sprintf("Token fetched successfully for user %s.", email))
	s.events.Emit(ctx, webhooks.UserEvent(webhooks.EventTokenFetched, webhooks.UserPayload{Email: email}))
	return token, nil
}

func (s *service) UpdateToken(ctx context.Context, email string, token *string) error {
	if err := s.repo.UpdateByEmail(ctx, email, map[string]any{"token": token}); err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Error updating token for user %s: %s", email, err.Error()))
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error updating token.")
	}
	s.audit.Info(ctx, fmt.Sprintf("Token updated successfully for user %s.", email))
	s.events.Emit(ctx, webhooks.UserEvent(webhooks.EventTokenUpdated, webhooks.UserPayload{Email: email}))
	return nil
}

func (s *service) FetchCompanyInfo(ctx context.Context, email string) (*CompanyInfo, error) {
	info, err := s.repo.FindCompanyInfo(ctx, email)
	if err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Error fetching company info for user %s: %s", email, err.Error()))
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Internal server error")
	}
	if info == nil {
		s.audit.Info(ctx, fmt.Sprintf("Company info not found for user %s.", email))
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Company info not found")
	}
	s.audit.Info(ctx, fmt.Sprintf("Company info fetched successfully for user %s.", email))
	return info, nil
}

func parseOptionalDate(value *string) (*dbtypes.Date, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	d, err := dbtypes.ParseDate(*value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
