package users

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/angelmondragon/authdash-backend/internal/auditlog"
	"github.com/angelmondragon/authdash-backend/internal/credentials"
	"github.com/angelmondragon/authdash-backend/internal/repo/repotest"
	"github.com/angelmondragon/authdash-backend/internal/webhooks"
	"github.com/angelmondragon/authdash-backend/pkg/config"
	"github.com/angelmondragon/authdash-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/authdash-backend/pkg/errors"
	"github.com/angelmondragon/authdash-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	svc    Service
	logs   *auditlog.Repository
	events *recordingEmitter
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := repotest.NewDB(t)
	logs := auditlog.NewRepository(db)
	events := &recordingEmitter{}
	svc, err := NewService(NewRepository(db), nil, auditlog.NewRecorder(logs, logger.Nop()), events)
	require.NoError(t, err)
	return fixture{db: db, svc: svc, logs: logs, events: events}
}

func validAuthInfo() AuthInfo {
	return AuthInfo{
		ID:       "1099",
		Email:    "a@x.com",
		Name:     "Ada",
		Gender:   "female",
		Birthday: "1990-04-12",
		Password: "YourDefaultPassword",
	}
}

func TestCheckUserThenSignUpThenCheckUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.CheckUser(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, f.svc.StoreAuthInfo(ctx, validAuthInfo()))

	user, err = f.svc.CheckUser(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "1099", user.ID)
	assert.Equal(t, "Ada", *user.Name)
	assert.Equal(t, "1990-04-12", user.Birthday.String())
	assert.Equal(t, "YourDefaultPassword", *user.Password)

	assert.Equal(t, []string{
		webhooks.EventUserNotFound,
		webhooks.EventUserSignedUp,
		webhooks.EventUserChecked,
	}, f.events.tags())

	entries, err := f.logs.Recent(ctx, auditlog.RecentLimit)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "User with email a@x.com found.", entries[0].EventDescription)
	assert.Equal(t, "Auth info for user a@x.com stored/updated successfully.", entries[1].EventDescription)
	assert.Equal(t, "User with email a@x.com not found.", entries[2].EventDescription)
}

func TestStoreAuthInfoMissingFieldsLeavesNoRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	info := validAuthInfo()
	info.Gender = ""
	info.Password = ""
	err := f.svc.StoreAuthInfo(ctx, info)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, map[string]string{"gender": "is required", "password": "is required"}, pkgerrors.As(err).Details())

	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.events.tags())

	entries, err := f.logs.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, auditlog.TypeError, entries[0].EventType)
	assert.Contains(t, entries[0].EventDescription, "Missing required auth info fields: ")
}

func TestStoreAuthInfoRejectsBadBirthday(t *testing.T) {
	f := newFixture(t)
	info := validAuthInfo()
	info.Birthday = "12/04/1990"

	err := f.svc.StoreAuthInfo(context.Background(), info)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestStoreAuthInfoUpsertKeepsTokenAndCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.StoreAuthInfo(ctx, validAuthInfo()))
	token := "ya29.token"
	require.NoError(t, f.svc.StoreToken(ctx, "a@x.com", &token))
	org, pos := "Acme", "CTO"
	require.NoError(t, f.svc.UpdateCompanyInfo(ctx, CompanyUpdate{Email: "a@x.com", OrgName: &org, Position: &pos}))

	again := validAuthInfo()
	again.Name = "Ada L."
	require.NoError(t, f.svc.StoreAuthInfo(ctx, again))

	var users []models.User
	require.NoError(t, f.db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "Ada L.", *users[0].Name)
	assert.Equal(t, "ya29.token", *users[0].Token)
	assert.Equal(t, "Acme", *users[0].OrgName)
}

func TestStoreAuthInfoEncodesPassword(t *testing.T) {
	db := repotest.NewDB(t)
	codec, err := credentials.NewCodec(config.PasswordConfig{
		Storage:          config.PasswordStorageArgon2id,
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	require.NoError(t, err)
	svc, err := NewService(NewRepository(db), codec, nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.StoreAuthInfo(context.Background(), validAuthInfo()))

	user, err := NewRepository(db).FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	ok, err := codec.Matches("YourDefaultPassword", *user.Password)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFetchTokenDistinguishesMissingUserFromEmptyToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.FetchToken(ctx, "ghost@x.com")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, f.svc.StoreAuthInfo(ctx, validAuthInfo()))
	token, err := f.svc.FetchToken(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Nil(t, token)

	updated := "ya29.refresh"
	require.NoError(t, f.svc.UpdateToken(ctx, "a@x.com", &updated))
	token, err = f.svc.FetchToken(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "ya29.refresh", *token)

	assert.Equal(t, []string{
		webhooks.EventTokenNotFound,
		webhooks.EventUserSignedUp,
		webhooks.EventTokenFetched,
		webhooks.EventTokenUpdated,
		webhooks.EventTokenFetched,
	}, f.events.tags())
}

func TestUpdateProfileOverwritesColumns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.StoreAuthInfo(ctx, validAuthInfo()))

	name, email, country := "Ada Lovelace", "ada@x.com", "+44"
	birthday := "1815-12-10"
	require.NoError(t, f.svc.UpdateProfile(ctx, ProfileUpdate{
		ID:          "1099",
		Name:        &name,
		Email:       &email,
		Birthday:    &birthday,
		CountryCode: &country,
	}))

	user, err := NewRepository(f.db).FindByEmail(ctx, "ada@x.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ada Lovelace", *user.Name)
	assert.Equal(t, "1815-12-10", user.Birthday.String())
	assert.Equal(t, "+44", *user.CountryCode)
	assert.Nil(t, user.Gender)
	assert.Nil(t, user.Password)
}

func TestUpdateProfileUnknownIDStillSucceeds(t *testing.T) {
	f := newFixture(t)
	name := "nobody"
	require.NoError(t, f.svc.UpdateProfile(context.Background(), ProfileUpdate{ID: "missing", Name: &name}))
}

func TestFetchCompanyInfo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.FetchCompanyInfo(ctx, "a@x.com")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, f.svc.StoreAuthInfo(ctx, validAuthInfo()))
	org := "Acme"
	require.NoError(t, f.svc.UpdateCompanyInfo(ctx, CompanyUpdate{Email: "a@x.com", OrgName: &org}))

	info, err := f.svc.FetchCompanyInfo(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Acme", *info.OrgName)
	assert.Nil(t, info.Position)
}

func TestStoreErrorsAreInternalAndLogged(t *testing.T) {
	logs := &memoryLog{}
	events := &recordingEmitter{}
	svc, err := NewService(&failingRepo{err: errors.New("connection refused")}, nil, auditlog.NewRecorder(logs, logger.Nop()), events)
	require.NoError(t, err)

	_, err = svc.CheckUser(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
	assert.Equal(t, "Error checking user.", pkgerrors.As(err).Message())
	assert.Equal(t, []string{"Error checking user: connection refused"}, logs.descriptions)
	assert.Empty(t, events.tags())
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []webhooks.Event
}

func (r *recordingEmitter) Emit(_ context.Context, event webhooks.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) tags() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for _, e := range r.events {
		out = append(out, e.Event)
	}
	return out
}

type memoryLog struct {
	descriptions []string
}

func (m *memoryLog) Append(_ context.Context, _ string, description string) error {
	m.descriptions = append(m.descriptions, description)
	return nil
}

type failingRepo struct {
	err error
}

func (f *failingRepo) Upsert(context.Context, *models.User) error { return f.err }
func (f *failingRepo) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, f.err
}
func (f *failingRepo) UpdateByID(context.Context, string, map[string]any) error    { return f.err }
func (f *failingRepo) UpdateByEmail(context.Context, string, map[string]any) error { return f.err }
func (f *failingRepo) FindCompanyInfo(context.Context, string) (*CompanyInfo, error) {
	return nil, f.err
}
func (f *failingRepo) GetToken(context.Context, string) (*string, bool, error) {
	return nil, false, f.err
}
