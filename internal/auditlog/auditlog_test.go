package auditlog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/angelmondragon/authdash-backend/internal/repo/repotest"
	"github.com/angelmondragon/authdash-backend/internal/webhooks"
	"github.com/angelmondragon/authdash-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/authdash-backend/pkg/errors"
	"github.com/angelmondragon/authdash-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryRecentNewestFirstAndCapped(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for i := 0; i < RecentLimit+5; i++ {
		require.NoError(t, repo.Append(ctx, TypeInfo, fmt.Sprintf("entry %d", i)))
	}

	entries, err := repo.Recent(ctx, RecentLimit)
	require.NoError(t, err)
	require.Len(t, entries, RecentLimit)
	assert.Equal(t, fmt.Sprintf("entry %d", RecentLimit+4), entries[0].EventDescription)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Timestamp.After(entries[i-1].Timestamp), "entries must be newest first")
	}
}

func TestRecorderSwallowsStoreFailures(t *testing.T) {
	store := &fakeAppender{err: errors.New("db down")}
	rec := NewRecorder(store, logger.Nop())

	rec.Error(context.Background(), "Error checking user: boom")

	require.Len(t, store.calls, 1)
	assert.Equal(t, TypeError, store.calls[0][0])
	assert.Equal(t, "Error checking user: boom", store.calls[0][1])
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.Info(context.Background(), "ignored")
}

func TestServiceRecentReturnsEmptySlice(t *testing.T) {
	svc, err := NewService(&fakeReader{}, nil, nil)
	require.NoError(t, err)

	entries, err := svc.Recent(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestServiceRecentWrapsStoreError(t *testing.T) {
	store := &fakeAppender{}
	svc, err := NewService(&fakeReader{err: errors.New("timeout")}, NewRecorder(store, logger.Nop()), nil)
	require.NoError(t, err)

	_, err = svc.Recent(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
	require.Len(t, store.calls, 1)
	assert.Equal(t, "Error fetching logs: timeout", store.calls[0][1])
}

func TestServiceRecentEmitsCount(t *testing.T) {
	events := &countingEmitter{}
	svc, err := NewService(&fakeReader{entries: make([]models.LogEntry, 3)}, nil, events)
	require.NoError(t, err)

	_, err = svc.Recent(context.Background())
	require.NoError(t, err)
	require.Len(t, events.events, 1)
	assert.Equal(t, webhooks.EventLogsFetched, events.events[0].Event)
	assert.Equal(t, 3, *events.events[0].Count)
}

type countingEmitter struct {
	events []webhooks.Event
}

func (c *countingEmitter) Emit(_ context.Context, e webhooks.Event) {
	c.events = append(c.events, e)
}

type fakeAppender struct {
	err   error
	calls [][2]string
}

func (f *fakeAppender) Append(_ context.Context, eventType, description string) error {
	f.calls = append(f.calls, [2]string{eventType, description})
	return f.err
}

type fakeReader struct {
	entries []models.LogEntry
	err     error
}

func (f *fakeReader) Recent(context.Context, int) ([]models.LogEntry, error) {
	return f.entries, f.err
}
