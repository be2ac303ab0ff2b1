package auditlog

import (
	"context"
	"fmt"

	"github.com/angelmondragon/authdash-backend/internal/webhooks"
	"github.com/angelmondragon/authdash-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/authdash-backend/pkg/errors"
)

// RecentLimit caps how many rows GET /logs returns.
const RecentLimit = 50

type reader interface {
	Recent(ctx context.Context, limit int) ([]models.LogEntry, error)
}

// Service exposes the read side of the audit log.
type Service interface {
	Recent(ctx context.Context) ([]models.LogEntry, error)
}

type service struct {
	repo     reader
	recorder *Recorder
	events   webhooks.Emitter
}

func NewService(repo reader, recorder *Recorder, events webhooks.Emitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auditlog repository required")
	}
	if events == nil {
		events = webhooks.NopEmitter{}
	}
	return &service{repo: repo, recorder: recorder, events: events}, nil
}

func (s *service) Recent(ctx context.Context) ([]models.LogEntry, error) {
	entries, err := s.repo.Recent(ctx, RecentLimit)
	if err != nil {
		s.recorder.Error(ctx, fmt.Sprintf("Error fetching logs: %s", err.Error()))
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error fetching logs.")
	}
	if entries == nil {
		entries = []models.LogEntry{}
	}
	s.events.Emit(ctx, webhooks.CountEvent(webhooks.EventLogsFetched, len(entries)))
	return entries, nil
}
