package auditlog

import (
	"context"

	"github.com/angelmondragon/authdash-backend/pkg/logger"
)

const (
	TypeInfo  = "Info"
	TypeError = "Error"
)

type appender interface {
	Append(ctx context.Context, eventType, description string) error
}

// Recorder writes audit rows on behalf of request handlers. A failed write
// is reported to the structured logger and never reaches the caller.
type Recorder struct {
	store appender
	logg  *logger.Logger
}

func NewRecorder(store appender, logg *logger.Logger) *Recorder {
	return &Recorder{store: store, logg: logg}
}

// Record appends one row.
func (r *Recorder) Record(ctx context.Context, eventType, description string) {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Append(ctx, eventType, description); err != nil && r.logg != nil {
		logCtx := r.logg.WithFields(ctx, map[string]any{
			"event_type":        eventType,
			"event_description": description,
		})
		r.logg.Error(logCtx, "failed to append audit log", err)
	}
}

func (r *Recorder) Info(ctx context.Context, description string) {
	r.Record(ctx, TypeInfo, description)
}

func (r *Recorder) Error(ctx context.Context, description string) {
	r.Record(ctx, TypeError, description)
}
