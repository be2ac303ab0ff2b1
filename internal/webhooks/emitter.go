package webhooks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/authdash-backend/pkg/logger"
	"go.uber.org/multierr"
)

// Emitter publishes dashboard events. Emit never fails the caller.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// Sink receives the serialized event.
type Sink interface {
	Name() string
	Send(ctx context.Context, payload []byte) error
}

type recorder interface {
	Append(ctx context.Context, userEmail, event, data string) error
}

// Dispatcher writes each event to the webhooks table, then fans it out to
// every sink in order.
type Dispatcher struct {
	store recorder
	sinks []Sink
	logg  *logger.Logger
}

func NewDispatcher(store recorder, logg *logger.Logger, sinks ...Sink) *Dispatcher {
	if logg == nil {
		logg = logger.Nop()
	}
	filtered := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return &Dispatcher{store: store, sinks: filtered, logg: logg}
}

func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	ctx = d.logg.WithField(ctx, "event", event.Event)

	payload, err := json.Marshal(event)
	if err != nil {
		d.logg.Error(ctx, "failed to encode event", err)
		return
	}

	if d.store != nil {
		if err := d.store.Append(ctx, event.Email(), event.Event, string(payload)); err != nil {
			d.logg.Error(ctx, "failed to record webhook event", err)
		}
	}

	var errs error
	for _, sink := range d.sinks {
		if err := sink.Send(ctx, payload); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	if errs != nil {
		d.logg.Warn(ctx, "event dispatch incomplete: "+errs.Error())
	}
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, Event) {}
