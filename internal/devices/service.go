package devices

import (
	"context"
	"fmt"

	"github.com/angelmondragon/authdash-backend/internal/auditlog"
	"github.com/angelmondragon/authdash-backend/internal/webhooks"
	pkgerrors "github.com/angelmondragon/authdash-backend/pkg/errors"
)

// Service records device registrations.
type Service interface {
	Save(ctx context.Context, in Input) (Result, error)
}

type service struct {
	strategy Strategy
	audit    *auditlog.Recorder
	events   webhooks.Emitter
}

func NewService(strategy Strategy, audit *auditlog.Recorder, events webhooks.Emitter) (Service, error) {
	if strategy == nil {
		return nil, fmt.Errorf("device strategy required")
	}
	if events == nil {
		events = webhooks.NopEmitter{}
	}
	return &service{strategy: strategy, audit: audit, events: events}, nil
}

var eventForOutcome = map[Outcome]string{
	OutcomeUpdated:  webhooks.EventDeviceUpdated,
	OutcomeInserted: webhooks.EventDeviceInserted,
	OutcomeSaved:    webhooks.EventDeviceDataSaved,
}

func (s *service) Save(ctx context.Context, in Input) (Result, error) {
	if in.Email == "" || in.DeviceID == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "Missing required device fields.")
	}

	result, err := s.strategy.Save(ctx, in)
	if err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Error saving device data: %s", err.Error()))
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error saving device data.")
	}

	s.audit.Info(ctx, fmt.Sprintf("Device data saved successfully for user %s.", in.Email))
	s.events.Emit(ctx, webhooks.DeviceEvent(eventForOutcome[result.Outcome], webhooks.DevicePayload{
		Email:       in.Email,
		DeviceID:    in.DeviceID,
		DeviceCount: result.DeviceCount,
	}))
	return result, nil
}
