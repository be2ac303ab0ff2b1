package devices

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/authdash-backend/pkg/config"
	"github.com/angelmondragon/authdash-backend/pkg/db/models"
)

// Outcome names what a Save did to the store.
type Outcome string

const (
	OutcomeUpdated  Outcome = "updated"
	OutcomeInserted Outcome = "inserted"
	OutcomeSaved    Outcome = "saved"
)

// Input is one device registration request.
type Input struct {
	Email       string `json:"email" validate:"required"`
	DeviceID    string `json:"deviceId" validate:"required"`
	DeviceCount *int   `json:"deviceCount"`
}

// Result reports the outcome and the registration count after the write.
type Result struct {
	Outcome     Outcome
	DeviceCount int
}

type deviceStore interface {
	FindByOwner(ctx context.Context, email, deviceID string) (*models.Device, error)
	Increment(ctx context.Context, id uint, at time.Time) error
	Insert(ctx context.Context, device *models.Device) error
}

// Strategy persists one registration.
type Strategy interface {
	Name() string
	Save(ctx context.Context, in Input) (Result, error)
}

// NewStrategy picks the strategy named in configuration.
func NewStrategy(name string, store deviceStore) (Strategy, error) {
	switch name {
	case "", config.DeviceStrategyCounting:
		return &counting{store: store, now: time.Now}, nil
	case config.DeviceStrategyInsert:
		return &inserting{store: store}, nil
	default:
		return nil, fmt.Errorf("unknown device strategy %q", name)
	}
}

// counting keeps one row per (email, deviceId) and counts repeat registrations.
type counting struct {
	store deviceStore
	now   func() time.Time
}

func (c *counting) Name() string { return config.DeviceStrategyCounting }

func (c *counting) Save(ctx context.Context, in Input) (Result, error) {
	existing, err := c.store.FindByOwner(ctx, in.Email, in.DeviceID)
	if err != nil {
		return Result{}, err
	}
	if existing != nil {
		if err := c.store.Increment(ctx, existing.ID, c.now()); err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeUpdated, DeviceCount: existing.DeviceCount + 1}, nil
	}
	device := &models.Device{Email: in.Email, DeviceID: in.DeviceID, DeviceCount: 1}
	if err := c.store.Insert(ctx, device); err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeInserted, DeviceCount: 1}, nil
}

// inserting appends a row per request with the supplied count.
type inserting struct {
	store deviceStore
}

func (i *inserting) Name() string { return config.DeviceStrategyInsert }

func (i *inserting) Save(ctx context.Context, in Input) (Result, error) {
	count := 1
	if in.DeviceCount != nil && *in.DeviceCount >= 1 {
		count = *in.DeviceCount
	}
	device := &models.Device{Email: in.Email, DeviceID: in.DeviceID, DeviceCount: count}
	if err := i.store.Insert(ctx, device); err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeSaved, DeviceCount: count}, nil
}
