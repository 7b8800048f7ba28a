// Package eventlog records every world state change as an append-only
// GameEvent and serves history queries
package eventlog

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/observe"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

// DefaultRecentLimit is used when GetRecentEvents is called without a limit
const DefaultRecentLimit = 20

// Service defines the event log operations
type Service interface {
	// Log stages an event on tx. It is written in the same transaction as
	// the mutation it describes and published once that commits.
	Log(ctx context.Context, tx *worldstate.Tx, input *LogInput) (*entities.GameEvent, error)

	GetRecentEvents(ctx context.Context, input *GetRecentEventsInput) (*GetRecentEventsOutput, error)
	GetEvents(ctx context.Context, input *GetEventsInput) (*GetEventsOutput, error)
}

// Config holds the dependencies for the event log
type Config struct {
	Repository worldstate.Repository
	// EventBus receives each committed event; optional
	EventBus events.EventBus
	// Metrics is optional
	Metrics     *observe.Metrics
	RecentLimit int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.RecentLimit < 0 {
		vb.Field("RecentLimit", "cannot be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	repo        worldstate.Repository
	bus         events.EventBus
	metrics     *observe.Metrics
	recentLimit int
}

// NewOrchestrator creates a new event log
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	limit := cfg.RecentLimit
	if limit == 0 {
		limit = DefaultRecentLimit
	}

	return &orchestrator{
		repo:        cfg.Repository,
		bus:         cfg.EventBus,
		metrics:     cfg.Metrics,
		recentLimit: limit,
	}, nil
}

func (o *orchestrator) Log(ctx context.Context, tx *worldstate.Tx, input *LogInput) (*entities.GameEvent, error) {
	if tx == nil {
		return nil, errors.InvalidArgument("transaction is required")
	}
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EventType == "" {
		return nil, errors.InvalidArgument("event type is required")
	}

	event := &entities.GameEvent{
		WorldID:   input.WorldID,
		RoomID:    input.RoomID,
		EventType: input.EventType,
		Actor:     input.Actor,
		Target:    input.Target,
		EventData: input.Data,
		CreatedBy: input.CreatedBy,
	}
	if call, ok := CallFrom(ctx); ok {
		event.OperationID = call.OperationID
		if event.RoomID == nil {
			event.RoomID = call.RoomID
		}
		if event.CreatedBy == nil {
			event.CreatedBy = call.UserID
		}
	}

	if err := tx.AppendEvent(ctx, event); err != nil {
		return nil, errors.Wrapf(err, "failed to log %s", input.EventType)
	}

	tx.AfterCommit(func(ctx context.Context) {
		o.metrics.RecordEvent(ctx, event.EventType)
		o.publish(ctx, event)
	})

	return event, nil
}

func (o *orchestrator) publish(ctx context.Context, event *entities.GameEvent) {
	if o.bus == nil {
		return
	}

	var source, target core.Entity
	if event.Actor != nil {
		source = event.Actor
	}
	if event.Target != nil {
		target = event.Target
	}

	if err := o.bus.Publish(ctx, events.NewGameEvent(event.EventType, source, target)); err != nil {
		slog.WarnContext(ctx, "failed to publish game event",
			"event_id", event.ID,
			"event_type", event.EventType,
			"error", err)
	}
}

func (o *orchestrator) GetRecentEvents(ctx context.Context, input *GetRecentEventsInput) (*GetRecentEventsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = o.recentLimit
	}

	list, err := o.repo.ListEvents(ctx, worldstate.ListEventsInput{
		WorldID: input.WorldID,
		RoomID:  input.RoomID,
		Limit:   limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recent events")
	}

	return &GetRecentEventsOutput{Events: list}, nil
}

func (o *orchestrator) GetEvents(ctx context.Context, input *GetEventsInput) (*GetEventsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	list, err := o.repo.ListEvents(ctx, worldstate.ListEventsInput{
		WorldID: input.WorldID,
		RoomID:  input.Filter.RoomID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}

	matched := make([]*entities.GameEvent, 0, len(list))
	for _, ev := range list {
		if input.Filter.Matches(ev) {
			matched = append(matched, ev)
		}
	}

	slog.DebugContext(ctx, "filtered events",
		"world_id", input.WorldID,
		"scanned", len(list),
		"matched", len(matched))

	return &GetEventsOutput{Events: matched}, nil
}

// Matches reports whether ev satisfies every set field of f
func (f Filter) Matches(ev *entities.GameEvent) bool {
	if f.EventType != nil && ev.EventType != *f.EventType {
		return false
	}
	if f.RoomID != nil && !entities.SameID(f.RoomID, ev.RoomID) {
		return false
	}
	if f.Actor != nil && !f.Actor.Equal(ev.Actor) {
		return false
	}
	if f.Target != nil && !f.Target.Equal(ev.Target) {
		return false
	}
	if f.CreatedBy != nil && !entities.SameID(f.CreatedBy, ev.CreatedBy) {
		return false
	}
	if f.OperationID != nil && ev.OperationID != *f.OperationID {
		return false
	}
	return true
}
