package engine

import (
	"context"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/observe"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/builder"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/character"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/connection"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/item"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/location"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/quest"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/world"
	"github.com/KirkDiggler/rpg-world/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

// Config holds the dependencies for the engine
type Config struct {
	Repository worldstate.Repository
	// EventBus receives every committed event; optional
	EventBus events.EventBus
	// Metrics is optional
	Metrics *observe.Metrics
	// OperationIDs defaults to uuids
	OperationIDs     idgen.Generator
	RecentEventLimit int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.RecentEventLimit < 0 {
		vb.Field("RecentEventLimit", "cannot be negative")
	}

	return vb.Build()
}

type engine struct {
	eventLog   eventlog.Service
	world      world.Service
	location   location.Service
	connection connection.Service
	item       item.Service
	character  character.Service
	quest      quest.Service
	builder    builder.Service

	metrics *observe.Metrics
	ids     idgen.Generator
}

// New wires every manager over one shared store
func New(cfg *Config) (Engine, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	e := &engine{metrics: cfg.Metrics, ids: cfg.OperationIDs}
	if e.ids == nil {
		e.ids = idgen.NewUUID("")
	}

	var err error
	e.eventLog, err = eventlog.NewOrchestrator(&eventlog.Config{
		Repository:  cfg.Repository,
		EventBus:    cfg.EventBus,
		Metrics:     cfg.Metrics,
		RecentLimit: cfg.RecentEventLimit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create event log")
	}

	repo, log := cfg.Repository, e.eventLog
	if e.world, err = world.NewOrchestrator(&world.Config{Repository: repo, EventLog: log}); err != nil {
		return nil, errors.Wrap(err, "failed to create world manager")
	}
	if e.location, err = location.NewOrchestrator(&location.Config{Repository: repo, EventLog: log}); err != nil {
		return nil, errors.Wrap(err, "failed to create location manager")
	}
	if e.connection, err = connection.NewOrchestrator(&connection.Config{Repository: repo, EventLog: log}); err != nil {
		return nil, errors.Wrap(err, "failed to create connection manager")
	}
	if e.item, err = item.NewOrchestrator(&item.Config{Repository: repo, EventLog: log}); err != nil {
		return nil, errors.Wrap(err, "failed to create item manager")
	}
	if e.character, err = character.NewOrchestrator(&character.Config{Repository: repo, EventLog: log}); err != nil {
		return nil, errors.Wrap(err, "failed to create character manager")
	}
	if e.quest, err = quest.NewOrchestrator(&quest.Config{Repository: repo, EventLog: log}); err != nil {
		return nil, errors.Wrap(err, "failed to create quest manager")
	}
	if e.builder, err = builder.NewOrchestrator(&builder.Config{Repository: repo, EventLog: log}); err != nil {
		return nil, errors.Wrap(err, "failed to create world builder")
	}

	return e, nil
}

var _ Engine = (*engine)(nil)

// Caller identifies who an engine call acts for. Its room and user are
// stamped on every event the call logs.
type Caller struct {
	RoomID *int64
	UserID *int64
}

// WithCaller attaches the caller to ctx
func WithCaller(ctx context.Context, c Caller) context.Context {
	return eventlog.WithCall(ctx, eventlog.Call{RoomID: c.RoomID, UserID: c.UserID})
}

// call runs one facade operation. Every event it logs shares a fresh
// operation id, and any error that is not already an *errors.Error is
// wrapped as Internal.
func call[I, O any](
	ctx context.Context,
	e *engine,
	op string,
	input *I,
	fn func(context.Context, *I) (*O, error),
) (*O, error) {
	meta, _ := eventlog.CallFrom(ctx)
	meta.OperationID = e.ids.Generate()
	ctx = eventlog.WithCall(ctx, meta)

	ctx, span := observe.StartSpan(ctx, "engine."+op, trace.WithAttributes(
		attribute.String("rpg_world.operation", op),
		attribute.String("rpg_world.operation_id", meta.OperationID),
	))
	defer span.End()

	start := time.Now()
	out, err := fn(ctx, input)
	err = normalize(err)

	code := ""
	if err != nil {
		code = errors.GetCode(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, errors.GetMessage(err))
		observe.Logger(ctx).DebugContext(ctx, "engine operation failed",
			"operation", op,
			"operation_id", meta.OperationID,
			"code", code,
			"error", err)
		out = nil
	}
	e.metrics.RecordOperation(ctx, op, time.Since(start), code)

	return out, err
}

func normalize(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return errors.Wrap(err, "unexpected engine failure")
}
