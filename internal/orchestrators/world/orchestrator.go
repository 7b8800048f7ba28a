// Package world manages world-level time and free-form state
package world

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

// Service defines the world operations
type Service interface {
	GetWorld(ctx context.Context, input *GetWorldInput) (*GetWorldOutput, error)
	GetWorldTime(ctx context.Context, input *GetWorldTimeInput) (*GetWorldTimeOutput, error)
	AdvanceTime(ctx context.Context, input *AdvanceTimeInput) (*AdvanceTimeOutput, error)
	AdvanceDay(ctx context.Context, input *AdvanceDayInput) (*AdvanceDayOutput, error)
	SetWorldState(ctx context.Context, input *SetWorldStateInput) (*SetWorldStateOutput, error)
	GetWorldState(ctx context.Context, input *GetWorldStateInput) (*GetWorldStateOutput, error)
}

// Config holds the dependencies for the world orchestrator
type Config struct {
	Repository worldstate.Repository
	EventLog   eventlog.Service
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.EventLog == nil {
		vb.RequiredField("EventLog")
	}

	return vb.Build()
}

type orchestrator struct {
	repo     worldstate.Repository
	eventLog eventlog.Service
}

// NewOrchestrator creates a new world orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		repo:     cfg.Repository,
		eventLog: cfg.EventLog,
	}, nil
}

func (o *orchestrator) GetWorld(ctx context.Context, input *GetWorldInput) (*GetWorldOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	w, err := o.repo.GetWorld(ctx, input.WorldID)
	if err != nil {
		return nil, err
	}
	return &GetWorldOutput{World: w}, nil
}

func (o *orchestrator) GetWorldTime(ctx context.Context, input *GetWorldTimeInput) (*GetWorldTimeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	w, err := o.repo.GetWorld(ctx, input.WorldID)
	if err != nil {
		return nil, err
	}
	return &GetWorldTimeOutput{TimeOfDay: w.TimeOfDay, DaysElapsed: w.DaysElapsed}, nil
}

func (o *orchestrator) AdvanceTime(ctx context.Context, input *AdvanceTimeInput) (*AdvanceTimeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if !input.TimeOfDay.IsValid() {
		return nil, errors.InvalidArgumentf("invalid time of day %q: must be one of %v",
			input.TimeOfDay, entities.TimesOfDay).
			WithMeta("time_of_day", string(input.TimeOfDay))
	}

	var out *AdvanceTimeOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		w, err := tx.GetWorld(ctx, input.WorldID)
		if err != nil {
			return err
		}

		previous := w.TimeOfDay
		w.TimeOfDay = input.TimeOfDay
		if err := tx.PutWorld(ctx, w); err != nil {
			return err
		}

		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   w.ID,
			EventType: entities.EventTimeAdvanced,
			Target:    entities.Ref(entities.KindWorld, w.ID),
			Data: entities.Attributes{
				"old_time": string(previous),
				"new_time": string(w.TimeOfDay),
			},
		}); err != nil {
			return err
		}

		out = &AdvanceTimeOutput{World: w, PreviousTime: previous}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (o *orchestrator) AdvanceDay(ctx context.Context, input *AdvanceDayInput) (*AdvanceDayOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var out *AdvanceDayOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		w, err := tx.GetWorld(ctx, input.WorldID)
		if err != nil {
			return err
		}

		previousDay, previousTime := w.DaysElapsed, w.TimeOfDay
		w.DaysElapsed++
		w.TimeOfDay = entities.TimeMorning
		if err := tx.PutWorld(ctx, w); err != nil {
			return err
		}

		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   w.ID,
			EventType: entities.EventDayAdvanced,
			Target:    entities.Ref(entities.KindWorld, w.ID),
			Data: entities.Attributes{
				"old_day":  previousDay,
				"new_day":  w.DaysElapsed,
				"old_time": string(previousTime),
				"new_time": string(w.TimeOfDay),
			},
		}); err != nil {
			return err
		}

		out = &AdvanceDayOutput{World: w, PreviousDay: previousDay}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "world day advanced",
		"world_id", input.WorldID,
		"days_elapsed", out.World.DaysElapsed)

	return out, nil
}

func (o *orchestrator) SetWorldState(ctx context.Context, input *SetWorldStateInput) (*SetWorldStateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Key == "" {
		return nil, errors.InvalidArgument("state key is required")
	}

	var out *SetWorldStateOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		w, err := tx.GetWorld(ctx, input.WorldID)
		if err != nil {
			return err
		}

		if w.WorldState == nil {
			w.WorldState = entities.Attributes{}
		}
		old := w.WorldState[input.Key]
		w.WorldState[input.Key] = input.Value
		if err := tx.PutWorld(ctx, w); err != nil {
			return err
		}

		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   w.ID,
			EventType: entities.EventWorldStateChanged,
			Target:    entities.Ref(entities.KindWorld, w.ID),
			Data: entities.Attributes{
				"key":       input.Key,
				"old_value": old,
				"new_value": input.Value,
			},
		}); err != nil {
			return err
		}

		out = &SetWorldStateOutput{World: w, OldValue: old}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (o *orchestrator) GetWorldState(ctx context.Context, input *GetWorldStateInput) (*GetWorldStateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	w, err := o.repo.GetWorld(ctx, input.WorldID)
	if err != nil {
		return nil, err
	}

	value, found := w.WorldState.Get(input.Key)
	return &GetWorldStateOutput{Value: value, Found: found}, nil
}
