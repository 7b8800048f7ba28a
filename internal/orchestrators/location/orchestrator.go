// Package location describes locations and manages their dynamic state,
// their contents and their place in the location tree
package location

import (
	"context"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/connection"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

// MaxDepth bounds ancestor walks when checking for cycles
const MaxDepth = 64

// Service defines the location operations
type Service interface {
	GetLocation(ctx context.Context, input *GetLocationInput) (*GetLocationOutput, error)
	DescribeLocation(ctx context.Context, input *DescribeLocationInput) (*DescribeLocationOutput, error)

	ListCharactersAt(ctx context.Context, input *ListAtInput) (*ListCharactersAtOutput, error)
	ListItemsAt(ctx context.Context, input *ListAtInput) (*ListItemsAtOutput, error)
	ListContainersAt(ctx context.Context, input *ListAtInput) (*ListContainersAtOutput, error)

	GetLocationState(ctx context.Context, input *GetLocationStateInput) (*GetLocationStateOutput, error)
	SetLocationState(ctx context.Context, input *SetLocationStateInput) (*LocationStateOutput, error)
	ClearLocationState(ctx context.Context, input *ClearLocationStateInput) (*LocationStateOutput, error)
	GetAllLocationState(ctx context.Context, input *GetAllLocationStateInput) (*GetAllLocationStateOutput, error)

	SetLocationParent(ctx context.Context, input *SetLocationParentInput) (*SetLocationParentOutput, error)
}

// Config holds the dependencies for the location orchestrator
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

// NewOrchestrator creates a new location orchestrator
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

func (o *orchestrator) GetLocation(ctx context.Context, input *GetLocationInput) (*GetLocationOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	loc, err := o.repo.GetLocation(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}
	return &GetLocationOutput{Location: loc}, nil
}

func (o *orchestrator) DescribeLocation(ctx context.Context, input *DescribeLocationInput) (*DescribeLocationOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	loc, err := o.repo.GetLocation(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}

	out := &DescribeLocationOutput{Location: loc}
	if loc.State.Bool(StateIsDark) {
		out.Description, out.IsDark = describe(loc, nil)
		return out, nil
	}

	exits, err := connection.Exits(ctx, o.repo, loc.ID, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list exits")
	}
	out.Exits = exits
	out.Description, out.IsDark = describe(loc, exits)
	return out, nil
}

func (o *orchestrator) ListCharactersAt(ctx context.Context, input *ListAtInput) (*ListCharactersAtOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.repo.GetLocation(ctx, input.LocationID); err != nil {
		return nil, err
	}

	all, err := o.repo.ListCharactersAt(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}

	living := make([]*entities.Character, 0, len(all))
	for _, c := range all {
		if !c.IsDead {
			living = append(living, c)
		}
	}
	return &ListCharactersAtOutput{Characters: living}, nil
}

func (o *orchestrator) ListItemsAt(ctx context.Context, input *ListAtInput) (*ListItemsAtOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.repo.GetLocation(ctx, input.LocationID); err != nil {
		return nil, err
	}

	items, err := o.repo.ListItemsAt(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}
	return &ListItemsAtOutput{Items: items}, nil
}

func (o *orchestrator) ListContainersAt(ctx context.Context, input *ListAtInput) (*ListContainersAtOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.repo.GetLocation(ctx, input.LocationID); err != nil {
		return nil, err
	}

	containers, err := o.repo.ListContainersAt(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}
	return &ListContainersAtOutput{Containers: containers}, nil
}

func (o *orchestrator) GetLocationState(ctx context.Context, input *GetLocationStateInput) (*GetLocationStateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	loc, err := o.repo.GetLocation(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}

	value, found := loc.State.Get(input.Key)
	return &GetLocationStateOutput{Value: value, Found: found}, nil
}

func (o *orchestrator) GetAllLocationState(ctx context.Context, input *GetAllLocationStateInput) (*GetAllLocationStateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	loc, err := o.repo.GetLocation(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}
	return &GetAllLocationStateOutput{State: loc.State.Clone()}, nil
}

func (o *orchestrator) SetLocationState(ctx context.Context, input *SetLocationStateInput) (*LocationStateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.changeState(ctx, input.LocationID, input.Key, func(state entities.Attributes) interface{} {
		state[input.Key] = input.Value
		return input.Value
	})
}

func (o *orchestrator) ClearLocationState(ctx context.Context, input *ClearLocationStateInput) (*LocationStateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.changeState(ctx, input.LocationID, input.Key, func(state entities.Attributes) interface{} {
		delete(state, input.Key)
		return nil
	})
}

func (o *orchestrator) changeState(
	ctx context.Context,
	locationID int64,
	key string,
	apply func(state entities.Attributes) interface{},
) (*LocationStateOutput, error) {
	if key == "" {
		return nil, errors.InvalidArgument("state key is required")
	}

	var out *LocationStateOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		loc, err := tx.GetLocation(ctx, locationID)
		if err != nil {
			return err
		}
		if loc.State == nil {
			loc.State = entities.Attributes{}
		}

		old := loc.State[key]
		updated := apply(loc.State)
		if err := tx.PutLocation(ctx, loc); err != nil {
			return err
		}

		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   loc.WorldID,
			EventType: entities.EventLocationStateChanged,
			Target:    entities.Ref(entities.KindLocation, loc.ID),
			Data: entities.Attributes{
				"key":       key,
				"old_value": old,
				"new_value": updated,
			},
		}); err != nil {
			return err
		}

		out = &LocationStateOutput{Location: loc, OldValue: old}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *orchestrator) SetLocationParent(ctx context.Context, input *SetLocationParentInput) (*SetLocationParentOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var out *SetLocationParentOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		loc, err := tx.GetLocation(ctx, input.LocationID)
		if err != nil {
			return err
		}

		if input.ParentLocationID != nil {
			if err := checkParent(ctx, tx, loc, *input.ParentLocationID); err != nil {
				return err
			}
		}

		previous := loc.ParentLocationID
		loc.ParentLocationID = input.ParentLocationID
		if err := tx.PutLocation(ctx, loc); err != nil {
			return err
		}

		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   loc.WorldID,
			EventType: entities.EventLocationParentChanged,
			Target:    entities.Ref(entities.KindLocation, loc.ID),
			Data: entities.Attributes{
				"old_parent_id": previous,
				"new_parent_id": input.ParentLocationID,
			},
		}); err != nil {
			return err
		}

		out = &SetLocationParentOutput{Location: loc, PreviousParent: previous}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// checkParent rejects a parent that is the location itself, lives in
// another world, or descends from the location
func checkParent(ctx context.Context, r worldstate.Reader, loc *entities.Location, parentID int64) error {
	if parentID == loc.ID {
		return errors.InvalidArgument("a location cannot be its own parent")
	}

	parent, err := r.GetLocation(ctx, parentID)
	if err != nil {
		return err
	}
	if parent.WorldID != loc.WorldID {
		return errors.InvalidArgumentf("parent location %d belongs to another world", parentID)
	}

	cursor := parent
	for depth := 0; cursor.ParentLocationID != nil; depth++ {
		if depth >= MaxDepth {
			return errors.FailedPreconditionf("location tree deeper than %d levels", MaxDepth)
		}
		if *cursor.ParentLocationID == loc.ID {
			return errors.InvalidArgumentf("location %d is a descendant of location %d", parentID, loc.ID).
				WithMeta("reason", "cycle")
		}
		cursor, err = r.GetLocation(ctx, *cursor.ParentLocationID)
		if err != nil {
			return err
		}
	}
	return nil
}
