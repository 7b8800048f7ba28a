// Package connection manages the exit graph between locations: stored
// connections, exits implied by the location tree, door state and travel.
package connection

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

// Service defines the connection operations
type Service interface {
	CreateConnection(ctx context.Context, input *CreateConnectionInput) (*CreateConnectionOutput, error)
	ListExits(ctx context.Context, input *ListExitsInput) (*ListExitsOutput, error)
	GetConnection(ctx context.Context, input *GetConnectionInput) (*GetConnectionOutput, error)
	GetConnectionByID(ctx context.Context, input *GetConnectionByIDInput) (*GetConnectionOutput, error)

	OpenDoor(ctx context.Context, input *DoorInput) (*DoorOutput, error)
	CloseDoor(ctx context.Context, input *DoorInput) (*DoorOutput, error)
	LockDoor(ctx context.Context, input *LockDoorInput) (*DoorOutput, error)
	UnlockDoor(ctx context.Context, input *UnlockDoorInput) (*DoorOutput, error)
	RevealExit(ctx context.Context, input *DoorInput) (*DoorOutput, error)
	HideExit(ctx context.Context, input *DoorInput) (*DoorOutput, error)

	TraverseConnection(ctx context.Context, input *TraverseConnectionInput) (*TraverseOutput, error)
	TraverseByDirection(ctx context.Context, input *TraverseByDirectionInput) (*TraverseOutput, error)
}

// Config holds the dependencies for the connection orchestrator
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

// NewOrchestrator creates a new connection orchestrator
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

func (o *orchestrator) CreateConnection(ctx context.Context, input *CreateConnectionInput) (*CreateConnectionOutput, error) {
	var out *CreateConnectionOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		var err error
		out, err = CreateInTx(ctx, tx, o.eventLog, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "connection resolved",
		"connection_id", out.Connection.ID,
		"created", out.Created,
		"upgraded", out.Upgraded)

	return out, nil
}

func (o *orchestrator) ListExits(ctx context.Context, input *ListExitsInput) (*ListExitsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	exits, err := Exits(ctx, o.repo, input.LocationID, input.IncludeHidden)
	if err != nil {
		return nil, err
	}
	return &ListExitsOutput{Exits: exits}, nil
}

func (o *orchestrator) GetConnection(ctx context.Context, input *GetConnectionInput) (*GetConnectionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Direction == "" {
		return nil, errors.InvalidArgument("direction is required")
	}

	c, err := FindByDirection(ctx, o.repo, input.FromLocationID, input.Direction)
	if err != nil {
		return nil, err
	}
	return &GetConnectionOutput{Connection: c}, nil
}

func (o *orchestrator) GetConnectionByID(ctx context.Context, input *GetConnectionByIDInput) (*GetConnectionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	c, err := o.repo.GetConnection(ctx, input.ConnectionID)
	if err != nil {
		return nil, err
	}
	return &GetConnectionOutput{Connection: c}, nil
}

// mutate applies one field change to a stored connection and logs it
func (o *orchestrator) mutate(
	ctx context.Context,
	connectionID int64,
	field string,
	apply func(c *entities.Connection) (old, updated interface{}, err error),
) (*DoorOutput, error) {
	var out *DoorOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		c, err := tx.GetConnection(ctx, connectionID)
		if err != nil {
			return err
		}

		old, updated, err := apply(c)
		if err != nil {
			return err
		}
		if err := tx.PutConnection(ctx, c); err != nil {
			return err
		}

		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   c.WorldID,
			EventType: entities.EventConnectionStateChanged,
			Target:    entities.Ref(entities.KindConnection, c.ID),
			Data: entities.Attributes{
				"field":     field,
				"old_value": old,
				"new_value": updated,
				"direction": c.Direction,
			},
		}); err != nil {
			return err
		}

		out = &DoorOutput{Connection: c}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *orchestrator) OpenDoor(ctx context.Context, input *DoorInput) (*DoorOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.mutate(ctx, input.ConnectionID, "is_open", func(c *entities.Connection) (interface{}, interface{}, error) {
		if c.IsLocked {
			return nil, nil, errors.FailedPreconditionf("connection %d is locked", c.ID)
		}
		old := c.IsOpen
		c.IsOpen = true
		return old, c.IsOpen, nil
	})
}

func (o *orchestrator) CloseDoor(ctx context.Context, input *DoorInput) (*DoorOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.mutate(ctx, input.ConnectionID, "is_open", func(c *entities.Connection) (interface{}, interface{}, error) {
		old := c.IsOpen
		c.IsOpen = false
		return old, c.IsOpen, nil
	})
}

func (o *orchestrator) LockDoor(ctx context.Context, input *LockDoorInput) (*DoorOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.mutate(ctx, input.ConnectionID, "is_locked", func(c *entities.Connection) (interface{}, interface{}, error) {
		old := c.IsLocked
		c.IsLocked = true
		if input.WithItemID != nil {
			c.RequiredItemID = entities.Int64Ptr(*input.WithItemID)
		}
		return old, c.IsLocked, nil
	})
}

func (o *orchestrator) UnlockDoor(ctx context.Context, input *UnlockDoorInput) (*DoorOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.mutate(ctx, input.ConnectionID, "is_locked", func(c *entities.Connection) (interface{}, interface{}, error) {
		if c.RequiredItemID != nil && !entities.SameID(c.RequiredItemID, input.UsingItemID) {
			return nil, nil, errors.InvalidArgument("wrong key").
				WithMeta("connection_id", c.ID)
		}
		old := c.IsLocked
		c.IsLocked = false
		return old, c.IsLocked, nil
	})
}

func (o *orchestrator) RevealExit(ctx context.Context, input *DoorInput) (*DoorOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.mutate(ctx, input.ConnectionID, "is_visible", func(c *entities.Connection) (interface{}, interface{}, error) {
		old := c.IsVisible
		c.IsVisible = true
		return old, c.IsVisible, nil
	})
}

func (o *orchestrator) HideExit(ctx context.Context, input *DoorInput) (*DoorOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.mutate(ctx, input.ConnectionID, "is_visible", func(c *entities.Connection) (interface{}, interface{}, error) {
		old := c.IsVisible
		c.IsVisible = false
		return old, c.IsVisible, nil
	})
}

func (o *orchestrator) TraverseConnection(ctx context.Context, input *TraverseConnectionInput) (*TraverseOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	return o.traverse(ctx, input.CharacterID, func(tx *worldstate.Tx, ch *entities.Character) (*entities.Connection, error) {
		c, err := tx.GetConnection(ctx, input.ConnectionID)
		if err != nil {
			return nil, err
		}
		return FromLocation(c, ch.LocationID)
	})
}

func (o *orchestrator) TraverseByDirection(ctx context.Context, input *TraverseByDirectionInput) (*TraverseOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Direction == "" {
		return nil, errors.InvalidArgument("direction is required")
	}

	return o.traverse(ctx, input.CharacterID, func(tx *worldstate.Tx, ch *entities.Character) (*entities.Connection, error) {
		return FindByDirection(ctx, tx, ch.LocationID, input.Direction)
	})
}

func (o *orchestrator) traverse(
	ctx context.Context,
	characterID int64,
	resolve func(tx *worldstate.Tx, ch *entities.Character) (*entities.Connection, error),
) (*TraverseOutput, error) {
	var out *TraverseOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		ch, err := tx.GetCharacter(ctx, characterID)
		if err != nil {
			return err
		}

		c, err := resolve(tx, ch)
		if err != nil {
			return err
		}
		if c.IsLocked {
			return errors.FailedPreconditionf("the way %s is locked", c.Direction).
				WithMeta("connection_id", c.ID)
		}
		if c.IsDoor() && !c.IsOpen {
			return errors.FailedPreconditionf("the door %s is closed", c.Direction).
				WithMeta("connection_id", c.ID)
		}

		from := ch.LocationID
		ch.LocationID = c.ToLocationID
		if err := tx.PutCharacter(ctx, ch); err != nil {
			return err
		}

		// implicit exits have no row
		var connectionID interface{}
		if !c.Implicit {
			connectionID = c.ID
		}
		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   ch.WorldID,
			EventType: entities.EventCharacterMoved,
			Actor:     entities.Ref(entities.KindCharacter, ch.ID),
			Target:    entities.Ref(entities.KindCharacter, ch.ID),
			Data: entities.Attributes{
				"from_location_id": from,
				"to_location_id":   c.ToLocationID,
				"connection_id":    connectionID,
				"direction":        c.Direction,
				"implicit":         c.Implicit,
			},
		}); err != nil {
			return err
		}

		out = &TraverseOutput{
			Character:      ch,
			Connection:     c,
			FromLocationID: from,
			ToLocationID:   c.ToLocationID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
