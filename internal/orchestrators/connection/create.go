package connection

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

// CreateInTx runs the connection merge inside an open transaction:
//
//  1. an existing bidirectional row in either direction is returned as is
//  2. a bidirectional request upgrades an existing one-way row in place;
//     a second one-way row in the other direction is collapsed into it,
//     otherwise the reverse row is synthesised
//  3. a one-way request never adds a parallel edge next to an existing row
//  4. otherwise the forward row, and the reverse row when bidirectional,
//     are created
func CreateInTx(
	ctx context.Context,
	tx *worldstate.Tx,
	log eventlog.Service,
	input *CreateConnectionInput,
) (*CreateConnectionOutput, error) {
	if err := validateCreate(ctx, tx, input); err != nil {
		return nil, err
	}

	forward, err := tx.FindConnection(ctx, input.FromLocationID, input.ToLocationID)
	if err != nil {
		return nil, err
	}
	backward, err := tx.FindConnection(ctx, input.ToLocationID, input.FromLocationID)
	if err != nil {
		return nil, err
	}

	switch {
	case forward != nil && forward.IsBidirectional:
		return &CreateConnectionOutput{Connection: forward, Reverse: backward}, nil
	case backward != nil && backward.IsBidirectional:
		return &CreateConnectionOutput{Connection: backward, Reverse: forward}, nil
	}

	if forward != nil || backward != nil {
		if !input.IsBidirectional {
			existing := forward
			if existing == nil {
				existing = backward
			}
			slog.DebugContext(ctx, "connection already exists, not adding a parallel edge",
				"connection_id", existing.ID,
				"from_location_id", input.FromLocationID,
				"to_location_id", input.ToLocationID)
			return &CreateConnectionOutput{Connection: existing}, nil
		}

		target, other := forward, backward
		if target == nil {
			target, other = backward, forward
		}
		return upgrade(ctx, tx, log, target, other)
	}

	created := newConnection(input)
	if err := tx.CreateConnection(ctx, created); err != nil {
		return nil, err
	}
	if err := logCreated(ctx, tx, log, created); err != nil {
		return nil, err
	}

	out := &CreateConnectionOutput{Connection: created, Created: true}
	if input.IsBidirectional {
		rev := reverseRow(created)
		if err := tx.CreateConnection(ctx, rev); err != nil {
			return nil, err
		}
		if err := logCreated(ctx, tx, log, rev); err != nil {
			return nil, err
		}
		out.Reverse = rev
	}
	return out, nil
}

func upgrade(
	ctx context.Context,
	tx *worldstate.Tx,
	log eventlog.Service,
	target, other *entities.Connection,
) (*CreateConnectionOutput, error) {
	target.IsBidirectional = true
	if err := tx.PutConnection(ctx, target); err != nil {
		return nil, err
	}

	data := entities.Attributes{
		"from_location_id": target.FromLocationID,
		"to_location_id":   target.ToLocationID,
		"is_bidirectional": true,
	}
	out := &CreateConnectionOutput{Connection: target, Upgraded: true}

	if other != nil {
		if err := tx.DeleteConnection(ctx, other.ID); err != nil {
			return nil, err
		}
		data["collapsed_connection_id"] = other.ID
	} else {
		rev := reverseRow(target)
		if err := tx.CreateConnection(ctx, rev); err != nil {
			return nil, err
		}
		if err := logCreated(ctx, tx, log, rev); err != nil {
			return nil, err
		}
		data["reverse_connection_id"] = rev.ID
		out.Reverse = rev
	}

	if _, err := log.Log(ctx, tx, &eventlog.LogInput{
		WorldID:   target.WorldID,
		EventType: entities.EventConnectionUpgraded,
		Target:    entities.Ref(entities.KindConnection, target.ID),
		Data:      data,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func validateCreate(ctx context.Context, r worldstate.Reader, input *CreateConnectionInput) error {
	if input == nil {
		return errors.InvalidArgument("input is required")
	}
	if input.FromLocationID == input.ToLocationID {
		return errors.InvalidArgument("a connection cannot lead to its own location")
	}
	if input.ConnectionType == "" {
		input.ConnectionType = entities.ConnectionPassage
	}
	if !input.ConnectionType.IsValid() {
		return errors.InvalidArgumentf("invalid connection type %q", input.ConnectionType)
	}

	from, err := r.GetLocation(ctx, input.FromLocationID)
	if err != nil {
		return err
	}
	to, err := r.GetLocation(ctx, input.ToLocationID)
	if err != nil {
		return err
	}
	if input.WorldID == 0 {
		input.WorldID = from.WorldID
	}
	if from.WorldID != input.WorldID || to.WorldID != input.WorldID {
		return errors.InvalidArgumentf("locations %d and %d must both belong to world %d",
			from.ID, to.ID, input.WorldID)
	}
	if input.Direction == "" {
		input.Direction = ImplicitDirection(to.Name)
	}
	return nil
}

func newConnection(input *CreateConnectionInput) *entities.Connection {
	visible, open := true, true
	if input.IsVisible != nil {
		visible = *input.IsVisible
	}
	if input.IsOpen != nil {
		open = *input.IsOpen
	}

	return &entities.Connection{
		WorldID:            input.WorldID,
		FromLocationID:     input.FromLocationID,
		ToLocationID:       input.ToLocationID,
		ConnectionType:     input.ConnectionType,
		Direction:          input.Direction,
		Description:        input.Description,
		IsVisible:          visible,
		IsLocked:           input.IsLocked,
		IsOpen:             open,
		RequiredItemID:     input.RequiredItemID,
		IsBidirectional:    input.IsBidirectional,
		ReverseDescription: input.ReverseDescription,
	}
}

// reverseRow is the companion row of a bidirectional connection. Its door
// state starts equal to c and is toggled independently afterwards.
func reverseRow(c *entities.Connection) *entities.Connection {
	rev := &entities.Connection{
		WorldID:            c.WorldID,
		FromLocationID:     c.ToLocationID,
		ToLocationID:       c.FromLocationID,
		ConnectionType:     c.ConnectionType,
		Direction:          ReverseDirection(c.Direction),
		Description:        c.ReverseDescription,
		IsVisible:          c.IsVisible,
		IsLocked:           c.IsLocked,
		IsOpen:             c.IsOpen,
		RequiredItemID:     c.RequiredItemID,
		IsBidirectional:    true,
		ReverseDescription: c.Description,
	}
	if rev.Description == "" {
		rev.Description = c.Description
	}
	return rev
}

func logCreated(ctx context.Context, tx *worldstate.Tx, log eventlog.Service, c *entities.Connection) error {
	_, err := log.Log(ctx, tx, &eventlog.LogInput{
		WorldID:   c.WorldID,
		EventType: entities.EventConnectionCreated,
		Target:    entities.Ref(entities.KindConnection, c.ID),
		Data: entities.Attributes{
			"from_location_id": c.FromLocationID,
			"to_location_id":   c.ToLocationID,
			"direction":        c.Direction,
			"connection_type":  string(c.ConnectionType),
			"is_bidirectional": c.IsBidirectional,
		},
	})
	return err
}
