package connection

import (
	"context"
	"sort"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

// ExplicitExits returns the stored connections leaving a location. A
// bidirectional row stored in the other direction is returned as its
// reverse view. When both a stored row and a reverse view lead to the same
// destination, the stored row wins.
func ExplicitExits(ctx context.Context, r worldstate.Reader, locationID int64, includeHidden bool) ([]*entities.Connection, error) {
	conns, err := r.ListConnectionsAt(ctx, locationID)
	if err != nil {
		return nil, err
	}

	direct := make(map[int64]*entities.Connection)
	reverse := make(map[int64]*entities.Connection)
	for _, c := range conns {
		switch {
		case c.FromLocationID == locationID:
			if _, seen := direct[c.ToLocationID]; !seen {
				direct[c.ToLocationID] = c
			}
		case c.ToLocationID == locationID && c.IsBidirectional:
			if _, seen := reverse[c.FromLocationID]; !seen {
				reverse[c.FromLocationID] = reverseView(c)
			}
		}
	}
	for dest, c := range reverse {
		if _, ok := direct[dest]; !ok {
			direct[dest] = c
		}
	}

	exits := make([]*entities.Connection, 0, len(direct))
	for _, c := range direct {
		if c.IsVisible || includeHidden {
			exits = append(exits, c)
		}
	}
	sort.Slice(exits, func(i, j int) bool { return exits[i].ToLocationID < exits[j].ToLocationID })
	return exits, nil
}

// reverseView presents a bidirectional row as travelled from its far end
func reverseView(c *entities.Connection) *entities.Connection {
	v := *c
	v.FromLocationID, v.ToLocationID = c.ToLocationID, c.FromLocationID
	v.Direction = ReverseDirection(c.Direction)
	if c.ReverseDescription != "" {
		v.Description, v.ReverseDescription = c.ReverseDescription, c.Description
	}
	return &v
}

// ImplicitExits derives exits from the location tree: every sibling under
// the same parent, every direct child, and the parent itself. Locations
// without a parent have no siblings. Results are never stored.
func ImplicitExits(ctx context.Context, r worldstate.Reader, locationID int64) ([]*entities.Connection, error) {
	loc, err := r.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	var neighbours []*entities.Location
	if loc.ParentLocationID != nil {
		parent, err := r.GetLocation(ctx, *loc.ParentLocationID)
		if err != nil && !errors.IsNotFound(err) {
			return nil, err
		}
		if parent != nil {
			neighbours = append(neighbours, parent)
		}

		siblings, err := r.ListChildLocations(ctx, *loc.ParentLocationID)
		if err != nil {
			return nil, err
		}
		for _, sib := range siblings {
			if sib.ID != loc.ID {
				neighbours = append(neighbours, sib)
			}
		}
	}

	children, err := r.ListChildLocations(ctx, loc.ID)
	if err != nil {
		return nil, err
	}
	neighbours = append(neighbours, children...)

	exits := make([]*entities.Connection, 0, len(neighbours))
	for _, n := range neighbours {
		exits = append(exits, implicitConnection(loc, n))
	}
	sort.Slice(exits, func(i, j int) bool { return exits[i].ToLocationID < exits[j].ToLocationID })
	return exits, nil
}

func implicitConnection(from, to *entities.Location) *entities.Connection {
	return &entities.Connection{
		WorldID:         from.WorldID,
		FromLocationID:  from.ID,
		ToLocationID:    to.ID,
		ConnectionType:  entities.ConnectionPassage,
		Direction:       ImplicitDirection(to.Name),
		IsVisible:       true,
		IsOpen:          true,
		IsBidirectional: true,
		Implicit:        true,
	}
}

// Exits merges explicit and implicit exits. An implicit exit is dropped
// when an explicit exit already leads to the same destination.
func Exits(ctx context.Context, r worldstate.Reader, locationID int64, includeHidden bool) ([]*entities.Connection, error) {
	explicit, err := ExplicitExits(ctx, r, locationID, includeHidden)
	if err != nil {
		return nil, err
	}
	implicit, err := ImplicitExits(ctx, r, locationID)
	if err != nil {
		return nil, err
	}

	covered := make(map[int64]bool, len(explicit))
	for _, c := range explicit {
		covered[c.ToLocationID] = true
	}

	exits := explicit
	for _, c := range implicit {
		if !covered[c.ToLocationID] {
			exits = append(exits, c)
		}
	}
	return exits, nil
}

// FindByDirection resolves an exit label. Visible explicit exits are
// matched first, then implicit ones.
func FindByDirection(ctx context.Context, r worldstate.Reader, locationID int64, direction string) (*entities.Connection, error) {
	explicit, err := ExplicitExits(ctx, r, locationID, false)
	if err != nil {
		return nil, err
	}
	for _, c := range explicit {
		if c.Direction == direction {
			return c, nil
		}
	}

	implicit, err := ImplicitExits(ctx, r, locationID)
	if err != nil {
		return nil, err
	}
	for _, c := range implicit {
		if c.Direction == direction {
			return c, nil
		}
	}

	return nil, errors.NotFoundf("no exit %q from location %d", direction, locationID).
		WithMeta("location_id", locationID).
		WithMeta("direction", direction)
}

// FromLocation orients a stored connection for travel from locationID.
// It returns the reverse view when the row is bidirectional and stored in
// the other direction.
func FromLocation(c *entities.Connection, locationID int64) (*entities.Connection, error) {
	switch {
	case c.FromLocationID == locationID:
		return c, nil
	case c.ToLocationID == locationID && c.IsBidirectional:
		return reverseView(c), nil
	}
	return nil, errors.FailedPreconditionf("connection %d does not lead from location %d", c.ID, locationID)
}
