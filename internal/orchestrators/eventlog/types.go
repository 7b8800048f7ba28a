package eventlog

import (
	"github.com/KirkDiggler/rpg-world/internal/entities"
)

// LogInput describes one state change. Room, operation and author are
// taken from the call context when not set here.
type LogInput struct {
	WorldID   int64
	EventType string
	Actor     *entities.EntityRef
	Target    *entities.EntityRef
	Data      entities.Attributes
	RoomID    *int64
	CreatedBy *int64
}

// GetRecentEventsInput requests the newest events of a world
type GetRecentEventsInput struct {
	WorldID int64
	// Limit defaults to the configured limit when zero
	Limit  int
	RoomID *int64
}

// GetRecentEventsOutput holds events newest first
type GetRecentEventsOutput struct {
	Events []*entities.GameEvent
}

// Filter is an exact-match filter set. Nil fields match everything.
type Filter struct {
	EventType   *string
	RoomID      *int64
	Actor       *entities.EntityRef
	Target      *entities.EntityRef
	CreatedBy   *int64
	OperationID *string
}

// GetEventsInput requests every event of a world matching a filter
type GetEventsInput struct {
	WorldID int64
	Filter  Filter
}

// GetEventsOutput holds matching events newest first
type GetEventsOutput struct {
	Events []*entities.GameEvent
}
