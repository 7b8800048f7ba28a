package world

import "github.com/KirkDiggler/rpg-world/internal/entities"

// GetWorldInput identifies a world
type GetWorldInput struct {
	WorldID int64
}

// GetWorldOutput returns the world
type GetWorldOutput struct {
	World *entities.World
}

// GetWorldTimeInput identifies a world
type GetWorldTimeInput struct {
	WorldID int64
}

// GetWorldTimeOutput is the world clock
type GetWorldTimeOutput struct {
	TimeOfDay   entities.TimeOfDay
	DaysElapsed int32
}

// AdvanceTimeInput moves the world clock to a time of day
type AdvanceTimeInput struct {
	WorldID   int64
	TimeOfDay entities.TimeOfDay
}

// AdvanceTimeOutput reports the transition
type AdvanceTimeOutput struct {
	World        *entities.World
	PreviousTime entities.TimeOfDay
}

// AdvanceDayInput identifies a world
type AdvanceDayInput struct {
	WorldID int64
}

// AdvanceDayOutput reports the new day
type AdvanceDayOutput struct {
	World       *entities.World
	PreviousDay int32
}

// SetWorldStateInput writes one world state key
type SetWorldStateInput struct {
	WorldID int64
	Key     string
	Value   interface{}
}

// SetWorldStateOutput reports the previous value
type SetWorldStateOutput struct {
	World    *entities.World
	OldValue interface{}
}

// GetWorldStateInput reads one world state key
type GetWorldStateInput struct {
	WorldID int64
	Key     string
}

// GetWorldStateOutput holds the value; Found is false for a missing key
type GetWorldStateOutput struct {
	Value interface{}
	Found bool
}
