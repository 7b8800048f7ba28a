package connection

import "github.com/KirkDiggler/rpg-world/internal/entities"

// CreateConnectionInput describes a new exit. Nil booleans take their
// defaults: visible and open.
type CreateConnectionInput struct {
	WorldID            int64
	FromLocationID     int64
	ToLocationID       int64
	ConnectionType     entities.ConnectionType
	Direction          string
	Description        string
	IsVisible          *bool
	IsLocked           bool
	IsOpen             *bool
	RequiredItemID     *int64
	IsBidirectional    bool
	ReverseDescription string
}

// CreateConnectionOutput references the authoritative connection.
// Created is false when an existing connection was returned or upgraded.
type CreateConnectionOutput struct {
	Connection *entities.Connection
	Reverse    *entities.Connection
	Created    bool
	Upgraded   bool
}

// ListExitsInput identifies a location
type ListExitsInput struct {
	LocationID    int64
	IncludeHidden bool
}

// ListExitsOutput holds explicit exits followed by implicit ones
type ListExitsOutput struct {
	Exits []*entities.Connection
}

// GetConnectionInput looks up an exit by its exact direction label
type GetConnectionInput struct {
	FromLocationID int64
	Direction      string
}

// GetConnectionOutput holds the resolved exit
type GetConnectionOutput struct {
	Connection *entities.Connection
}

// GetConnectionByIDInput identifies a stored connection
type GetConnectionByIDInput struct {
	ConnectionID int64
}

// DoorInput identifies the connection a door operation acts on
type DoorInput struct {
	ConnectionID int64
}

// LockDoorInput locks a connection, optionally binding a key item
type LockDoorInput struct {
	ConnectionID int64
	WithItemID   *int64
}

// UnlockDoorInput unlocks a connection with an optional key item
type UnlockDoorInput struct {
	ConnectionID int64
	UsingItemID  *int64
}

// DoorOutput holds the connection after the change
type DoorOutput struct {
	Connection *entities.Connection
}

// TraverseConnectionInput moves a character through a stored connection
type TraverseConnectionInput struct {
	CharacterID  int64
	ConnectionID int64
}

// TraverseByDirectionInput moves a character through the exit with a label
type TraverseByDirectionInput struct {
	CharacterID int64
	Direction   string
}

// TraverseOutput reports where the character went
type TraverseOutput struct {
	Character      *entities.Character
	Connection     *entities.Connection
	FromLocationID int64
	ToLocationID   int64
}
