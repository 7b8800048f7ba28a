package entities

import "time"

// ConnectionType describes how an exit is traversed
type ConnectionType string

// Connection types
const (
	ConnectionPassage    ConnectionType = "passage"
	ConnectionDoor       ConnectionType = "door"
	ConnectionPortal     ConnectionType = "portal"
	ConnectionTeleporter ConnectionType = "teleporter"
	ConnectionMagical    ConnectionType = "magical"
)

// IsValid reports whether t is a known connection type
func (t ConnectionType) IsValid() bool {
	switch t {
	case ConnectionPassage, ConnectionDoor, ConnectionPortal, ConnectionTeleporter, ConnectionMagical:
		return true
	}
	return false
}

// Connection is a directed exit between two locations. Bidirectional exits
// are stored as two rows, one per direction.
//
// Implicit connections derived from the location tree share this type with
// ID zero and Implicit set; they are never persisted.
type Connection struct {
	ID                 int64          `json:"id"`
	WorldID            int64          `json:"world_id"`
	FromLocationID     int64          `json:"from_location_id"`
	ToLocationID       int64          `json:"to_location_id"`
	ConnectionType     ConnectionType `json:"connection_type"`
	Direction          string         `json:"direction"`
	Description        string         `json:"description,omitempty"`
	IsVisible          bool           `json:"is_visible"`
	IsLocked           bool           `json:"is_locked"`
	IsOpen             bool           `json:"is_open"`
	RequiredItemID     *int64         `json:"required_item_id,omitempty"`
	IsBidirectional    bool           `json:"is_bidirectional"`
	ReverseDescription string         `json:"reverse_description,omitempty"`
	Implicit           bool           `json:"implicit,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// IsDoor reports whether open/closed state gates traversal
func (c *Connection) IsDoor() bool {
	return c.ConnectionType == ConnectionDoor
}
