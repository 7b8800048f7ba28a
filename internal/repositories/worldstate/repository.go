// Package worldstate provides persistence for the world entity graph
package worldstate

import (
	"context"

	"github.com/KirkDiggler/rpg-world/internal/entities"
)

// Reader exposes every query the managers need. Both the repository and
// an open *Tx implement it; reads through a *Tx are watched and see the
// transaction's own staged writes.
//
// Get methods return a NotFound error when the entity does not exist.
// Find methods return nil, nil when nothing matches.
type Reader interface {
	GetWorld(ctx context.Context, id int64) (*entities.World, error)
	ListWorlds(ctx context.Context) ([]*entities.World, error)

	GetLocation(ctx context.Context, id int64) (*entities.Location, error)
	ListLocations(ctx context.Context, worldID int64) ([]*entities.Location, error)
	ListChildLocations(ctx context.Context, parentID int64) ([]*entities.Location, error)

	GetConnection(ctx context.Context, id int64) (*entities.Connection, error)
	ListConnections(ctx context.Context, worldID int64) ([]*entities.Connection, error)
	// ListConnectionsAt returns every connection with either endpoint at the location
	ListConnectionsAt(ctx context.Context, locationID int64) ([]*entities.Connection, error)
	FindConnection(ctx context.Context, fromID, toID int64) (*entities.Connection, error)

	GetCharacter(ctx context.Context, id int64) (*entities.Character, error)
	ListCharacters(ctx context.Context, worldID int64) ([]*entities.Character, error)
	ListCharactersAt(ctx context.Context, locationID int64) ([]*entities.Character, error)
	FindPlayerCharacter(ctx context.Context, worldID, userID int64) (*entities.Character, error)

	GetContainer(ctx context.Context, id int64) (*entities.Container, error)
	ListContainers(ctx context.Context, worldID int64) ([]*entities.Container, error)
	ListContainersAt(ctx context.Context, locationID int64) ([]*entities.Container, error)
	ListContainersCarried(ctx context.Context, characterID int64) ([]*entities.Container, error)

	GetItem(ctx context.Context, id int64) (*entities.Item, error)
	ListItems(ctx context.Context, worldID int64) ([]*entities.Item, error)
	ListItemsAt(ctx context.Context, locationID int64) ([]*entities.Item, error)
	ListItemsCarried(ctx context.Context, characterID int64) ([]*entities.Item, error)
	ListItemsInContainer(ctx context.Context, containerID int64) ([]*entities.Item, error)

	GetQuest(ctx context.Context, id int64) (*entities.Quest, error)
	ListQuests(ctx context.Context, worldID int64) ([]*entities.Quest, error)
	GetObjective(ctx context.Context, id int64) (*entities.QuestObjective, error)
	ListObjectives(ctx context.Context, questID int64) ([]*entities.QuestObjective, error)

	// ListEvents returns events newest first
	ListEvents(ctx context.Context, input ListEventsInput) ([]*entities.GameEvent, error)
}

// Repository is the world store. Update runs fn as one atomic unit: all
// writes staged on the *Tx (entity rows, indexes and event rows) commit
// together or not at all.
type Repository interface {
	Reader

	// Update executes fn in an optimistic transaction. fn may be invoked
	// more than once when a concurrent writer touches a key it read.
	// Returns an Aborted error when every attempt conflicted.
	Update(ctx context.Context, fn func(tx *Tx) error) error
}

// ListEventsInput filters the event log
type ListEventsInput struct {
	WorldID int64
	// RoomID restricts to one play session when set
	RoomID *int64
	// Limit caps the result; zero or negative returns everything
	Limit int
}
