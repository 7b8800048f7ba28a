package location

import "github.com/KirkDiggler/rpg-world/internal/entities"

// GetLocationInput identifies a location
type GetLocationInput struct {
	LocationID int64
}

// GetLocationOutput holds the location
type GetLocationOutput struct {
	Location *entities.Location
}

// DescribeLocationInput identifies the location to describe
type DescribeLocationInput struct {
	LocationID int64
}

// DescribeLocationOutput is the assembled view of a location. Exits is
// empty when the location is dark.
type DescribeLocationOutput struct {
	Location    *entities.Location
	Description string
	Exits       []*entities.Connection
	IsDark      bool
}

// ListAtInput identifies a location whose contents are listed
type ListAtInput struct {
	LocationID int64
}

// ListCharactersAtOutput holds the living characters at a location
type ListCharactersAtOutput struct {
	Characters []*entities.Character
}

// ListItemsAtOutput holds the items lying directly at a location
type ListItemsAtOutput struct {
	Items []*entities.Item
}

// ListContainersAtOutput holds the containers placed directly at a location
type ListContainersAtOutput struct {
	Containers []*entities.Container
}

// GetLocationStateInput reads one state key
type GetLocationStateInput struct {
	LocationID int64
	Key        string
}

// GetLocationStateOutput holds the value; Found is false for a missing key
type GetLocationStateOutput struct {
	Value interface{}
	Found bool
}

// SetLocationStateInput writes one state key
type SetLocationStateInput struct {
	LocationID int64
	Key        string
	Value      interface{}
}

// ClearLocationStateInput removes one state key
type ClearLocationStateInput struct {
	LocationID int64
	Key        string
}

// LocationStateOutput reports a state change
type LocationStateOutput struct {
	Location *entities.Location
	OldValue interface{}
}

// GetAllLocationStateInput identifies a location
type GetAllLocationStateInput struct {
	LocationID int64
}

// GetAllLocationStateOutput holds a copy of the whole state map
type GetAllLocationStateOutput struct {
	State entities.Attributes
}

// SetLocationParentInput moves a location in the tree. A nil parent makes
// it a root location.
type SetLocationParentInput struct {
	LocationID       int64
	ParentLocationID *int64
}

// SetLocationParentOutput holds the moved location
type SetLocationParentOutput struct {
	Location       *entities.Location
	PreviousParent *int64
}
