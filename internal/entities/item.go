package entities

import "time"

// Owner identifies who holds an item or container. Exactly one of the
// location, character or container fields is set on a stored entity.
type Owner struct {
	Kind EntityKind `json:"kind"`
	ID   int64      `json:"id"`
}

// Container holds items. It sits at a location or is carried by a character.
type Container struct {
	ID          int64     `json:"id"`
	WorldID     int64     `json:"world_id"`
	LocationID  *int64    `json:"location_id,omitempty"`
	CharacterID *int64    `json:"character_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsLocked    bool      `json:"is_locked"`
	IsOpen      bool      `json:"is_open"`
	Capacity    *int32    `json:"capacity,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Owner returns the current holder of the container
func (c *Container) Owner() *Owner {
	switch {
	case c.LocationID != nil:
		return &Owner{Kind: KindLocation, ID: *c.LocationID}
	case c.CharacterID != nil:
		return &Owner{Kind: KindCharacter, ID: *c.CharacterID}
	}
	return nil
}

// SetOwner moves the container, clearing the other owner field
func (c *Container) SetOwner(o Owner) {
	c.LocationID, c.CharacterID = nil, nil
	switch o.Kind {
	case KindLocation:
		c.LocationID = Int64Ptr(o.ID)
	case KindCharacter:
		c.CharacterID = Int64Ptr(o.ID)
	}
}

// Item is an object on the ground, in an inventory, or inside a container
type Item struct {
	ID          int64      `json:"id"`
	WorldID     int64      `json:"world_id"`
	LocationID  *int64     `json:"location_id,omitempty"`
	CharacterID *int64     `json:"character_id,omitempty"`
	ContainerID *int64     `json:"container_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Quantity    int32      `json:"quantity"`
	ItemType    string     `json:"item_type"`
	IsStackable bool       `json:"is_stackable"`
	Properties  Attributes `json:"properties"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Owner returns the current holder of the item
func (i *Item) Owner() *Owner {
	switch {
	case i.LocationID != nil:
		return &Owner{Kind: KindLocation, ID: *i.LocationID}
	case i.CharacterID != nil:
		return &Owner{Kind: KindCharacter, ID: *i.CharacterID}
	case i.ContainerID != nil:
		return &Owner{Kind: KindContainer, ID: *i.ContainerID}
	}
	return nil
}

// SetOwner moves the item, setting exactly one owner field
func (i *Item) SetOwner(o Owner) {
	i.LocationID, i.CharacterID, i.ContainerID = nil, nil, nil
	switch o.Kind {
	case KindLocation:
		i.LocationID = Int64Ptr(o.ID)
	case KindCharacter:
		i.CharacterID = Int64Ptr(o.ID)
	case KindContainer:
		i.ContainerID = Int64Ptr(o.ID)
	}
}
