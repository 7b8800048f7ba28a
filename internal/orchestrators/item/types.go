package item

import "github.com/KirkDiggler/rpg-world/internal/entities"

// Defaults applied by CreateItem
const (
	DefaultQuantity = int32(1)
	DefaultItemType = "misc"
)

// CreateItemInput describes a new item. Owner must name a location,
// character or container.
type CreateItemInput struct {
	WorldID     int64
	Owner       entities.Owner
	Name        string
	Description string
	Quantity    int32
	ItemType    string
	IsStackable bool
	Properties  entities.Attributes
}

// ItemOutput holds one item
type ItemOutput struct {
	Item *entities.Item
}

// GetItemInput identifies an item
type GetItemInput struct {
	ItemID int64
}

// ModifyItemQuantityInput adds delta to an item's quantity
type ModifyItemQuantityInput struct {
	ItemID int64
	Delta  int32
}

// ModifyItemQuantityOutput reports the change. Item is nil and Consumed
// is true when the quantity ran out.
type ModifyItemQuantityOutput struct {
	Item        *entities.Item
	OldQuantity int32
	NewQuantity int32
	Consumed    bool
}

// MoveItemInput moves an item to a location, character or container
type MoveItemInput struct {
	ItemID int64
	To     entities.EntityRef
}

// MoveItemOutput holds the moved item and its previous holder
type MoveItemOutput struct {
	Item          *entities.Item
	PreviousOwner *entities.Owner
}

// CreateContainerInput describes a new container. Owner must name a
// location or a character. Nil IsOpen defaults to open.
type CreateContainerInput struct {
	WorldID     int64
	Owner       entities.Owner
	Name        string
	Description string
	IsLocked    bool
	IsOpen      *bool
	Capacity    *int32
}

// ContainerInput identifies a container
type ContainerInput struct {
	ContainerID int64
}

// ContainerOutput holds one container and, when listed, its items
type ContainerOutput struct {
	Container *entities.Container
	Items     []*entities.Item
}
