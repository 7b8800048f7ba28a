package character

import "github.com/KirkDiggler/rpg-world/internal/entities"

// Defaults for new characters
const (
	DefaultMaxHP     = int32(10)
	DefaultAbility   = int32(10)
	BaseArmorClass   = int32(10)
	KillDamageAmount = int32(9999)
)

// GetCharacterInput identifies a character
type GetCharacterInput struct {
	CharacterID int64
}

// CharacterOutput holds one character
type CharacterOutput struct {
	Character *entities.Character
}

// MoveCharacterInput places a character at a location directly,
// without using a connection
type MoveCharacterInput struct {
	CharacterID int64
	LocationID  int64
}

// MoveCharacterOutput holds the moved character
type MoveCharacterOutput struct {
	Character      *entities.Character
	FromLocationID int64
}

// MovePartyInput moves several characters to one location
type MovePartyInput struct {
	CharacterIDs []int64
	LocationID   int64
}

// PartyMoveResult is the outcome for one member of a party move
type PartyMoveResult struct {
	CharacterID int64
	Moved       bool
	Error       string
}

// MovePartyOutput summarizes a party move. Failures of single members do
// not undo members already moved.
type MovePartyOutput struct {
	Moved   int
	Failed  int
	Results []*PartyMoveResult
}

// HPChangeInput damages or heals a character. Source is optional and
// becomes the event actor.
type HPChangeInput struct {
	CharacterID int64
	Amount      int32
	Source      *entities.EntityRef
}

// HPChangeOutput reports the hp transition
type HPChangeOutput struct {
	Character *entities.Character
	OldHP     int32
	NewHP     int32
	Died      bool
}

// KillCharacterInput identifies a character to kill
type KillCharacterInput struct {
	CharacterID int64
	Source      *entities.EntityRef
}

// ItemTransferInput moves an item into or out of a character's inventory
type ItemTransferInput struct {
	CharacterID int64
	ItemID      int64
}

// ItemTransferOutput holds the item after the transfer
type ItemTransferOutput struct {
	Item *entities.Item
}

// GetInventoryInput identifies a character
type GetInventoryInput struct {
	CharacterID int64
}

// GetInventoryOutput lists what a character directly holds
type GetInventoryOutput struct {
	Items      []*entities.Item
	Containers []*entities.Container
}

// Attributes are the optional stats of a new character. Zero values take
// defaults; ArmorClass nil derives from athletics.
type Attributes struct {
	Description     string
	MaxHP           int32
	Strength        int32
	Intelligence    int32
	Charisma        int32
	Athletics       int32
	ArmorClass      *int32
	IsHostile       bool
	Faction         string
	Gold            int32
	AdditionalStats entities.Attributes
}

// CreatePlayerCharacterInput creates the single player character of a
// user in a world
type CreatePlayerCharacterInput struct {
	WorldID    int64
	UserID     int64
	LocationID int64
	Name       string
	Attributes Attributes
}

// CreateNPCInput creates a non-player character at full health
type CreateNPCInput struct {
	WorldID    int64
	LocationID int64
	Name       string
	Attributes Attributes
}
