package entities

import "time"

// Character types
const (
	CharacterTypePlayer = "player"
	CharacterTypeNPC    = "npc"
)

// Character is any animate entity, player controlled or not.
// IsDead is derived from CurrentHP and only changed by damage and heal.
type Character struct {
	ID              int64      `json:"id"`
	WorldID         int64      `json:"world_id"`
	UserID          *int64     `json:"user_id,omitempty"`
	CharacterType   string     `json:"character_type"`
	LocationID      int64      `json:"location_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	MaxHP           int32      `json:"max_hp"`
	CurrentHP       int32      `json:"current_hp"`
	IsDead          bool       `json:"is_dead"`
	Strength        int32      `json:"strength"`
	Intelligence    int32      `json:"intelligence"`
	Charisma        int32      `json:"charisma"`
	Athletics       int32      `json:"athletics"`
	ArmorClass      int32      `json:"armor_class"`
	IsHostile       bool       `json:"is_hostile"`
	Faction         string     `json:"faction,omitempty"`
	Gold            int32      `json:"gold"`
	AdditionalStats Attributes `json:"additional_stats"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsPlayer reports whether a user owns the character
func (c *Character) IsPlayer() bool {
	return c.UserID != nil
}

// SetHP clamps hp into [0, MaxHP] and keeps IsDead consistent
func (c *Character) SetHP(hp int32) {
	if hp < 0 {
		hp = 0
	}
	if hp > c.MaxHP {
		hp = c.MaxHP
	}
	c.CurrentHP = hp
	c.IsDead = hp == 0
}
