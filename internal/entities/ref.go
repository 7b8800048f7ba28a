// Package entities provides the world-state data structures shared by the engine.
package entities

import (
	"fmt"
	"strconv"

	"github.com/KirkDiggler/rpg-toolkit/core"
)

// EntityKind tags the variant of a polymorphic reference
type EntityKind string

// Entity kinds
const (
	KindWorld      EntityKind = "world"
	KindLocation   EntityKind = "location"
	KindConnection EntityKind = "connection"
	KindCharacter  EntityKind = "character"
	KindContainer  EntityKind = "container"
	KindItem       EntityKind = "item"
	KindQuest      EntityKind = "quest"
	KindObjective  EntityKind = "quest_objective"
	KindEvent      EntityKind = "game_event"
)

// IsValid reports whether k names a known entity kind
func (k EntityKind) IsValid() bool {
	switch k {
	case KindWorld, KindLocation, KindConnection, KindCharacter, KindContainer,
		KindItem, KindQuest, KindObjective, KindEvent:
		return true
	}
	return false
}

// EntityRef is a kind-tagged reference to any entity.
// It is used for event actors/targets and quest objective targets.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   int64      `json:"id"`
}

// Ref builds an EntityRef
func Ref(kind EntityKind, id int64) *EntityRef {
	return &EntityRef{Kind: kind, ID: id}
}

// GetID returns the referenced id as a string for rpg-toolkit
func (r *EntityRef) GetID() string {
	return strconv.FormatInt(r.ID, 10)
}

// GetType returns the entity kind for rpg-toolkit
func (r *EntityRef) GetType() string {
	return string(r.Kind)
}

// String renders the reference as kind:id
func (r *EntityRef) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Equal compares two references, treating two nils as equal
func (r *EntityRef) Equal(other *EntityRef) bool {
	if r == nil || other == nil {
		return r == nil && other == nil
	}
	return r.Kind == other.Kind && r.ID == other.ID
}

var _ core.Entity = (*EntityRef)(nil)
