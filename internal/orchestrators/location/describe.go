package location

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/rpg-world/internal/entities"
)

// Location state keys that change how a location reads
const (
	StateIsDark     = "is_dark"
	StateIsOnFire   = "is_on_fire"
	StateWaterLevel = "water_level"
)

// Description fragments
const (
	DarkDescription = "It is pitch black. You can't see a thing."
	FireSentence    = "Flames roar around you; the place is on fire!"
	NoExitsSentence = "There are no obvious exits."
)

var waterSentences = map[int]string{
	1: "Water pools ankle-deep across the floor.",
	2: "Water rises waist-deep here, slowing every step.",
	3: "The area is completely flooded.",
}

// describe applies the state rules in order: darkness replaces everything,
// then fire, then water level, then the visible exits
func describe(loc *entities.Location, exits []*entities.Connection) (string, bool) {
	if loc.State.Bool(StateIsDark) {
		return DarkDescription, true
	}

	var parts []string
	if loc.Description != "" {
		parts = append(parts, loc.Description)
	}
	if loc.State.Bool(StateIsOnFire) {
		parts = append(parts, FireSentence)
	}
	if level, ok := loc.State.Int(StateWaterLevel); ok {
		if s, ok := waterSentences[level]; ok {
			parts = append(parts, s)
		}
	}
	parts = append(parts, exitsSentence(exits))

	return strings.Join(parts, " "), false
}

func exitsSentence(exits []*entities.Connection) string {
	if len(exits) == 0 {
		return NoExitsSentence
	}
	labels := make([]string, len(exits))
	for i, c := range exits {
		labels[i] = c.Direction
	}
	return fmt.Sprintf("Exits: %s.", strings.Join(labels, ", "))
}
