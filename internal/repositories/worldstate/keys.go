package worldstate

import "fmt"

const (
	worldsKey = "worlds"

	labelWorld      = "world"
	labelLocation   = "location"
	labelConnection = "connection"
	labelCharacter  = "character"
	labelContainer  = "container"
	labelItem       = "item"
	labelQuest      = "quest"
	labelObjective  = "quest objective"
	labelEvent      = "event"
)

func worldKey(id int64) string      { return fmt.Sprintf("world:%d", id) }
func locationKey(id int64) string   { return fmt.Sprintf("location:%d", id) }
func connectionKey(id int64) string { return fmt.Sprintf("connection:%d", id) }
func characterKey(id int64) string  { return fmt.Sprintf("character:%d", id) }
func containerKey(id int64) string  { return fmt.Sprintf("container:%d", id) }
func itemKey(id int64) string       { return fmt.Sprintf("item:%d", id) }
func questKey(id int64) string      { return fmt.Sprintf("quest:%d", id) }
func objectiveKey(id int64) string  { return fmt.Sprintf("objective:%d", id) }
func eventKey(id int64) string      { return fmt.Sprintf("event:%d", id) }

// worldIndex is the set of every entity of one kind in a world
func worldIndex(worldID int64, plural string) string {
	return fmt.Sprintf("world:%d:%s", worldID, plural)
}

func childrenIndex(parentID int64) string {
	return fmt.Sprintf("location:%d:children", parentID)
}

func locationIndex(locationID int64, plural string) string {
	return fmt.Sprintf("location:%d:%s", locationID, plural)
}

func characterIndex(characterID int64, plural string) string {
	return fmt.Sprintf("character:%d:%s", characterID, plural)
}

func containerItemsIndex(containerID int64) string {
	return fmt.Sprintf("container:%d:items", containerID)
}

func objectivesIndex(questID int64) string {
	return fmt.Sprintf("quest:%d:objectives", questID)
}

// connectionPairKey maps a directed (from, to) pair to its connection id
func connectionPairKey(fromID, toID int64) string {
	return fmt.Sprintf("connection:pair:%d:%d", fromID, toID)
}

// playerKey maps a user to their player character in a world
func playerKey(worldID, userID int64) string {
	return fmt.Sprintf("world:%d:player:%d", worldID, userID)
}

func worldEventsKey(worldID int64) string {
	return fmt.Sprintf("world:%d:events", worldID)
}

func roomEventsKey(worldID, roomID int64) string {
	return fmt.Sprintf("world:%d:room:%d:events", worldID, roomID)
}
