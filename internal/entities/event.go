package entities

import "time"

// Event types written to the event log
const (
	EventTimeAdvanced           = "time_advanced"
	EventDayAdvanced            = "day_advanced"
	EventWorldStateChanged      = "world_state_changed"
	EventWorldCreated           = "world_created"
	EventWorldCopied            = "world_copied"
	EventLocationCreated        = "location_created"
	EventLocationStateChanged   = "location_state_changed"
	EventLocationParentChanged  = "location_parent_changed"
	EventConnectionCreated      = "connection_created"
	EventConnectionUpgraded     = "connection_upgraded"
	EventConnectionStateChanged = "connection_state_changed"
	EventCharacterCreated       = "character_created"
	EventCharacterMoved         = "character_moved"
	EventCharacterDamaged       = "character_damaged"
	EventCharacterHealed        = "character_healed"
	EventCharacterDied          = "character_died"
	EventItemCreated            = "item_created"
	EventItemMoved              = "item_moved"
	EventItemQuantityChanged    = "item_quantity_changed"
	EventItemConsumed           = "item_consumed"
	EventItemTaken              = "item_taken"
	EventItemDropped            = "item_dropped"
	EventContainerCreated       = "container_created"
	EventContainerStateChanged  = "container_state_changed"
	EventQuestCreated           = "quest_created"
	EventObjectiveAdded         = "quest_objective_added"
	EventObjectiveProgressed    = "quest_objective_progressed"
	EventObjectiveCompleted     = "quest_objective_completed"
	EventQuestCompleted         = "quest_completed"
	EventQuestStatusChanged     = "quest_status_changed"
)

// GameEvent is one immutable row of the append-only event log
type GameEvent struct {
	ID          int64      `json:"id"`
	WorldID     int64      `json:"world_id"`
	RoomID      *int64     `json:"room_id,omitempty"`
	EventType   string     `json:"event_type"`
	Actor       *EntityRef `json:"actor,omitempty"`
	Target      *EntityRef `json:"target,omitempty"`
	EventData   Attributes `json:"event_data"`
	CreatedBy   *int64     `json:"created_by,omitempty"`
	OperationID string     `json:"operation_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
