package entities

import (
	"fmt"
	"time"
)

// QuestStatus is the lifecycle state of a quest
type QuestStatus string

// Quest statuses
const (
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
	QuestFailed    QuestStatus = "failed"
	QuestAbandoned QuestStatus = "abandoned"
)

// Objective types
const (
	ObjectiveReachLocation = "reach_location"
	ObjectiveAcquireItem   = "acquire_item"
	ObjectiveKillCharacter = "kill_character"
	ObjectiveCustom        = "custom"
)

// Quest groups objectives inside a world and optionally a play session
type Quest struct {
	ID          int64       `json:"id"`
	WorldID     int64       `json:"world_id"`
	RoomID      *int64      `json:"room_id,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	QuestType   string      `json:"quest_type,omitempty"`
	Status      QuestStatus `json:"status"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// QuestObjective is one measurable goal of a quest
type QuestObjective struct {
	ID              int64      `json:"id"`
	QuestID         int64      `json:"quest_id"`
	Description     string     `json:"description,omitempty"`
	ObjectiveType   string     `json:"objective_type"`
	Target          *EntityRef `json:"target,omitempty"`
	Quantity        int32      `json:"quantity"`
	CurrentProgress int32      `json:"current_progress"`
	IsCompleted     bool       `json:"is_completed"`
	IsOptional      bool       `json:"is_optional"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Progress renders progress as current/quantity
func (o *QuestObjective) Progress() string {
	return fmt.Sprintf("%d/%d", o.CurrentProgress, o.Quantity)
}
