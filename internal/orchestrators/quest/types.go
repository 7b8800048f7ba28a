package quest

import "github.com/KirkDiggler/rpg-world/internal/entities"

// CreateQuestInput describes a new active quest
type CreateQuestInput struct {
	WorldID     int64
	RoomID      *int64
	Name        string
	Description string
	QuestType   string
}

// QuestOutput holds one quest
type QuestOutput struct {
	Quest *entities.Quest
}

// GetQuestInput identifies a quest
type GetQuestInput struct {
	QuestID int64
}

// AddQuestObjectiveInput describes a new objective. Quantity defaults to 1.
type AddQuestObjectiveInput struct {
	QuestID       int64
	Description   string
	ObjectiveType string
	Target        *entities.EntityRef
	Quantity      int32
	IsOptional    bool
}

// ObjectiveInput identifies an objective
type ObjectiveInput struct {
	ObjectiveID int64
}

// UpdateObjectiveProgressInput sets absolute progress on an objective
type UpdateObjectiveProgressInput struct {
	ObjectiveID int64
	Progress    int32
}

// ObjectiveOutput holds the objective and its quest after a change.
// QuestCompleted is true when this change completed the quest.
type ObjectiveOutput struct {
	Objective      *entities.QuestObjective
	Quest          *entities.Quest
	QuestCompleted bool
}

// ObjectiveProgress is one line of a progress rollup
type ObjectiveProgress struct {
	Objective *entities.QuestObjective
	Progress  string
}

// CheckQuestProgressOutput is a read-only rollup of a quest
type CheckQuestProgressOutput struct {
	Quest       *entities.Quest
	Objectives  []*ObjectiveProgress
	IsCompleted bool
}

// QuestStatusInput ends an active quest
type QuestStatusInput struct {
	QuestID int64
	Reason  string
}
