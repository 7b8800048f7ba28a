// Package quest manages quests and their objectives. A quest completes on
// its own once every required objective is done.
package quest

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

// DefaultObjectiveQuantity applies when an objective has no quantity
const DefaultObjectiveQuantity = int32(1)

// Service defines the quest operations
type Service interface {
	CreateQuest(ctx context.Context, input *CreateQuestInput) (*QuestOutput, error)
	GetQuest(ctx context.Context, input *GetQuestInput) (*QuestOutput, error)
	AddQuestObjective(ctx context.Context, input *AddQuestObjectiveInput) (*ObjectiveOutput, error)

	CompleteObjective(ctx context.Context, input *ObjectiveInput) (*ObjectiveOutput, error)
	UpdateObjectiveProgress(ctx context.Context, input *UpdateObjectiveProgressInput) (*ObjectiveOutput, error)
	CheckQuestProgress(ctx context.Context, input *GetQuestInput) (*CheckQuestProgressOutput, error)

	FailQuest(ctx context.Context, input *QuestStatusInput) (*QuestOutput, error)
	AbandonQuest(ctx context.Context, input *QuestStatusInput) (*QuestOutput, error)
}

// Config holds the dependencies for the quest orchestrator
type Config struct {
	Repository worldstate.Repository
	EventLog   eventlog.Service
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.EventLog == nil {
		vb.RequiredField("EventLog")
	}

	return vb.Build()
}

type orchestrator struct {
	repo     worldstate.Repository
	eventLog eventlog.Service
}

// NewOrchestrator creates a new quest orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		repo:     cfg.Repository,
		eventLog: cfg.EventLog,
	}, nil
}

func (o *orchestrator) CreateQuest(ctx context.Context, input *CreateQuestInput) (*QuestOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Name == "" {
		return nil, errors.InvalidArgument("quest name is required")
	}

	var out *QuestOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		if _, err := tx.GetWorld(ctx, input.WorldID); err != nil {
			return err
		}

		q := &entities.Quest{
			WorldID:     input.WorldID,
			RoomID:      input.RoomID,
			Name:        input.Name,
			Description: input.Description,
			QuestType:   input.QuestType,
			Status:      entities.QuestActive,
		}
		if err := tx.CreateQuest(ctx, q); err != nil {
			return err
		}

		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   q.WorldID,
			RoomID:    q.RoomID,
			EventType: entities.EventQuestCreated,
			Target:    entities.Ref(entities.KindQuest, q.ID),
			Data: entities.Attributes{
				"name":       q.Name,
				"quest_type": q.QuestType,
			},
		}); err != nil {
			return err
		}

		out = &QuestOutput{Quest: q}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *orchestrator) GetQuest(ctx context.Context, input *GetQuestInput) (*QuestOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	q, err := o.repo.GetQuest(ctx, input.QuestID)
	if err != nil {
		return nil, err
	}
	return &QuestOutput{Quest: q}, nil
}

func (o *orchestrator) AddQuestObjective(ctx context.Context, input *AddQuestObjectiveInput) (*ObjectiveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Quantity < 0 {
		return nil, errors.InvalidArgument("quantity cannot be negative")
	}
	if input.Target != nil && !input.Target.Kind.IsValid() {
		return nil, errors.InvalidArgumentf("unknown target kind %q", input.Target.Kind)
	}

	var out *ObjectiveOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		q, err := tx.GetQuest(ctx, input.QuestID)
		if err != nil {
			return err
		}

		obj := &entities.QuestObjective{
			QuestID:       q.ID,
			Description:   input.Description,
			ObjectiveType: input.ObjectiveType,
			Target:        input.Target,
			Quantity:      input.Quantity,
			IsOptional:    input.IsOptional,
		}
		if obj.Quantity == 0 {
			obj.Quantity = DefaultObjectiveQuantity
		}
		if obj.ObjectiveType == "" {
			obj.ObjectiveType = entities.ObjectiveCustom
		}
		if err := tx.CreateObjective(ctx, obj); err != nil {
			return err
		}

		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   q.WorldID,
			RoomID:    q.RoomID,
			EventType: entities.EventObjectiveAdded,
			Target:    entities.Ref(entities.KindObjective, obj.ID),
			Data: entities.Attributes{
				"quest_id":       q.ID,
				"objective_type": obj.ObjectiveType,
				"quantity":       obj.Quantity,
				"is_optional":    obj.IsOptional,
			},
		}); err != nil {
			return err
		}

		out = &ObjectiveOutput{Objective: obj, Quest: q}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *orchestrator) CompleteObjective(ctx context.Context, input *ObjectiveInput) (*ObjectiveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	return o.progress(ctx, input.ObjectiveID, func(obj *entities.QuestObjective) {
		obj.CurrentProgress = obj.Quantity
	})
}

func (o *orchestrator) UpdateObjectiveProgress(ctx context.Context, input *UpdateObjectiveProgressInput) (*ObjectiveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	return o.progress(ctx, input.ObjectiveID, func(obj *entities.QuestObjective) {
		p := input.Progress
		if p < 0 {
			p = 0
		}
		if p > obj.Quantity {
			p = obj.Quantity
		}
		obj.CurrentProgress = p
	})
}

// progress applies a change to an objective, completes it once progress
// reaches its quantity, and then re-evaluates the owning quest. An
// objective that is already complete is returned unchanged.
func (o *orchestrator) progress(
	ctx context.Context,
	objectiveID int64,
	apply func(obj *entities.QuestObjective),
) (*ObjectiveOutput, error) {
	var out *ObjectiveOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		obj, err := tx.GetObjective(ctx, objectiveID)
		if err != nil {
			return err
		}
		q, err := tx.GetQuest(ctx, obj.QuestID)
		if err != nil {
			return err
		}

		// completed objectives are final
		if obj.IsCompleted {
			out = &ObjectiveOutput{Objective: obj, Quest: q}
			return nil
		}

		oldProgress := obj.CurrentProgress
		apply(obj)
		if obj.CurrentProgress >= obj.Quantity {
			obj.IsCompleted = true
		}
		if err := tx.PutObjective(ctx, obj); err != nil {
			return err
		}

		eventType := entities.EventObjectiveProgressed
		if obj.IsCompleted {
			eventType = entities.EventObjectiveCompleted
		}
		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   q.WorldID,
			RoomID:    q.RoomID,
			EventType: eventType,
			Target:    entities.Ref(entities.KindObjective, obj.ID),
			Data: entities.Attributes{
				"quest_id":     q.ID,
				"old_progress": oldProgress,
				"new_progress": obj.CurrentProgress,
				"quantity":     obj.Quantity,
				"is_completed": obj.IsCompleted,
			},
		}); err != nil {
			return err
		}

		out = &ObjectiveOutput{Objective: obj, Quest: q}
		if !obj.IsCompleted {
			return nil
		}

		completed, err := o.evaluate(ctx, tx, q)
		if err != nil {
			return err
		}
		out.QuestCompleted = completed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.QuestCompleted {
		slog.InfoContext(ctx, "quest completed",
			"quest_id", out.Quest.ID,
			"world_id", out.Quest.WorldID)
	}
	return out, nil
}

// evaluate completes an active quest whose required objectives are all
// done. Quests in any other status are left alone.
func (o *orchestrator) evaluate(ctx context.Context, tx *worldstate.Tx, q *entities.Quest) (bool, error) {
	if q.Status != entities.QuestActive {
		return false, nil
	}

	objectives, err := tx.ListObjectives(ctx, q.ID)
	if err != nil {
		return false, err
	}
	if !requiredDone(objectives) {
		return false, nil
	}

	now := tx.Now()
	q.Status = entities.QuestCompleted
	q.CompletedAt = &now
	if err := tx.PutQuest(ctx, q); err != nil {
		return false, err
	}

	_, err = o.eventLog.Log(ctx, tx, &eventlog.LogInput{
		WorldID:   q.WorldID,
		RoomID:    q.RoomID,
		EventType: entities.EventQuestCompleted,
		Target:    entities.Ref(entities.KindQuest, q.ID),
		Data: entities.Attributes{
			"name":       q.Name,
			"objectives": len(objectives),
		},
	})
	return err == nil, err
}

func requiredDone(objectives []*entities.QuestObjective) bool {
	for _, obj := range objectives {
		if !obj.IsOptional && !obj.IsCompleted {
			return false
		}
	}
	return true
}

func (o *orchestrator) CheckQuestProgress(ctx context.Context, input *GetQuestInput) (*CheckQuestProgressOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	q, err := o.repo.GetQuest(ctx, input.QuestID)
	if err != nil {
		return nil, err
	}
	objectives, err := o.repo.ListObjectives(ctx, q.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list objectives")
	}

	out := &CheckQuestProgressOutput{
		Quest:       q,
		Objectives:  make([]*ObjectiveProgress, len(objectives)),
		IsCompleted: q.Status == entities.QuestCompleted,
	}
	for i, obj := range objectives {
		out.Objectives[i] = &ObjectiveProgress{Objective: obj, Progress: obj.Progress()}
	}
	return out, nil
}

func (o *orchestrator) FailQuest(ctx context.Context, input *QuestStatusInput) (*QuestOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.end(ctx, input, entities.QuestFailed)
}

func (o *orchestrator) AbandonQuest(ctx context.Context, input *QuestStatusInput) (*QuestOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.end(ctx, input, entities.QuestAbandoned)
}

func (o *orchestrator) end(ctx context.Context, input *QuestStatusInput, status entities.QuestStatus) (*QuestOutput, error) {
	var out *QuestOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		q, err := tx.GetQuest(ctx, input.QuestID)
		if err != nil {
			return err
		}
		if q.Status != entities.QuestActive {
			return errors.FailedPreconditionf("quest is already %s", q.Status).
				WithMeta("quest_id", q.ID)
		}

		old := q.Status
		q.Status = status
		if err := tx.PutQuest(ctx, q); err != nil {
			return err
		}

		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   q.WorldID,
			RoomID:    q.RoomID,
			EventType: entities.EventQuestStatusChanged,
			Target:    entities.Ref(entities.KindQuest, q.ID),
			Data: entities.Attributes{
				"old_status": string(old),
				"new_status": string(status),
				"reason":     input.Reason,
			},
		}); err != nil {
			return err
		}

		out = &QuestOutput{Quest: q}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
