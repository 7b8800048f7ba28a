package quest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/quest"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
	"github.com/KirkDiggler/rpg-world/internal/testutils"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctx      context.Context
	cleanup  func()
	store    worldstate.Repository
	eventLog eventlog.Service
	svc      quest.Service
	fx       *testutils.WorldFixture
	quest    *entities.Quest
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store, _, s.cleanup = testutils.CreateTestStore(s.T(), nil)

	var err error
	s.eventLog, err = eventlog.NewOrchestrator(&eventlog.Config{Repository: s.store})
	s.Require().NoError(err)

	s.svc, err = quest.NewOrchestrator(&quest.Config{Repository: s.store, EventLog: s.eventLog})
	s.Require().NoError(err)

	s.fx = testutils.SeedWorld(s.T(), s.ctx, s.store)

	out, err := s.svc.CreateQuest(s.ctx, &quest.CreateQuestInput{
		WorldID: s.fx.World.ID,
		Name:    "Clear the cellar",
	})
	s.Require().NoError(err)
	s.quest = out.Quest
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.cleanup()
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) addObjective(quantity int32, optional bool) *entities.QuestObjective {
	out, err := s.svc.AddQuestObjective(s.ctx, &quest.AddQuestObjectiveInput{
		QuestID:       s.quest.ID,
		ObjectiveType: entities.ObjectiveKillCharacter,
		Target:        entities.Ref(entities.KindCharacter, s.fx.Goblin.ID),
		Quantity:      quantity,
		IsOptional:    optional,
	})
	s.Require().NoError(err)
	return out.Objective
}

func (s *OrchestratorTestSuite) status() entities.QuestStatus {
	out, err := s.svc.GetQuest(s.ctx, &quest.GetQuestInput{QuestID: s.quest.ID})
	s.Require().NoError(err)
	return out.Quest.Status
}

func (s *OrchestratorTestSuite) TestCreateQuestStartsActive() {
	s.Equal(entities.QuestActive, s.quest.Status)
	s.Nil(s.quest.CompletedAt)

	_, err := s.svc.CreateQuest(s.ctx, &quest.CreateQuestInput{WorldID: 999, Name: "lost"})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestObjectiveDefaults() {
	obj := s.addObjective(0, false)
	s.Equal(quest.DefaultObjectiveQuantity, obj.Quantity)
	s.Equal(int32(0), obj.CurrentProgress)
	s.False(obj.IsCompleted)
}

func (s *OrchestratorTestSuite) TestOptionalObjectiveDoesNotBlockCompletion() {
	required := s.addObjective(1, false)
	s.addObjective(3, true)

	out, err := s.svc.CompleteObjective(s.ctx, &quest.ObjectiveInput{ObjectiveID: required.ID})
	s.Require().NoError(err)
	s.True(out.QuestCompleted)
	s.Equal(entities.QuestCompleted, out.Quest.Status)
	s.NotNil(out.Quest.CompletedAt)

	check, err := s.svc.CheckQuestProgress(s.ctx, &quest.GetQuestInput{QuestID: s.quest.ID})
	s.Require().NoError(err)
	s.True(check.IsCompleted)
	s.Require().Len(check.Objectives, 2)
	s.Equal("1/1", check.Objectives[0].Progress)
	s.Equal("0/3", check.Objectives[1].Progress)

	eventType := entities.EventQuestCompleted
	events, err := s.eventLog.GetEvents(s.ctx, &eventlog.GetEventsInput{
		WorldID: s.fx.World.ID,
		Filter:  eventlog.Filter{EventType: &eventType},
	})
	s.Require().NoError(err)
	s.Len(events.Events, 1)
}

func (s *OrchestratorTestSuite) TestProgressClampsAndAutoCompletes() {
	first := s.addObjective(3, false)
	second := s.addObjective(2, false)

	out, err := s.svc.UpdateObjectiveProgress(s.ctx, &quest.UpdateObjectiveProgressInput{
		ObjectiveID: first.ID, Progress: -4,
	})
	s.Require().NoError(err)
	s.Equal(int32(0), out.Objective.CurrentProgress)

	out, err = s.svc.UpdateObjectiveProgress(s.ctx, &quest.UpdateObjectiveProgressInput{
		ObjectiveID: first.ID, Progress: 10,
	})
	s.Require().NoError(err)
	s.Equal(int32(3), out.Objective.CurrentProgress)
	s.True(out.Objective.IsCompleted)
	s.False(out.QuestCompleted)
	s.Equal(entities.QuestActive, s.status())

	out, err = s.svc.UpdateObjectiveProgress(s.ctx, &quest.UpdateObjectiveProgressInput{
		ObjectiveID: second.ID, Progress: 2,
	})
	s.Require().NoError(err)
	s.True(out.QuestCompleted)
	s.Equal(entities.QuestCompleted, s.status())
}

func (s *OrchestratorTestSuite) TestCompletedQuestStaysCompleted() {
	obj := s.addObjective(2, false)
	_, err := s.svc.CompleteObjective(s.ctx, &quest.ObjectiveInput{ObjectiveID: obj.ID})
	s.Require().NoError(err)

	out, err := s.svc.UpdateObjectiveProgress(s.ctx, &quest.UpdateObjectiveProgressInput{
		ObjectiveID: obj.ID, Progress: 1,
	})
	s.Require().NoError(err)
	s.Equal(int32(2), out.Objective.CurrentProgress)
	s.True(out.Objective.IsCompleted)
	s.False(out.QuestCompleted)
	s.Equal(entities.QuestCompleted, s.status())

	check, err := s.svc.CheckQuestProgress(s.ctx, &quest.GetQuestInput{QuestID: s.quest.ID})
	s.Require().NoError(err)
	s.Require().Len(check.Objectives, 1)
	s.Equal("2/2", check.Objectives[0].Progress)
	s.True(check.Objectives[0].Objective.IsCompleted)

	eventType := entities.EventObjectiveProgressed
	events, err := s.eventLog.GetEvents(s.ctx, &eventlog.GetEventsInput{
		WorldID: s.fx.World.ID,
		Filter:  eventlog.Filter{EventType: &eventType},
	})
	s.Require().NoError(err)
	s.Empty(events.Events)

	_, err = s.svc.FailQuest(s.ctx, &quest.QuestStatusInput{QuestID: s.quest.ID})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
	s.Equal(entities.QuestCompleted, s.status())
}

func (s *OrchestratorTestSuite) TestFailedQuestIsNotCompletedByObjectives() {
	obj := s.addObjective(1, false)

	failed, err := s.svc.FailQuest(s.ctx, &quest.QuestStatusInput{QuestID: s.quest.ID, Reason: "goblin escaped"})
	s.Require().NoError(err)
	s.Equal(entities.QuestFailed, failed.Quest.Status)

	out, err := s.svc.CompleteObjective(s.ctx, &quest.ObjectiveInput{ObjectiveID: obj.ID})
	s.Require().NoError(err)
	s.True(out.Objective.IsCompleted)
	s.False(out.QuestCompleted)
	s.Equal(entities.QuestFailed, s.status())
}

func (s *OrchestratorTestSuite) TestAbandonQuest() {
	out, err := s.svc.AbandonQuest(s.ctx, &quest.QuestStatusInput{QuestID: s.quest.ID})
	s.Require().NoError(err)
	s.Equal(entities.QuestAbandoned, out.Quest.Status)

	_, err = s.svc.AbandonQuest(s.ctx, &quest.QuestStatusInput{QuestID: s.quest.ID})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestUnknownObjective() {
	_, err := s.svc.CompleteObjective(s.ctx, &quest.ObjectiveInput{ObjectiveID: 404})
	s.True(errors.IsNotFound(err))
}
