package eventlog_test

import (
	"context"
	"testing"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
	"github.com/KirkDiggler/rpg-world/internal/testutils"
)

// recordingBus satisfies events.EventBus and keeps every published event
type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *recordingBus) Subscribe(_ string, _ events.Handler) string { return "sub-id" }
func (b *recordingBus) SubscribeFunc(_ string, _ int, _ events.HandlerFunc) string {
	return "sub-id"
}
func (b *recordingBus) Unsubscribe(_ string) error { return nil }
func (b *recordingBus) Clear(_ string)             {}
func (b *recordingBus) ClearAll()                  {}

type OrchestratorTestSuite struct {
	suite.Suite
	ctx     context.Context
	cleanup func()
	store   worldstate.Repository
	bus     *recordingBus
	log     eventlog.Service
	worldID int64
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store, _, s.cleanup = testutils.CreateTestStore(s.T(), nil)
	s.bus = &recordingBus{}

	svc, err := eventlog.NewOrchestrator(&eventlog.Config{
		Repository:  s.store,
		EventBus:    s.bus,
		RecentLimit: 2,
	})
	s.Require().NoError(err)
	s.log = svc
	s.worldID = testutils.SeedWorld(s.T(), s.ctx, s.store).World.ID
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.cleanup()
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) logAll(ctx context.Context, inputs ...*eventlog.LogInput) {
	err := s.store.Update(ctx, func(tx *worldstate.Tx) error {
		for _, in := range inputs {
			if _, err := s.log.Log(ctx, tx, in); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TestNewOrchestratorRequiresRepository() {
	_, err := eventlog.NewOrchestrator(&eventlog.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestLogPublishesAfterCommit() {
	s.logAll(s.ctx, &eventlog.LogInput{
		WorldID:   s.worldID,
		EventType: entities.EventCharacterMoved,
		Actor:     entities.Ref(entities.KindCharacter, 1),
		Target:    entities.Ref(entities.KindLocation, 2),
	})

	s.Require().Len(s.bus.published, 1)
	s.Equal(entities.EventCharacterMoved, s.bus.published[0].Type())
}

func (s *OrchestratorTestSuite) TestFailedMutationLogsNothing() {
	err := s.store.Update(s.ctx, func(tx *worldstate.Tx) error {
		if _, err := s.log.Log(s.ctx, tx, &eventlog.LogInput{
			WorldID:   s.worldID,
			EventType: entities.EventItemCreated,
		}); err != nil {
			return err
		}
		return errors.New(errors.CodeInternal, "storage went away")
	})
	s.Require().Error(err)
	s.Empty(s.bus.published)

	out, err := s.log.GetRecentEvents(s.ctx, &eventlog.GetRecentEventsInput{WorldID: s.worldID})
	s.Require().NoError(err)
	s.Empty(out.Events)
}

func (s *OrchestratorTestSuite) TestLogRequiresEventType() {
	err := s.store.Update(s.ctx, func(tx *worldstate.Tx) error {
		_, err := s.log.Log(s.ctx, tx, &eventlog.LogInput{WorldID: s.worldID})
		return err
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestCallMetadataIsStamped() {
	room, user := int64(5), int64(9)
	ctx := eventlog.WithCall(s.ctx, eventlog.Call{OperationID: "op-1", RoomID: &room, UserID: &user})
	s.logAll(ctx, &eventlog.LogInput{WorldID: s.worldID, EventType: entities.EventTimeAdvanced})

	out, err := s.log.GetRecentEvents(s.ctx, &eventlog.GetRecentEventsInput{WorldID: s.worldID, RoomID: &room})
	s.Require().NoError(err)
	s.Require().Len(out.Events, 1)
	ev := out.Events[0]
	s.Equal("op-1", ev.OperationID)
	s.Equal(room, *ev.RoomID)
	s.Equal(user, *ev.CreatedBy)
	s.NotNil(ev.EventData)
}

func (s *OrchestratorTestSuite) TestGetRecentEventsDefaultLimit() {
	s.logAll(s.ctx,
		&eventlog.LogInput{WorldID: s.worldID, EventType: "one"},
		&eventlog.LogInput{WorldID: s.worldID, EventType: "two"},
		&eventlog.LogInput{WorldID: s.worldID, EventType: "three"},
	)

	out, err := s.log.GetRecentEvents(s.ctx, &eventlog.GetRecentEventsInput{WorldID: s.worldID})
	s.Require().NoError(err)
	s.Require().Len(out.Events, 2)
	s.Equal("three", out.Events[0].EventType)
	s.Equal("two", out.Events[1].EventType)

	out, err = s.log.GetRecentEvents(s.ctx, &eventlog.GetRecentEventsInput{WorldID: s.worldID, Limit: 10})
	s.Require().NoError(err)
	s.Len(out.Events, 3)
}

func (s *OrchestratorTestSuite) TestGetEventsFilters() {
	hero := entities.Ref(entities.KindCharacter, 1)
	goblin := entities.Ref(entities.KindCharacter, 2)
	s.logAll(s.ctx,
		&eventlog.LogInput{WorldID: s.worldID, EventType: entities.EventCharacterDamaged, Actor: hero, Target: goblin},
		&eventlog.LogInput{WorldID: s.worldID, EventType: entities.EventCharacterDamaged, Actor: goblin, Target: hero},
		&eventlog.LogInput{WorldID: s.worldID, EventType: entities.EventCharacterHealed, Target: hero},
	)

	damaged := entities.EventCharacterDamaged
	testCases := []struct {
		name   string
		filter eventlog.Filter
		want   int
	}{
		{name: "no filter", filter: eventlog.Filter{}, want: 3},
		{name: "by type", filter: eventlog.Filter{EventType: &damaged}, want: 2},
		{name: "by target", filter: eventlog.Filter{Target: hero}, want: 2},
		{name: "by type and actor", filter: eventlog.Filter{EventType: &damaged, Actor: goblin}, want: 1},
		{name: "no match", filter: eventlog.Filter{Actor: entities.Ref(entities.KindCharacter, 77)}, want: 0},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			out, err := s.log.GetEvents(s.ctx, &eventlog.GetEventsInput{WorldID: s.worldID, Filter: tc.filter})
			s.Require().NoError(err)
			s.Len(out.Events, tc.want)
		})
	}
}
