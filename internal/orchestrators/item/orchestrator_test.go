package item_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/item"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
	"github.com/KirkDiggler/rpg-world/internal/testutils"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctx      context.Context
	cleanup  func()
	store    worldstate.Repository
	eventLog eventlog.Service
	svc      item.Service
	fx       *testutils.WorldFixture
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store, _, s.cleanup = testutils.CreateTestStore(s.T(), nil)

	var err error
	s.eventLog, err = eventlog.NewOrchestrator(&eventlog.Config{Repository: s.store})
	s.Require().NoError(err)

	s.svc, err = item.NewOrchestrator(&item.Config{Repository: s.store, EventLog: s.eventLog})
	s.Require().NoError(err)

	s.fx = testutils.SeedWorld(s.T(), s.ctx, s.store)
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.cleanup()
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) lastEvent() *entities.GameEvent {
	out, err := s.eventLog.GetRecentEvents(s.ctx, &eventlog.GetRecentEventsInput{WorldID: s.fx.World.ID, Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(out.Events, 1)
	return out.Events[0]
}

func (s *OrchestratorTestSuite) TestNewOrchestratorRequiresDependencies() {
	_, err := item.NewOrchestrator(&item.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestCreateItemDefaults() {
	out, err := s.svc.CreateItem(s.ctx, &item.CreateItemInput{
		Owner: entities.Owner{Kind: entities.KindCharacter, ID: s.fx.Hero.ID},
		Name:  "torch",
	})
	s.Require().NoError(err)

	s.Equal(s.fx.World.ID, out.Item.WorldID)
	s.Equal(int32(1), out.Item.Quantity)
	s.Equal(item.DefaultItemType, out.Item.ItemType)
	s.False(out.Item.IsStackable)
	s.NotNil(out.Item.Properties)
	s.Require().NotNil(out.Item.CharacterID)
	s.Equal(s.fx.Hero.ID, *out.Item.CharacterID)
	s.Nil(out.Item.LocationID)

	ev := s.lastEvent()
	s.Equal(entities.EventItemCreated, ev.EventType)
	s.True(ev.Target.Equal(entities.Ref(entities.KindItem, out.Item.ID)))
}

func (s *OrchestratorTestSuite) TestCreateItemRejectsUnknownOwner() {
	_, err := s.svc.CreateItem(s.ctx, &item.CreateItemInput{
		Owner: entities.Owner{Kind: entities.KindQuest, ID: 1},
		Name:  "torch",
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	_, err = s.svc.CreateItem(s.ctx, &item.CreateItemInput{
		Owner: entities.Owner{Kind: entities.KindLocation, ID: 999},
		Name:  "torch",
	})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestConsumeWholeStack() {
	out, err := s.svc.ModifyItemQuantity(s.ctx, &item.ModifyItemQuantityInput{
		ItemID: s.fx.Coins.ID, Delta: -testutils.TestCoinAmount,
	})
	s.Require().NoError(err)
	s.True(out.Consumed)
	s.Nil(out.Item)
	s.Equal(testutils.TestCoinAmount, out.OldQuantity)

	_, err = s.svc.GetItem(s.ctx, &item.GetItemInput{ItemID: s.fx.Coins.ID})
	s.True(errors.IsNotFound(err))

	items, err := s.store.ListItemsAt(s.ctx, s.fx.Square.ID)
	s.Require().NoError(err)
	s.Empty(items)

	ev := s.lastEvent()
	s.Equal(entities.EventItemConsumed, ev.EventType)
	s.Equal("quantity_depleted", ev.EventData["reason"])
}

func (s *OrchestratorTestSuite) TestPartialConsume() {
	created, err := s.svc.CreateItem(s.ctx, &item.CreateItemInput{
		Owner: entities.Owner{Kind: entities.KindLocation, ID: s.fx.Square.ID},
		Name:  "arrows", Quantity: 2, IsStackable: true,
	})
	s.Require().NoError(err)

	out, err := s.svc.ModifyItemQuantity(s.ctx, &item.ModifyItemQuantityInput{
		ItemID: created.Item.ID, Delta: -1,
	})
	s.Require().NoError(err)
	s.False(out.Consumed)
	s.Equal(int32(1), out.Item.Quantity)
	s.Equal(int32(2), out.OldQuantity)
	s.Equal(int32(1), out.NewQuantity)

	ev := s.lastEvent()
	s.Equal(entities.EventItemQuantityChanged, ev.EventType)
}

func (s *OrchestratorTestSuite) TestQuantityOverflowLeavesStackIntact() {
	_, err := s.svc.ModifyItemQuantity(s.ctx, &item.ModifyItemQuantityInput{
		ItemID: s.fx.Coins.ID, Delta: math.MaxInt32,
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	got, err := s.svc.GetItem(s.ctx, &item.GetItemInput{ItemID: s.fx.Coins.ID})
	s.Require().NoError(err)
	s.Equal(testutils.TestCoinAmount, got.Item.Quantity)

	events, err := s.eventLog.GetRecentEvents(s.ctx, &eventlog.GetRecentEventsInput{WorldID: s.fx.World.ID})
	s.Require().NoError(err)
	s.Empty(events.Events)
}

func (s *OrchestratorTestSuite) TestLargeDeltaWithinRange() {
	out, err := s.svc.ModifyItemQuantity(s.ctx, &item.ModifyItemQuantityInput{
		ItemID: s.fx.Coins.ID, Delta: math.MaxInt32 - testutils.TestCoinAmount,
	})
	s.Require().NoError(err)
	s.False(out.Consumed)
	s.Equal(int32(math.MaxInt32), out.NewQuantity)
}

func (s *OrchestratorTestSuite) TestMoveItemIntoContainer() {
	out, err := s.svc.MoveItem(s.ctx, &item.MoveItemInput{
		ItemID: s.fx.Coins.ID,
		To:     entities.EntityRef{Kind: entities.KindContainer, ID: s.fx.Crate.ID},
	})
	s.Require().NoError(err)
	s.Require().NotNil(out.PreviousOwner)
	s.Equal(entities.KindLocation, out.PreviousOwner.Kind)
	s.Nil(out.Item.LocationID)

	got, err := s.svc.GetContainer(s.ctx, &item.ContainerInput{ContainerID: s.fx.Crate.ID})
	s.Require().NoError(err)
	s.Len(got.Items, 2)

	ev := s.lastEvent()
	s.Equal(entities.EventItemMoved, ev.EventType)
	s.Equal(string(entities.KindContainer), ev.EventData["new_owner_kind"])
}

func (s *OrchestratorTestSuite) TestMoveItemRejectsBadTarget() {
	_, err := s.svc.MoveItem(s.ctx, &item.MoveItemInput{
		ItemID: s.fx.Coins.ID,
		To:     entities.EntityRef{Kind: entities.KindQuest, ID: 1},
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestMoveItemRespectsCapacity() {
	capacity := int32(1)
	bag, err := s.svc.CreateContainer(s.ctx, &item.CreateContainerInput{
		Owner:    entities.Owner{Kind: entities.KindCharacter, ID: s.fx.Hero.ID},
		Name:     "pouch",
		Capacity: &capacity,
	})
	s.Require().NoError(err)
	s.True(bag.Container.IsOpen)

	to := entities.EntityRef{Kind: entities.KindContainer, ID: bag.Container.ID}
	_, err = s.svc.MoveItem(s.ctx, &item.MoveItemInput{ItemID: s.fx.Coins.ID, To: to})
	s.Require().NoError(err)

	_, err = s.svc.MoveItem(s.ctx, &item.MoveItemInput{ItemID: s.fx.Key.ID, To: to})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestContainerOpenClose() {
	out, err := s.svc.CloseContainer(s.ctx, &item.ContainerInput{ContainerID: s.fx.Crate.ID})
	s.Require().NoError(err)
	s.False(out.Container.IsOpen)

	ev := s.lastEvent()
	s.Equal(entities.EventContainerStateChanged, ev.EventType)
	s.Equal(false, ev.EventData["new_value"])

	out, err = s.svc.OpenContainer(s.ctx, &item.ContainerInput{ContainerID: s.fx.Crate.ID})
	s.Require().NoError(err)
	s.True(out.Container.IsOpen)
}

func (s *OrchestratorTestSuite) TestLockedContainerStaysShut() {
	closed := false
	chest, err := s.svc.CreateContainer(s.ctx, &item.CreateContainerInput{
		Owner:    entities.Owner{Kind: entities.KindLocation, ID: s.fx.Cellar.ID},
		Name:     "iron chest",
		IsLocked: true,
		IsOpen:   &closed,
	})
	s.Require().NoError(err)

	_, err = s.svc.OpenContainer(s.ctx, &item.ContainerInput{ContainerID: chest.Container.ID})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestContainerCannotNest() {
	_, err := s.svc.CreateContainer(s.ctx, &item.CreateContainerInput{
		Owner: entities.Owner{Kind: entities.KindContainer, ID: s.fx.Crate.ID},
		Name:  "box",
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}
