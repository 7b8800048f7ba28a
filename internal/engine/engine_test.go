package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/KirkDiggler/rpg-world/internal/engine"
	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/observe"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/builder"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/character"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/connection"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/location"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/world"
	"github.com/KirkDiggler/rpg-world/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-world/internal/testutils"
)

type EngineTestSuite struct {
	suite.Suite
	ctx     context.Context
	cleanup func()
	reader  *sdkmetric.ManualReader
	engine  engine.Engine
	worldID int64
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()
	store, _, cleanup := testutils.CreateTestStore(s.T(), nil)
	s.cleanup = cleanup

	s.reader = sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(s.reader))
	s.T().Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	s.Require().NoError(err)

	s.engine, err = engine.New(&engine.Config{
		Repository:   store,
		Metrics:      metrics,
		OperationIDs: idgen.NewSequential("op"),
	})
	s.Require().NoError(err)

	w, err := s.engine.CreateWorld(s.ctx, &builder.CreateWorldInput{Name: "Eldermere"})
	s.Require().NoError(err)
	s.worldID = w.World.ID
}

func (s *EngineTestSuite) TearDownTest() {
	s.cleanup()
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) location(name string, parentID *int64) *entities.Location {
	out, err := s.engine.CreateLocation(s.ctx, &builder.CreateLocationInput{
		WorldID:          s.worldID,
		ParentLocationID: parentID,
		Name:             name,
		Description:      name + " lies here.",
	})
	s.Require().NoError(err)
	return out.Location
}

func (s *EngineTestSuite) TestNewRequiresRepository() {
	_, err := engine.New(&engine.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *EngineTestSuite) TestRootLocationsAreNotSiblings() {
	a := s.location("Alpha", nil)
	s.location("Beta", nil)

	out, err := s.engine.ListExits(s.ctx, &connection.ListExitsInput{LocationID: a.ID})
	s.Require().NoError(err)
	s.Empty(out.Exits)
}

func (s *EngineTestSuite) TestBidirectionalConnectionIsCreatedOnce() {
	a := s.location("Alpha", nil)
	b := s.location("Beta", nil)

	input := func() *connection.CreateConnectionInput {
		return &connection.CreateConnectionInput{
			WorldID:         s.worldID,
			FromLocationID:  a.ID,
			ToLocationID:    b.ID,
			Direction:       "north",
			IsBidirectional: true,
		}
	}

	first, err := s.engine.CreateConnection(s.ctx, input())
	s.Require().NoError(err)
	s.True(first.Created)
	s.Equal("north", first.Connection.Direction)
	s.Require().NotNil(first.Reverse)
	s.Equal("south", first.Reverse.Direction)

	second, err := s.engine.CreateConnection(s.ctx, input())
	s.Require().NoError(err)
	s.False(second.Created)
	s.Equal(first.Connection.ID, second.Connection.ID)

	back, err := s.engine.GetConnection(s.ctx, &connection.GetConnectionInput{FromLocationID: b.ID, Direction: "south"})
	s.Require().NoError(err)
	s.Equal(a.ID, back.Connection.ToLocationID)

	exits, err := s.engine.ListExits(s.ctx, &connection.ListExitsInput{LocationID: a.ID})
	s.Require().NoError(err)
	s.Len(exits.Exits, 1)
}

func (s *EngineTestSuite) TestDarknessHidesFire() {
	cave := s.location("Cave", nil)
	for _, key := range []string{location.StateIsDark, location.StateIsOnFire} {
		_, err := s.engine.SetLocationState(s.ctx, &location.SetLocationStateInput{
			LocationID: cave.ID, Key: key, Value: true,
		})
		s.Require().NoError(err)
	}

	out, err := s.engine.DescribeLocation(s.ctx, &location.DescribeLocationInput{LocationID: cave.ID})
	s.Require().NoError(err)
	s.Equal(location.DarkDescription, out.Description)
}

func (s *EngineTestSuite) TestEventsShareOperationAndCaller() {
	hall := s.location("Hall", nil)
	npc, err := s.engine.CreateNPC(s.ctx, &character.CreateNPCInput{LocationID: hall.ID, Name: "Guard"})
	s.Require().NoError(err)

	room, user := int64(9), int64(42)
	ctx := engine.WithCaller(s.ctx, engine.Caller{RoomID: &room, UserID: &user})
	_, err = s.engine.KillCharacter(ctx, &character.KillCharacterInput{CharacterID: npc.Character.ID})
	s.Require().NoError(err)

	out, err := s.engine.GetRecentEvents(s.ctx, &eventlog.GetRecentEventsInput{WorldID: s.worldID, Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(out.Events, 2)

	died, damaged := out.Events[0], out.Events[1]
	s.Equal(entities.EventCharacterDied, died.EventType)
	s.Equal(entities.EventCharacterDamaged, damaged.EventType)
	s.NotEmpty(died.OperationID)
	s.Equal(died.OperationID, damaged.OperationID)
	s.Require().NotNil(died.RoomID)
	s.Equal(room, *died.RoomID)
	s.Require().NotNil(died.CreatedBy)
	s.Equal(user, *died.CreatedBy)

	created, err := s.engine.GetEvents(s.ctx, &eventlog.GetEventsInput{
		WorldID: s.worldID,
		Filter:  eventlog.Filter{Target: entities.Ref(entities.KindCharacter, npc.Character.ID)},
	})
	s.Require().NoError(err)
	s.Len(created.Events, 3)
	s.NotEqual(created.Events[2].OperationID, died.OperationID)
}

func (s *EngineTestSuite) TestErrorsAreStructured() {
	_, err := s.engine.GetWorld(s.ctx, &world.GetWorldInput{WorldID: 999})
	s.Require().Error(err)

	var domainErr *errors.Error
	s.Require().True(errors.As(err, &domainErr))
	s.Equal(errors.CodeNotFound, domainErr.Code)

	_, err = s.engine.AdvanceTime(s.ctx, &world.AdvanceTimeInput{WorldID: s.worldID, TimeOfDay: "teatime"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *EngineTestSuite) TestOperationsAreMeasured() {
	_, err := s.engine.GetWorld(s.ctx, &world.GetWorldInput{WorldID: s.worldID})
	s.Require().NoError(err)
	_, err = s.engine.GetWorld(s.ctx, &world.GetWorldInput{WorldID: 999})
	s.Require().Error(err)

	var rm metricdata.ResourceMetrics
	s.Require().NoError(s.reader.Collect(s.ctx, &rm))

	s.Equal(int64(2), s.sum(rm, observe.MetricOperations, "operation", "get_world"))
	s.Equal(int64(1), s.sum(rm, observe.MetricOperationErrors, "code", string(errors.CodeNotFound)))
	s.Equal(int64(1), s.sum(rm, observe.MetricEventsLogged, "event_type", entities.EventWorldCreated))
}

func (s *EngineTestSuite) sum(rm metricdata.ResourceMetrics, name, key, value string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			s.Require().True(ok, "metric %s is not an int64 sum", name)
			for _, dp := range data.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
					total += dp.Value
				}
			}
		}
	}
	return total
}
