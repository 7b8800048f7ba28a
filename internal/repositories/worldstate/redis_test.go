package worldstate_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-world/internal/redis"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
	"github.com/KirkDiggler/rpg-world/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	ctx     context.Context
	client  redis.Client
	cleanup func()
	now     time.Time
	repo    worldstate.Repository
	fx      *testutils.WorldFixture
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	s.client, s.cleanup = testutils.CreateTestRedisClient(s.T())

	repo, err := worldstate.NewRedis(&worldstate.Config{
		Client: s.client,
		Clock:  &clock.Fixed{At: s.now},
	})
	s.Require().NoError(err)
	s.repo = repo
	s.fx = testutils.SeedWorld(s.T(), s.ctx, s.repo)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

// touch rewrites a key unchanged, invalidating any WATCH on it
func (s *RedisRepositoryTestSuite) touch(key string) {
	raw, err := s.client.Get(s.ctx, key).Result()
	s.Require().NoError(err)
	s.Require().NoError(s.client.Set(s.ctx, key, raw, 0).Err())
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) TestNewRedisValidation() {
	_, err := worldstate.NewRedis(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = worldstate.NewRedis(&worldstate.Config{})
	s.True(errors.IsInvalidArgument(err))

	_, err = worldstate.NewRedis(&worldstate.Config{Client: s.client, MaxAttempts: -1})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestCreateStampsIDsAndTimes() {
	world, err := s.repo.GetWorld(s.ctx, s.fx.World.ID)
	s.Require().NoError(err)
	s.Equal(testutils.TestWorldName, world.Name)
	s.True(world.CreatedAt.Equal(s.now))
	s.NotNil(world.WorldState)

	s.NotZero(s.fx.Square.ID)
	s.NotEqual(s.fx.Square.ID, s.fx.Tavern.ID)
}

func (s *RedisRepositoryTestSuite) TestGetMissing() {
	_, err := s.repo.GetCharacter(s.ctx, 9999)
	s.True(errors.IsNotFound(err))

	_, err = s.repo.GetItem(s.ctx, 0)
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestIndexes() {
	children, err := s.repo.ListChildLocations(s.ctx, s.fx.Town.ID)
	s.Require().NoError(err)
	s.Require().Len(children, 2)
	s.Equal("Square", children[0].Name)
	s.Equal("Tavern", children[1].Name)

	chars, err := s.repo.ListCharactersAt(s.ctx, s.fx.Cellar.ID)
	s.Require().NoError(err)
	s.Require().Len(chars, 1)
	s.Equal("Goblin", chars[0].Name)

	inCrate, err := s.repo.ListItemsInContainer(s.ctx, s.fx.Crate.ID)
	s.Require().NoError(err)
	s.Require().Len(inCrate, 1)
	s.Equal("rope", inCrate[0].Name)

	atSquare, err := s.repo.ListItemsAt(s.ctx, s.fx.Square.ID)
	s.Require().NoError(err)
	s.Require().Len(atSquare, 1)
	s.Equal("gold coins", atSquare[0].Name)

	all, err := s.repo.ListLocations(s.ctx, s.fx.World.ID)
	s.Require().NoError(err)
	s.Len(all, 4)
}

func (s *RedisRepositoryTestSuite) TestPutItemMovesOwnerIndex() {
	err := s.repo.Update(s.ctx, func(tx *worldstate.Tx) error {
		item, err := tx.GetItem(s.ctx, s.fx.Rope.ID)
		if err != nil {
			return err
		}
		item.SetOwner(entities.Owner{Kind: entities.KindCharacter, ID: s.fx.Hero.ID})
		return tx.PutItem(s.ctx, item)
	})
	s.Require().NoError(err)

	inCrate, err := s.repo.ListItemsInContainer(s.ctx, s.fx.Crate.ID)
	s.Require().NoError(err)
	s.Empty(inCrate)

	carried, err := s.repo.ListItemsCarried(s.ctx, s.fx.Hero.ID)
	s.Require().NoError(err)
	s.Require().Len(carried, 1)
	s.Nil(carried[0].ContainerID)
	s.Nil(carried[0].LocationID)
	s.Equal(s.fx.Hero.ID, *carried[0].CharacterID)
}

func (s *RedisRepositoryTestSuite) TestPutLocationMovesChildrenIndex() {
	err := s.repo.Update(s.ctx, func(tx *worldstate.Tx) error {
		loc, err := tx.GetLocation(s.ctx, s.fx.Cellar.ID)
		if err != nil {
			return err
		}
		loc.ParentLocationID = entities.Int64Ptr(s.fx.Square.ID)
		return tx.PutLocation(s.ctx, loc)
	})
	s.Require().NoError(err)

	underTavern, err := s.repo.ListChildLocations(s.ctx, s.fx.Tavern.ID)
	s.Require().NoError(err)
	s.Empty(underTavern)

	underSquare, err := s.repo.ListChildLocations(s.ctx, s.fx.Square.ID)
	s.Require().NoError(err)
	s.Require().Len(underSquare, 1)
	s.Equal("Cellar", underSquare[0].Name)
}

func (s *RedisRepositoryTestSuite) TestReadYourWrites() {
	err := s.repo.Update(s.ctx, func(tx *worldstate.Tx) error {
		item := &entities.Item{
			WorldID: s.fx.World.ID, LocationID: entities.Int64Ptr(s.fx.Tavern.ID),
			Name: "mug", Quantity: 1,
		}
		if err := tx.CreateItem(s.ctx, item); err != nil {
			return err
		}

		got, err := tx.GetItem(s.ctx, item.ID)
		s.Require().NoError(err)
		s.Equal("mug", got.Name)

		here, err := tx.ListItemsAt(s.ctx, s.fx.Tavern.ID)
		s.Require().NoError(err)
		s.Len(here, 1)

		if err := tx.DeleteItem(s.ctx, item.ID); err != nil {
			return err
		}
		_, err = tx.GetItem(s.ctx, item.ID)
		s.True(errors.IsNotFound(err))

		here, err = tx.ListItemsAt(s.ctx, s.fx.Tavern.ID)
		s.Require().NoError(err)
		s.Empty(here)
		return nil
	})
	s.Require().NoError(err)
}

func (s *RedisRepositoryTestSuite) TestFailedUpdateWritesNothing() {
	err := s.repo.Update(s.ctx, func(tx *worldstate.Tx) error {
		hero, err := tx.GetCharacter(s.ctx, s.fx.Hero.ID)
		if err != nil {
			return err
		}
		hero.SetHP(1)
		if err := tx.PutCharacter(s.ctx, hero); err != nil {
			return err
		}
		return errors.FailedPrecondition("changed my mind")
	})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))

	hero, err := s.repo.GetCharacter(s.ctx, s.fx.Hero.ID)
	s.Require().NoError(err)
	s.Equal(testutils.TestHeroMaxHP, hero.CurrentHP)
}

func (s *RedisRepositoryTestSuite) TestAfterCommitRunsOnlyOnSuccess() {
	var ran int
	err := s.repo.Update(s.ctx, func(tx *worldstate.Tx) error {
		tx.AfterCommit(func(context.Context) { ran++ })
		return errors.InvalidArgument("nope")
	})
	s.Require().Error(err)
	s.Zero(ran)

	err = s.repo.Update(s.ctx, func(tx *worldstate.Tx) error {
		tx.AfterCommit(func(context.Context) { ran++ })
		return tx.AppendEvent(s.ctx, &entities.GameEvent{WorldID: s.fx.World.ID, EventType: "ping"})
	})
	s.Require().NoError(err)
	s.Equal(1, ran)
}

func (s *RedisRepositoryTestSuite) TestConflictRetries() {
	attempts := 0
	err := s.repo.Update(s.ctx, func(tx *worldstate.Tx) error {
		attempts++
		hero, err := tx.GetCharacter(s.ctx, s.fx.Hero.ID)
		if err != nil {
			return err
		}
		if attempts == 1 {
			// a concurrent writer touches the watched row
			s.touch(fmt.Sprintf("character:%d", hero.ID))
		}
		hero.Gold += 5
		return tx.PutCharacter(s.ctx, hero)
	})
	s.Require().NoError(err)
	s.Equal(2, attempts)
}

func (s *RedisRepositoryTestSuite) TestConflictExhaustsAttempts() {
	repo, err := worldstate.NewRedis(&worldstate.Config{Client: s.client, MaxAttempts: 2})
	s.Require().NoError(err)

	attempts := 0
	err = repo.Update(s.ctx, func(tx *worldstate.Tx) error {
		attempts++
		world, err := tx.GetWorld(s.ctx, s.fx.World.ID)
		if err != nil {
			return err
		}
		s.touch(fmt.Sprintf("world:%d", world.ID))
		world.DaysElapsed++
		return tx.PutWorld(s.ctx, world)
	})
	s.Require().Error(err)
	s.Equal(errors.CodeAborted, errors.GetCode(err))
	s.Equal(2, attempts)
}

func (s *RedisRepositoryTestSuite) TestFindLookups() {
	player, err := s.repo.FindPlayerCharacter(s.ctx, s.fx.World.ID, testutils.TestUserID)
	s.Require().NoError(err)
	s.Require().NotNil(player)
	s.Equal(s.fx.Hero.ID, player.ID)

	none, err := s.repo.FindPlayerCharacter(s.ctx, s.fx.World.ID, 7)
	s.Require().NoError(err)
	s.Nil(none)

	var connID int64
	err = s.repo.Update(s.ctx, func(tx *worldstate.Tx) error {
		conn := &entities.Connection{
			WorldID: s.fx.World.ID, FromLocationID: s.fx.Square.ID, ToLocationID: s.fx.Cellar.ID,
			ConnectionType: entities.ConnectionPassage, Direction: "down", IsVisible: true, IsOpen: true,
		}
		if err := tx.CreateConnection(s.ctx, conn); err != nil {
			return err
		}
		connID = conn.ID
		return nil
	})
	s.Require().NoError(err)

	found, err := s.repo.FindConnection(s.ctx, s.fx.Square.ID, s.fx.Cellar.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(connID, found.ID)

	reverse, err := s.repo.FindConnection(s.ctx, s.fx.Cellar.ID, s.fx.Square.ID)
	s.Require().NoError(err)
	s.Nil(reverse)

	atCellar, err := s.repo.ListConnectionsAt(s.ctx, s.fx.Cellar.ID)
	s.Require().NoError(err)
	s.Len(atCellar, 1)

	s.Require().NoError(s.repo.Update(s.ctx, func(tx *worldstate.Tx) error {
		return tx.DeleteConnection(s.ctx, connID)
	}))
	found, err = s.repo.FindConnection(s.ctx, s.fx.Square.ID, s.fx.Cellar.ID)
	s.Require().NoError(err)
	s.Nil(found)
}

func (s *RedisRepositoryTestSuite) TestListEvents() {
	room := int64(3)
	err := s.repo.Update(s.ctx, func(tx *worldstate.Tx) error {
		for _, ev := range []*entities.GameEvent{
			{WorldID: s.fx.World.ID, EventType: "first"},
			{WorldID: s.fx.World.ID, EventType: "second", RoomID: &room},
			{WorldID: s.fx.World.ID, EventType: "third"},
		} {
			if err := tx.AppendEvent(s.ctx, ev); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)

	all, err := s.repo.ListEvents(s.ctx, worldstate.ListEventsInput{WorldID: s.fx.World.ID})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("third", all[0].EventType)
	s.Equal("first", all[2].EventType)
	s.NotNil(all[0].EventData)

	limited, err := s.repo.ListEvents(s.ctx, worldstate.ListEventsInput{WorldID: s.fx.World.ID, Limit: 2})
	s.Require().NoError(err)
	s.Len(limited, 2)

	inRoom, err := s.repo.ListEvents(s.ctx, worldstate.ListEventsInput{WorldID: s.fx.World.ID, RoomID: &room})
	s.Require().NoError(err)
	s.Require().Len(inRoom, 1)
	s.Equal("second", inRoom[0].EventType)
}

func (s *RedisRepositoryTestSuite) TestStaleIndexMemberIsSkipped() {
	s.Require().NoError(s.client.SAdd(s.ctx,
		fmt.Sprintf("location:%d:characters", s.fx.Cellar.ID), 4040).Err())

	chars, err := s.repo.ListCharactersAt(s.ctx, s.fx.Cellar.ID)
	s.Require().NoError(err)
	s.Len(chars, 1)
}
