package worldstate_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	mockclock "github.com/KirkDiggler/rpg-world/internal/pkg/clock/mock"
	idgenmock "github.com/KirkDiggler/rpg-world/internal/pkg/idgen/mock"
	"github.com/KirkDiggler/rpg-world/internal/redis"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
	"github.com/KirkDiggler/rpg-world/internal/testutils"
)

type SequenceTestSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	client    redis.Client
	cleanup   func()
	mockClock *mockclock.MockClock
	mockSeq   *idgenmock.MockSequence
	repo      worldstate.Repository
}

func (s *SequenceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.client, s.cleanup = testutils.CreateTestRedisClient(s.T())
	s.mockClock = mockclock.NewMockClock(s.ctrl)
	s.mockSeq = idgenmock.NewMockSequence(s.ctrl)

	repo, err := worldstate.NewRedis(&worldstate.Config{
		Client:   s.client,
		Clock:    s.mockClock,
		Sequence: s.mockSeq,
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *SequenceTestSuite) TearDownTest() {
	s.ctrl.Finish()
	s.cleanup()
}

func TestSequenceTestSuite(t *testing.T) {
	suite.Run(t, new(SequenceTestSuite))
}

func (s *SequenceTestSuite) TestCreateUsesAllocatedIDAndClock() {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	s.mockClock.EXPECT().Now().Return(now)
	s.mockSeq.EXPECT().Next(gomock.Any(), "world").Return(int64(42), nil)

	w := &entities.World{Name: "Sequenced", TimeOfDay: entities.TimeMorning}
	err := s.repo.Update(s.ctx, func(tx *worldstate.Tx) error {
		return tx.CreateWorld(s.ctx, w)
	})
	s.Require().NoError(err)
	s.Equal(int64(42), w.ID)

	got, err := s.repo.GetWorld(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal("Sequenced", got.Name)
	s.True(got.CreatedAt.Equal(now))
}

func (s *SequenceTestSuite) TestSequenceFailureAbortsUpdate() {
	s.mockClock.EXPECT().Now().Return(time.Now())
	s.mockSeq.EXPECT().Next(gomock.Any(), "world").Return(int64(0), fmt.Errorf("counter offline"))

	err := s.repo.Update(s.ctx, func(tx *worldstate.Tx) error {
		return tx.CreateWorld(s.ctx, &entities.World{Name: "Never", TimeOfDay: entities.TimeMorning})
	})
	s.Require().Error(err)
	s.Equal(errors.CodeInternal, errors.GetCode(err))

	worlds, err := s.repo.ListWorlds(s.ctx)
	s.Require().NoError(err)
	s.Empty(worlds)
}
