package idgen_test

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-world/internal/pkg/idgen"
)

type IDGenTestSuite struct {
	suite.Suite
	ctx context.Context
}

func TestIDGenSuite(t *testing.T) {
	suite.Run(t, new(IDGenTestSuite))
}

func (s *IDGenTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *IDGenTestSuite) TestSequentialGenerator() {
	gen := idgen.NewSequential("op")
	s.Equal("op_1", gen.Generate())
	s.Equal("op_2", gen.Generate())

	bare := idgen.NewSequential("")
	s.Equal("1", bare.Generate())
}

func (s *IDGenTestSuite) TestUUIDGenerator() {
	gen := idgen.NewUUID("op")
	a, b := gen.Generate(), gen.Generate()
	s.True(strings.HasPrefix(a, "op_"))
	s.NotEqual(a, b)
}

func (s *IDGenTestSuite) TestRedisSequenceIsPerKind() {
	mr := miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	seq := idgen.NewRedisSequence(client)

	first, err := seq.Next(s.ctx, "item")
	s.Require().NoError(err)
	second, err := seq.Next(s.ctx, "item")
	s.Require().NoError(err)
	other, err := seq.Next(s.ctx, "location")
	s.Require().NoError(err)

	s.Equal(int64(1), first)
	s.Equal(int64(2), second)
	s.Equal(int64(1), other)
}

func (s *IDGenTestSuite) TestMemorySequence() {
	seq := idgen.NewMemorySequence()
	a, _ := seq.Next(s.ctx, "quest")
	b, _ := seq.Next(s.ctx, "quest")
	s.Equal(int64(1), a)
	s.Equal(int64(2), b)
}
