package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-world/internal/redis"
)

type ClientTestSuite struct {
	suite.Suite
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) TestNewClientRequiresEndpoint() {
	client, err := redis.NewClient("", nil)
	s.Error(err)
	s.Nil(client)
}

func (s *ClientTestSuite) TestNewClientTalksToServer() {
	mr := miniredis.RunT(s.T())

	client, err := redis.NewClient(mr.Addr(), &redis.Options{PoolSize: 2})
	s.Require().NoError(err)
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	s.Require().NoError(client.Set(ctx, "world:1", "{}", 0).Err())
	s.True(mr.Exists("world:1"))
}

func (s *ClientTestSuite) TestNewFailoverClientValidation() {
	_, err := redis.NewFailoverClient("", []string{"localhost:26379"}, nil)
	s.Error(err)

	_, err = redis.NewFailoverClient("mymaster", nil, nil)
	s.Error(err)
}
