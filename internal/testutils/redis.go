// Package testutils provides utilities for testing, including Redis test helpers
package testutils

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-world/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-world/internal/redis"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

// CreateTestRedisClient creates an in-memory Redis client for testing
func CreateTestRedisClient(t *testing.T) (redis.Client, func()) {
	return CreateTestRedisClientWithContext(t, nil)
}

// CreateTestRedisClientWithContext creates an in-memory Redis client with data population function
func CreateTestRedisClientWithContext(t *testing.T, setupFunc func(mr *miniredis.Miniredis)) (redis.Client, func()) {
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to create miniredis")

	// Allow test to populate Redis with initial data
	if setupFunc != nil {
		setupFunc(mr)
	}

	client, err := redis.NewClient(mr.Addr(), nil)
	require.NoError(t, err, "failed to create redis client")

	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}

	return client, cleanup
}

// FlushTestRedis removes every key so a client can be reused between tests
func FlushTestRedis(ctx context.Context, client redis.Client) error {
	return client.FlushAll(ctx).Err()
}

// CreateTestStore creates a world store over miniredis. A nil clock uses
// the real clock.
func CreateTestStore(t *testing.T, clk clock.Clock) (worldstate.Repository, redis.Client, func()) {
	client, cleanup := CreateTestRedisClient(t)

	store, err := worldstate.NewRedis(&worldstate.Config{
		Client: client,
		Clock:  clk,
	})
	require.NoError(t, err, "failed to create world store")

	return store, client, cleanup
}
