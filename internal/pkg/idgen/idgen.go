// Package idgen provides ID generation utilities
package idgen

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

//go:generate mockgen -destination=mock/mock.go -package=idgenmock github.com/KirkDiggler/rpg-world/internal/pkg/idgen Generator,Sequence

// Generator generates opaque string identifiers, used for operation ids
type Generator interface {
	Generate() string
}

// Sequence hands out numeric entity ids, unique per kind
type Sequence interface {
	Next(ctx context.Context, kind string) (int64, error)
}

// UUIDGenerator generates UUIDs with optional prefix
type UUIDGenerator struct {
	prefix string
}

// NewUUID creates a new UUID generator with optional prefix
func NewUUID(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

// Generate creates a new UUID-based ID
func (g *UUIDGenerator) Generate() string {
	id := uuid.New().String()
	if g.prefix != "" {
		return fmt.Sprintf("%s_%s", g.prefix, id)
	}
	return id
}

// SequentialGenerator generates sequential IDs for testing
type SequentialGenerator struct {
	prefix  string
	counter uint64
}

// NewSequential creates a new sequential generator
func NewSequential(prefix string) *SequentialGenerator {
	return &SequentialGenerator{prefix: prefix}
}

// Generate creates a new sequential ID
func (g *SequentialGenerator) Generate() string {
	n := atomic.AddUint64(&g.counter, 1)
	if g.prefix != "" {
		return fmt.Sprintf("%s_%d", g.prefix, n)
	}
	return fmt.Sprintf("%d", n)
}

// RedisSequence allocates ids with INCR on seq:<kind>. Allocation happens
// outside any MULTI block, so an aborted transaction leaves a gap.
type RedisSequence struct {
	client redis.Cmdable
}

// NewRedisSequence creates a sequence backed by the given client
func NewRedisSequence(client redis.Cmdable) *RedisSequence {
	return &RedisSequence{client: client}
}

// Next returns the next id for kind
func (s *RedisSequence) Next(ctx context.Context, kind string) (int64, error) {
	id, err := s.client.Incr(ctx, "seq:"+kind).Result()
	if err != nil {
		return 0, fmt.Errorf("allocate %s id: %w", kind, err)
	}
	return id, nil
}

// MemorySequence is an in-process Sequence for tests and dry runs
type MemorySequence struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemorySequence creates an empty in-memory sequence
func NewMemorySequence() *MemorySequence {
	return &MemorySequence{counters: make(map[string]int64)}
}

// Next returns the next id for kind
func (s *MemorySequence) Next(_ context.Context, kind string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[kind]++
	return s.counters[kind], nil
}
