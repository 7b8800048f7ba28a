package worldstate

import (
	"context"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-world/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/rpg-world/internal/redis"
)

// DefaultMaxAttempts bounds how often a conflicting transaction is retried
const DefaultMaxAttempts = 10

// Config holds the dependencies for the redis repository
type Config struct {
	Client redisclient.Client
	// Clock stamps created_at/updated_at; defaults to the real clock
	Clock clock.Clock
	// Sequence allocates entity ids; defaults to redis INCR counters
	Sequence idgen.Sequence
	// MaxAttempts defaults to DefaultMaxAttempts
	MaxAttempts int
}

// Validate checks the config
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.MaxAttempts < 0 {
		return errors.InvalidArgument("max attempts cannot be negative")
	}
	return nil
}

type redisRepository struct {
	*reader

	client      redisclient.Client
	clock       clock.Clock
	seq         idgen.Sequence
	maxAttempts int
}

// NewRedis creates a redis-backed world store
func NewRedis(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	seq := cfg.Sequence
	if seq == nil {
		seq = idgen.NewRedisSequence(cfg.Client)
	}
	attempts := cfg.MaxAttempts
	if attempts == 0 {
		attempts = DefaultMaxAttempts
	}

	return &redisRepository{
		reader:      &reader{c: cfg.Client},
		client:      cfg.Client,
		clock:       clk,
		seq:         seq,
		maxAttempts: attempts,
	}, nil
}

func (r *redisRepository) Update(ctx context.Context, fn func(tx *Tx) error) error {
	if fn == nil {
		return errors.InvalidArgument("transaction function is required")
	}

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		var committed *Tx
		err := r.client.Watch(ctx, func(rtx *redis.Tx) error {
			tx := newTx(rtx, r.seq, r.clock.Now())
			if err := fn(tx); err != nil {
				return err
			}
			if err := tx.commit(ctx, rtx); err != nil {
				return err
			}
			committed = tx
			return nil
		})

		switch {
		case err == nil:
			for _, hook := range committed.afterCommit {
				hook(ctx)
			}
			return nil
		case errors.Is(err, redis.TxFailedErr):
			slog.DebugContext(ctx, "world transaction conflicted, retrying",
				"attempt", attempt)
			continue
		}

		var domainErr *errors.Error
		if errors.As(err, &domainErr) {
			return domainErr
		}
		return errors.Wrap(err, "world transaction failed")
	}

	slog.WarnContext(ctx, "world transaction exhausted retries",
		"attempts", r.maxAttempts)
	return errors.Abortedf("world transaction conflicted %d times", r.maxAttempts)
}
