package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client wraps redis.UniversalClient so repositories can be handed either a
// real client or one pointed at miniredis
type Client interface {
	redis.UniversalClient
}
