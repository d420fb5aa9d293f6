package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client wraps redis.UniversalClient so the ledger can run against a single
// node in production and miniredis in tests.
type Client interface {
	redis.UniversalClient
}
