package ledger

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/rpg-statblocks/internal/redis"
)

const (
	ledgerKeyPrefix = "statblocks:ledger:"

	// DefaultTTL bounds how long an entry survives without being rewritten.
	DefaultTTL = 30 * 24 * time.Hour
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	ttl    time.Duration
}

// RedisConfig contains configuration for the Redis ledger repository.
type RedisConfig struct {
	Client redisclient.Client
	// Clock stamps UpdatedAt when the entry has none. Defaults to the
	// system clock.
	Clock clock.Clock
	// TTL defaults to DefaultTTL. A negative TTL keeps entries forever.
	TTL time.Duration
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed ledger repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	repo := &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
		ttl:    cfg.TTL,
	}
	if repo.clock == nil {
		repo.clock = clock.New()
	}
	switch {
	case repo.ttl == 0:
		repo.ttl = DefaultTTL
	case repo.ttl < 0:
		repo.ttl = 0
	}
	return repo, nil
}

func ledgerKey(category, name string) string {
	return ledgerKeyPrefix + category + ":" + name
}

func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateKey(input.Category, input.Name); err != nil {
		return nil, err
	}

	result, err := r.client.Get(ctx, ledgerKey(input.Category, input.Name)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("no ledger entry for %s %s", input.Category, input.Name)
		}
		return nil, errors.Wrapf(err, "failed to get ledger entry for %s", input.Name)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(result), &entry); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal ledger entry")
	}

	return &GetOutput{Entry: &entry}, nil
}

func (r *redisRepository) Put(ctx context.Context, input *PutInput) (*PutOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateEntry(input.Entry); err != nil {
		return nil, err
	}

	entry := *input.Entry
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = r.clock.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal ledger entry")
	}

	if err := r.client.Set(ctx, ledgerKey(entry.Category, entry.Name), data, r.ttl).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to put ledger entry for %s", entry.Name)
	}

	return &PutOutput{Entry: &entry}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateKey(input.Category, input.Name); err != nil {
		return nil, err
	}

	deleted, err := r.client.Del(ctx, ledgerKey(input.Category, input.Name)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete ledger entry for %s", input.Name)
	}
	if deleted == 0 {
		return nil, errors.NotFoundf("no ledger entry for %s %s", input.Category, input.Name)
	}

	return &DeleteOutput{}, nil
}
