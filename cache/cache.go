// Package cache implements the cache-aside user store on Redis. Single-user
// views live under `user:<id>` with a bounded TTL; paginated listings live
// under `users:*` and are flushed wholesale on any mutation, trading hit
// rate for invalidation simplicity.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	identity "github.com/goliatone/go-identity"
)

const (
	// UserKeyPrefix keys single-user entries.
	UserKeyPrefix = "user:"
	// ListKeyPrefix keys cached listing pages.
	ListKeyPrefix = "users:"
	// DefaultTTL bounds how stale a single-user entry can get.
	DefaultTTL = time.Hour

	// scanBatchSize is the COUNT hint for SCAN over the listing family.
	scanBatchSize = 100
)

// redisClient is the slice of go-redis used by the cache; *redis.Client
// satisfies it and tests can fake it.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// UserCache is the Redis-backed identity.UserCache.
type UserCache struct {
	rdb    redisClient
	ttl    time.Duration
	logger identity.Logger
}

var _ identity.UserCache = (*UserCache)(nil)

// Option configures a UserCache.
type Option func(*UserCache)

// WithTTL overrides the entry TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *UserCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the cache logger.
func WithLogger(logger identity.Logger) Option {
	return func(c *UserCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a UserCache over a go-redis client.
func New(rdb *redis.Client, opts ...Option) *UserCache {
	return newWithClient(rdb, opts...)
}

func newWithClient(rdb redisClient, opts ...Option) *UserCache {
	c := &UserCache{
		rdb:    rdb,
		ttl:    DefaultTTL,
		logger: identity.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the cached public view, or nil on a miss.
func (c *UserCache) Get(ctx context.Context, id uuid.UUID) (*identity.UserDTO, error) {
	data, err := c.rdb.Get(ctx, UserKeyPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "cache read failed")
	}

	dto := &identity.UserDTO{}
	if err := json.Unmarshal(data, dto); err != nil {
		// A corrupt entry behaves like a miss; the next Set repairs it.
		c.logger.Warn("cache: dropping corrupt entry for user %s: %v", id, err)
		return nil, nil
	}

	return dto, nil
}

// Set stores the public view under the single-user key with the entry TTL.
func (c *UserCache) Set(ctx context.Context, user *identity.UserDTO) error {
	if user == nil {
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "cache entry encode failed")
	}

	if err := c.rdb.Set(ctx, UserKeyPrefix+user.ID.String(), data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "cache write failed")
	}

	return nil
}

// Delete drops the single-user key. Deleting an absent key is a no-op,
// which keeps invalidation idempotent under overlapping deletes.
func (c *UserCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.rdb.Del(ctx, UserKeyPrefix+id.String()).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "cache delete failed")
	}

	return nil
}

// DeleteListings flushes the entire listing-key family. Any list is
// considered stale after any user mutation.
func (c *UserCache) DeleteListings(ctx context.Context) error {
	var cursor uint64
	var flushed int

	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, ListKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "listing cache scan failed")
		}

		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return errors.Wrap(err, errors.CategoryInternal, "listing cache delete failed")
			}
			flushed += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if flushed > 0 {
		c.logger.Debug("cache: flushed %d listing entries", flushed)
	}

	return nil
}
