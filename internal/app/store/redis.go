package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
)

const (
	// readRetryBackoff is the pause before the single retry of a failed read.
	readRetryBackoff = 100 * time.Millisecond

	// dialTimeout bounds the initial connection attempt to the Redis server.
	dialTimeout = 5 * time.Second

	// opTimeout bounds individual read/write calls.
	opTimeout = 2 * time.Second
)

// RedisStore implements Store on top of a Redis server via go-redis.
//
// Read-only operations are retried once with a short backoff before a
// transient failure is surfaced; writes are not retried here because every
// caller-side mutation is idempotent and safe to re-issue at its own pace.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the given Redis address and verifies the
// connection with a ping before returning.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  dialTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Client exposes the underlying go-redis client for the pub/sub relay,
// which shares this connection configuration.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Get returns the scalar value at key, or ErrNotFound if the key is absent.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		val, err = s.retryGet(ctx, key)
	}
	return val, err
}

func (s *RedisStore) retryGet(ctx context.Context, key string) (string, error) {
	time.Sleep(readRetryBackoff)

	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", unavailable(err)
	}
	return val, nil
}

// Set stores the scalar value at key.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// SAdd adds member to the set at key. Re-adding an existing member is a no-op.
func (s *RedisStore) SAdd(ctx context.Context, key, member string) error {
	if err := s.client.SAdd(ctx, key, member).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// SRem removes member from the set at key. Removing an absent member is a no-op.
func (s *RedisStore) SRem(ctx context.Context, key, member string) error {
	if err := s.client.SRem(ctx, key, member).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// SIsMember reports whether member belongs to the set at key.
func (s *RedisStore) SIsMember(ctx context.Context, key, member string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, key, member).Result()
	if err != nil {
		time.Sleep(readRetryBackoff)
		ok, err = s.client.SIsMember(ctx, key, member).Result()
	}
	if err != nil {
		return false, unavailable(err)
	}
	return ok, nil
}

// SMembers returns all members of the set at key. An absent key yields an
// empty slice, not an error.
func (s *RedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		time.Sleep(readRetryBackoff)
		members, err = s.client.SMembers(ctx, key).Result()
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return members, nil
}

// ZAdd inserts member into the sorted set at key with the given score.
// Re-adding an identical member updates its score, which for identical
// scores is a no-op.
func (s *RedisStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	z := redis.Z{Score: score, Member: member}
	if err := s.client.ZAdd(ctx, key, z).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// ZRange returns the members of the sorted set at key between the start and
// stop positions in ascending-score order. An absent key yields an empty
// slice, not an error.
func (s *RedisStore) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	members, err := s.client.ZRange(ctx, key, start, stop).Result()
	if err != nil {
		time.Sleep(readRetryBackoff)
		members, err = s.client.ZRange(ctx, key, start, stop).Result()
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return members, nil
}

// unavailable maps a transport-level failure to the StoreUnavailable error code.
func unavailable(err error) error {
	logx.Error(err, "Durable store call failed")
	return errs.NewError(errs.ErrStoreUnavailable)
}
