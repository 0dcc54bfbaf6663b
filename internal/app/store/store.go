/*
Package store defines the durable store boundary of the application.

The store is a key-value service with set and sorted-set primitives. It is the
single source of truth for user records, friend and friend-request sets, and
per-conversation message logs. Every mutation exposed here is idempotent under
re-application, which is what makes concurrent and retried writes safe for the
callers above.
*/
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the requested key does not exist.
// Callers must distinguish it from infrastructure failures, which surface
// as errs.ErrStoreUnavailable.
var ErrNotFound = errors.New("store: key not found")

// Store is the contract every durable store implementation satisfies.
//
// Get/Set operate on scalar values. SAdd/SRem/SIsMember/SMembers operate on
// unordered sets. ZAdd/ZRange operate on sorted sets ordered by ascending
// score; ZRange accepts negative indices counted from the tail, Redis style.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error

	SAdd(ctx context.Context, key, member string) error
	SRem(ctx context.Context, key, member string) error
	SIsMember(ctx context.Context, key, member string) (bool, error)
	SMembers(ctx context.Context, key string) ([]string, error)

	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}
