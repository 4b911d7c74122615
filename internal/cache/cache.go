// Package cache defines the ephemeral key value store contract used for
// short lived auth state: one time codes and the revoked token set.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrKeyNotFound = errors.New("cache: key not found")

type Cache interface {
	// Get value by key
	// Must return ErrKeyNotFound if key is absent or expired
	Get(ctx context.Context, key string) (string, error)

	// Set value with ttl. Zero ttl means no expiration
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes key. Deleting an absent key is not an error
	Del(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// Set membership operations, used for the revoked token set
	SAdd(ctx context.Context, set string, member string) error
	SIsMember(ctx context.Context, set string, member string) (bool, error)
}
