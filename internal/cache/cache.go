// Package cache provides the cache store adapters used to accelerate roster
// reads (Redis, in-process ristretto, and an in-memory mock for tests) plus
// Guard, the degraded-mode wrapper through which every cache call is made.
//
// A cache store is never authoritative. Adapters report failures as errors;
// Guard turns those errors into misses and no-ops so callers never see them.
package cache

import (
	"context"
	"errors"
	"time"
)

// Store is a key/value store with per-key TTL.
type Store interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, expiring after ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key and reports how many keys were removed (0 or 1).
	Delete(ctx context.Context, key string) (int64, error)

	// TTL returns the remaining life of key. A negative duration means the
	// key is missing or has no expiry.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}

var (
	// ErrNotFound is returned by Store.Get for absent or expired keys.
	ErrNotFound = errors.New("cache: key not found")

	// ErrDisabled is reported by Guard when no store is configured.
	ErrDisabled = errors.New("cache: disabled")
)

// Remaining-life sentinels, matching Redis PTTL semantics.
const (
	TTLMissing  time.Duration = -2
	TTLNoExpiry time.Duration = -1
)

// Stats represents cache statistics as observed by a Guard.
type Stats struct {
	Backend  string `json:"backend"`
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Failures uint64 `json:"failures"`
	Skipped  uint64 `json:"skipped"`
	Breaker  string `json:"breaker,omitempty"`
}
