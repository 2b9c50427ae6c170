// Package store holds the durable roster store adapters: Postgres for
// deployments and an in-memory store for development and tests.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/onnwee/student-roster/internal/roster"
)

var (
	// ErrConflict is returned when a student_id is already enrolled. It
	// wraps roster.ErrDuplicate.
	ErrConflict = fmt.Errorf("store: conflict: %w", roster.ErrDuplicate)

	// ErrUnavailable wraps every other durable store failure.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is a roster.DurableStore that can also be health-checked and closed.
type Store interface {
	roster.DurableStore
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*Memory)(nil)
)
