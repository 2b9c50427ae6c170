package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/onnwee/student-roster/internal/circuitbreaker"
	"github.com/onnwee/student-roster/internal/logger"
	"github.com/onnwee/student-roster/internal/metrics"
	"github.com/onnwee/student-roster/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// GuardOptions configures a Guard.
type GuardOptions struct {
	// Backend names the underlying store in stats and logs.
	Backend string
	// Timeout bounds every call to the store. Defaults to 5s.
	Timeout time.Duration
	// Breaker, when set, short-circuits calls after repeated failures.
	Breaker *circuitbreaker.CircuitBreaker
	Logger  *slog.Logger
}

// Guard applies the degraded-mode policy uniformly to every cache call: each
// call gets its own timeout, failures are logged and counted, and results
// come back as optional values instead of errors. A nil store behaves like
// an always-empty cache.
type Guard struct {
	store   Store
	backend string
	timeout time.Duration
	breaker *circuitbreaker.CircuitBreaker
	log     *slog.Logger

	hits     atomic.Uint64
	misses   atomic.Uint64
	failures atomic.Uint64
	skipped  atomic.Uint64
}

// NewGuard wraps store. store may be nil to disable caching.
func NewGuard(store Store, opts GuardOptions) *Guard {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.WithComponent("cache")
	}
	if opts.Backend == "" {
		opts.Backend = "none"
		if store != nil {
			opts.Backend = "custom"
		}
	}
	return &Guard{
		store:   store,
		backend: opts.Backend,
		timeout: opts.Timeout,
		breaker: opts.Breaker,
		log:     opts.Logger,
	}
}

// Enabled reports whether a store is configured.
func (g *Guard) Enabled() bool { return g.store != nil }

// call runs fn against the store under the per-call timeout and, unless
// bypassBreaker is set, the breaker. A non-nil return has already been
// logged and counted.
func (g *Guard) call(ctx context.Context, op, key string, bypassBreaker bool, fn func(ctx context.Context) error) error {
	if g.store == nil {
		g.skipped.Add(1)
		metrics.CacheOperations.WithLabelValues(op, "skipped").Inc()
		return ErrDisabled
	}

	ctx, span := tracing.StartSpan(ctx, "cache."+op)
	span.SetAttributes(
		attribute.String("cache.backend", g.backend),
		attribute.String("cache.key", key),
	)
	defer span.End()

	run := func() error {
		cctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return fn(cctx)
	}

	start := time.Now()
	var err error
	if g.breaker != nil && !bypassBreaker {
		err = g.breaker.Call(run)
	} else {
		err = run()
	}
	metrics.CacheOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err == nil {
		return nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		g.skipped.Add(1)
		metrics.CacheOperations.WithLabelValues(op, "skipped").Inc()
		g.log.DebugContext(ctx, "cache call skipped, breaker open", "op", op, "key", key)
	} else {
		g.failures.Add(1)
		metrics.CacheOperations.WithLabelValues(op, "error").Inc()
		g.log.WarnContext(ctx, "cache call failed, continuing without cache",
			"op", op, "key", key, "backend", g.backend, "error", err)
	}
	return fmt.Errorf("cache %s %q: %w", op, key, err)
}

// Get returns the cached value and true on a hit. Failures read as a miss.
func (g *Guard) Get(ctx context.Context, key string) ([]byte, bool) {
	var (
		data  []byte
		found bool
	)
	err := g.call(ctx, "get", key, false, func(ctx context.Context) error {
		b, err := g.store.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		data, found = b, true
		return nil
	})
	if err != nil {
		return nil, false
	}
	if found {
		g.hits.Add(1)
		metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	} else {
		g.misses.Add(1)
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
	}
	return data, found
}

// Set stores value and reports whether the store accepted it.
func (g *Guard) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	err := g.call(ctx, "set", key, false, func(ctx context.Context) error {
		return g.store.Set(ctx, key, value, ttl)
	})
	if err != nil {
		return false
	}
	metrics.CacheOperations.WithLabelValues("set", "ok").Inc()
	return true
}

// Delete removes key. It is always sent to the store, even with the breaker
// open, so an invalidation is never dropped while the store is reachable.
// The error is informational only: it has been logged and callers must not
// fail their own operation because of it.
func (g *Guard) Delete(ctx context.Context, key string) (int64, error) {
	var removed int64
	err := g.call(ctx, "delete", key, true, func(ctx context.Context) error {
		n, err := g.store.Delete(ctx, key)
		removed = n
		return err
	})
	if err != nil {
		return 0, err
	}
	metrics.CacheOperations.WithLabelValues("delete", "ok").Inc()
	return removed, nil
}

// TTL returns the remaining life of key; ok is false when the store could
// not be asked. A negative duration means missing or no expiry.
func (g *Guard) TTL(ctx context.Context, key string) (time.Duration, bool) {
	var ttl time.Duration
	err := g.call(ctx, "ttl", key, false, func(ctx context.Context) error {
		d, err := g.store.TTL(ctx, key)
		ttl = d
		return err
	})
	if err != nil {
		return 0, false
	}
	metrics.CacheOperations.WithLabelValues("ttl", "ok").Inc()
	return ttl, true
}

// Ping checks the store for readiness reporting. It bypasses the breaker so
// a probe reflects the store's actual state.
func (g *Guard) Ping(ctx context.Context) error {
	if g.store == nil {
		return ErrDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.store.Ping(ctx)
}

// Stats returns counters observed by this guard.
func (g *Guard) Stats() Stats {
	s := Stats{
		Backend:  g.backend,
		Hits:     g.hits.Load(),
		Misses:   g.misses.Load(),
		Failures: g.failures.Load(),
		Skipped:  g.skipped.Load(),
	}
	if g.breaker != nil {
		s.Breaker = g.breaker.State().String()
	}
	return s
}

// Close closes the underlying store.
func (g *Guard) Close() error {
	if g.store == nil {
		return nil
	}
	return g.store.Close()
}
