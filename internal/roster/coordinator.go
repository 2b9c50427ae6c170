package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/onnwee/student-roster/internal/errorreporting"
	"github.com/onnwee/student-roster/internal/logger"
	"github.com/onnwee/student-roster/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DurableStore is the authoritative record store.
type DurableStore interface {
	// Insert persists rec and returns it as stored.
	Insert(ctx context.Context, rec Record) (Record, error)
	// ListAll returns every record in insertion order.
	ListAll(ctx context.Context) ([]Record, error)
}

// Cache is the degraded-mode view of a cache store: failures have already
// been absorbed and come back as misses or false.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
	Delete(ctx context.Context, key string) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, bool)
}

// Options configures a Coordinator. Zero values take the defaults noted.
type Options struct {
	Key     string        // cache key of the collection; "students:all"
	TTL     time.Duration // fixed cache window; 120s
	Timeout time.Duration // per durable store call; 5s
	Now     func() time.Time
	Logger  *slog.Logger
}

// Coordinator serves the roster cache-aside: reads go through the cache,
// writes go to the durable store and then invalidate the cached collection.
// It holds no locks; concurrent reads may race to repopulate the cache and
// the last write wins.
type Coordinator struct {
	store   DurableStore
	cache   Cache
	key     string
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	log     *slog.Logger
}

// NewCoordinator creates a Coordinator over store and cache.
func NewCoordinator(store DurableStore, cache Cache, opts Options) *Coordinator {
	if opts.Key == "" {
		opts.Key = "students:all"
	}
	if opts.TTL <= 0 {
		opts.TTL = 120 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.WithComponent("roster")
	}
	return &Coordinator{
		store:   store,
		cache:   cache,
		key:     opts.Key,
		ttl:     opts.TTL,
		timeout: opts.Timeout,
		now:     opts.Now,
		log:     opts.Logger,
	}
}

// Key returns the cache key the collection is stored under.
func (c *Coordinator) Key() string { return c.key }

// Window returns the fixed cache TTL.
func (c *Coordinator) Window() time.Duration { return c.ttl }

// AddRecord validates rec, writes it to the durable store and invalidates the
// cached collection. A failed invalidation is logged and does not fail the
// write.
func (c *Coordinator) AddRecord(ctx context.Context, rec Record) (Record, error) {
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}

	ctx, span := tracing.StartSpan(ctx, "roster.add",
		trace.WithAttributes(attribute.String("student.id", rec.StudentID)))
	defer span.End()

	var stored Record
	err := c.durable(ctx, "insert", func(ctx context.Context) error {
		var err error
		stored, err = c.store.Insert(ctx, rec)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return Record{}, fmt.Errorf("add student %s: %w", rec.StudentID, err)
	}

	if _, err := c.cache.Delete(ctx, c.key); err != nil {
		span.AddEvent("cache invalidation skipped")
	}
	return stored, nil
}

// ReadAll returns the collection, from the cache when a valid entry exists.
func (c *Coordinator) ReadAll(ctx context.Context) ([]Record, error) {
	recs, _, err := c.read(ctx)
	return recs, err
}

// ReadAllWithDiagnostics is ReadAll plus a description of how the read was
// served.
func (c *Coordinator) ReadAllWithDiagnostics(ctx context.Context) ([]Record, Diagnostics, error) {
	return c.read(ctx)
}

func (c *Coordinator) read(ctx context.Context) ([]Record, Diagnostics, error) {
	start := c.now()
	ctx, span := tracing.StartSpan(ctx, "roster.read")
	defer span.End()

	if recs, ok := c.fromCache(ctx); ok {
		ttl, ok := c.cache.TTL(ctx, c.key)
		if !ok {
			ttl = -1
		}
		span.SetAttributes(attribute.String("cache.status", string(StatusHit)))
		return recs, Diagnostics{
			Status:       StatusHit,
			Source:       SourceCache,
			TTLRemaining: ttl,
			Window:       c.ttl,
			Latency:      c.now().Sub(start),
		}, nil
	}
	span.SetAttributes(attribute.String("cache.status", string(StatusMiss)))

	var recs []Record
	err := c.durable(ctx, "list", func(ctx context.Context) error {
		var err error
		recs, err = c.store.ListAll(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, Diagnostics{}, fmt.Errorf("list students: %w", err)
	}
	if recs == nil {
		recs = []Record{}
	}

	if payload, err := json.Marshal(recs); err == nil {
		c.cache.Set(ctx, c.key, payload, c.ttl)
	}

	return recs, Diagnostics{
		Status:       StatusMiss,
		Source:       SourceDurableStore,
		TTLRemaining: c.ttl,
		Window:       c.ttl,
		Latency:      c.now().Sub(start),
	}, nil
}

// fromCache returns the cached snapshot. A payload that does not decode is
// treated as a miss and will be overwritten by the repopulating read.
func (c *Coordinator) fromCache(ctx context.Context) ([]Record, bool) {
	data, found := c.cache.Get(ctx, c.key)
	if !found {
		return nil, false
	}
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil || recs == nil {
		c.log.WarnContext(ctx, "discarding corrupt cache entry", "key", c.key, "bytes", len(data), "error", err)
		return nil, false
	}
	return recs, true
}

// ClearResult reports the outcome of ClearCache. Success is always true; Err
// carries the cache store's failure, if any, for display.
type ClearResult struct {
	Success bool
	Cleared bool
	Key     string
	Latency time.Duration
	Err     error
}

// ClearCache removes the cached collection. Cleared is true only if an entry
// was actually removed.
func (c *Coordinator) ClearCache(ctx context.Context) ClearResult {
	start := c.now()
	n, err := c.cache.Delete(ctx, c.key)
	res := ClearResult{
		Success: true,
		Cleared: err == nil && n > 0,
		Key:     c.key,
		Err:     err,
	}
	res.Latency = c.now().Sub(start)
	c.log.InfoContext(ctx, "cache cleared", "key", c.key, "cleared", res.Cleared)
	return res
}

// CacheTTL returns the remaining life of the cached collection; ok is false
// when the cache store could not be asked.
func (c *Coordinator) CacheTTL(ctx context.Context) (time.Duration, bool) {
	return c.cache.TTL(ctx, c.key)
}

// durable runs fn against the durable store under the per-call timeout and
// reports unexpected failures.
func (c *Coordinator) durable(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := fn(ctx)
	if err == nil || IsValidationError(err) || errors.Is(err, context.Canceled) {
		return err
	}
	c.log.ErrorContext(ctx, "durable store call failed", "op", op, "error", err)
	if !errors.Is(err, ErrDuplicate) {
		errorreporting.CaptureErrorWithContext(err, map[string]string{"operation": op}, nil)
	}
	return err
}

// ErrDuplicate is wrapped by durable store errors for an already enrolled
// student_id.
var ErrDuplicate = errors.New("student already exists")
