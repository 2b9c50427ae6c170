package cache

import (
	"context"
	"sync"
	"time"
)

// MockCache is an in-memory Store for tests. It honours TTLs against an
// injectable clock and can be told to fail every call.
type MockCache struct {
	mu    sync.Mutex
	data  map[string]mockEntry
	now   func() time.Time
	err   error
	calls map[string]int
}

type mockEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

var _ Store = (*MockCache)(nil)

// NewMockCache creates a new mock cache for testing.
func NewMockCache() *MockCache {
	return &MockCache{
		data:  make(map[string]mockEntry),
		now:   time.Now,
		calls: make(map[string]int),
	}
}

// WithClock sets the clock used for expiry and TTL arithmetic.
func (m *MockCache) WithClock(now func() time.Time) *MockCache {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
	return m
}

// FailWith makes every subsequent call return err; nil restores normal behaviour.
func (m *MockCache) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Calls reports how many times op ("get", "set", "delete", "ttl", "ping") was invoked.
func (m *MockCache) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Put stores a raw value without TTL bookkeeping, e.g. to plant a corrupt payload.
func (m *MockCache) Put(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := mockEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.data[key] = e
}

// enter records the call and returns the injected error, if any. mu must be held.
func (m *MockCache) enter(op string) error {
	m.calls[op]++
	return m.err
}

// live returns the unexpired entry for key. mu must be held.
func (m *MockCache) live(key string) (mockEntry, bool) {
	e, ok := m.data[key]
	if !ok {
		return mockEntry{}, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.data, key)
		return mockEntry{}, false
	}
	return e, true
}

func (m *MockCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("get"); err != nil {
		return nil, err
	}
	e, ok := m.live(key)
	if !ok {
		return nil, ErrNotFound
	}
	return e.value, nil
}

func (m *MockCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("set"); err != nil {
		return err
	}
	e := mockEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.data[key] = e
	return nil
}

func (m *MockCache) Delete(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("delete"); err != nil {
		return 0, err
	}
	if _, ok := m.live(key); !ok {
		return 0, nil
	}
	delete(m.data, key)
	return 1, nil
}

func (m *MockCache) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ttl"); err != nil {
		return 0, err
	}
	e, ok := m.live(key)
	if !ok {
		return TTLMissing, nil
	}
	if e.expiresAt.IsZero() {
		return TTLNoExpiry, nil
	}
	return e.expiresAt.Sub(m.now()), nil
}

func (m *MockCache) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enter("ping")
}

func (m *MockCache) Close() error { return nil }
