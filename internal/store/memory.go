package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/onnwee/student-roster/internal/roster"
)

// Memory is a process-local durable store (STORE_BACKEND=memory). Records
// survive only as long as the process.
type Memory struct {
	mu   sync.RWMutex
	recs []roster.Record
	ids  map[string]struct{}
	err  error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{ids: make(map[string]struct{})}
}

// FailWith makes every call return err wrapped in ErrUnavailable; nil restores it.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *Memory) Insert(ctx context.Context, rec roster.Record) (roster.Record, error) {
	if err := ctx.Err(); err != nil {
		return roster.Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return roster.Record{}, fmt.Errorf("%w: %v", ErrUnavailable, m.err)
	}
	if _, dup := m.ids[rec.StudentID]; dup {
		return roster.Record{}, fmt.Errorf("%w: student_id %s", ErrConflict, rec.StudentID)
	}
	m.ids[rec.StudentID] = struct{}{}
	m.recs = append(m.recs, rec)
	return rec, nil
}

func (m *Memory) ListAll(ctx context.Context) ([]roster.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, m.err)
	}
	out := make([]roster.Record, len(m.recs))
	copy(out, m.recs)
	return out, nil
}

func (m *Memory) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, m.err)
	}
	return nil
}

func (m *Memory) Close() error { return nil }
