package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLRUCache_SetAndGet(t *testing.T) {
	c, err := NewLRU(10, 100, 60*time.Second)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "test-key", []byte("test-value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "test-key")
	if err != nil {
		t.Fatalf("expected to find cached value: %v", err)
	}
	if string(got) != "test-value" {
		t.Errorf("expected test-value, got %s", got)
	}
}

func TestLRUCache_GetNonExistent(t *testing.T) {
	c, err := NewLRU(10, 100, 60*time.Second)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	defer c.Close()

	if _, err := c.Get(context.Background(), "nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLRUCache_TTLAndExpiration(t *testing.T) {
	c, err := NewLRU(10, 100, 60*time.Second)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), 120*time.Second)
	if ttl, _ := c.TTL(ctx, "k"); ttl != 120*time.Second {
		t.Errorf("expected 120s remaining, got %v", ttl)
	}

	now = now.Add(45 * time.Second)
	if ttl, _ := c.TTL(ctx, "k"); ttl != 75*time.Second {
		t.Errorf("expected 75s remaining, got %v", ttl)
	}

	now = now.Add(75 * time.Second)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected value to be expired, got %v", err)
	}
	if ttl, _ := c.TTL(ctx, "k"); ttl != TTLMissing {
		t.Errorf("expected TTLMissing, got %v", ttl)
	}
}

func TestLRUCache_DeleteReportsRemoval(t *testing.T) {
	c, err := NewLRU(10, 100, 60*time.Second)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 0)
	if n, _ := c.Delete(ctx, "k"); n != 1 {
		t.Errorf("expected 1 removed, got %d", n)
	}
	if n, _ := c.Delete(ctx, "k"); n != 0 {
		t.Errorf("expected 0 removed on second delete, got %d", n)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected value to be deleted, got %v", err)
	}
}
