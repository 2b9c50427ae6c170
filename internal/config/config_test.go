package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"HTTP_ADDR", "URL_PREFIX", "STORE_BACKEND", "CACHE_BACKEND", "CACHE_KEY",
		"CACHE_TTL_SECONDS", "ADAPTER_TIMEOUT_MS", "LOG_LEVEL", "SENTRY_ENVIRONMENT", "ENV",
	} {
		t.Setenv(k, "")
	}
	ResetForTest()
	defer ResetForTest()

	cfg := Load()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.CacheKey != "students:all" {
		t.Fatalf("expected default cache key, got %q", cfg.CacheKey)
	}
	if cfg.CacheTTL != 120*time.Second {
		t.Fatalf("expected default TTL 120s, got %v", cfg.CacheTTL)
	}
	if cfg.AdapterTimeout != 5*time.Second {
		t.Fatalf("expected default adapter timeout 5s, got %v", cfg.AdapterTimeout)
	}
	if cfg.StoreBackend != StorePostgres || cfg.CacheBackend != CacheRedis {
		t.Fatalf("unexpected backends: store=%s cache=%s", cfg.StoreBackend, cfg.CacheBackend)
	}
	if cfg.URLPrefix != "" {
		t.Fatalf("expected no prefix, got %q", cfg.URLPrefix)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected info log level, got %q", cfg.LogLevel)
	}
	if cfg.SentryEnvironment != "development" {
		t.Fatalf("expected development sentry env, got %q", cfg.SentryEnvironment)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CACHE_TTL_SECONDS", "30")
	t.Setenv("ADAPTER_TIMEOUT_MS", "750")
	t.Setenv("CACHE_BACKEND", "MEMORY")
	t.Setenv("URL_PREFIX", "app/")
	t.Setenv("CACHE_BREAKER_FAILURES", "0")
	ResetForTest()
	defer ResetForTest()

	cfg := Load()
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("expected TTL 30s, got %v", cfg.CacheTTL)
	}
	if cfg.AdapterTimeout != 750*time.Millisecond {
		t.Errorf("expected 750ms timeout, got %v", cfg.AdapterTimeout)
	}
	if cfg.CacheBackend != CacheMemory {
		t.Errorf("expected memory cache backend, got %q", cfg.CacheBackend)
	}
	if cfg.URLPrefix != "/app" {
		t.Errorf("expected /app prefix, got %q", cfg.URLPrefix)
	}
	if cfg.CacheBreakerFailures != 1 {
		t.Errorf("expected breaker failures clamped to 1, got %d", cfg.CacheBreakerFailures)
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := map[string]string{
		"":       "",
		"/":      "",
		"app":    "/app",
		"/app/":  "/app",
		" /a/b ": "/a/b",
	}
	for in, want := range tests {
		if got := normalizePrefix(in); got != want {
			t.Errorf("normalizePrefix(%q) = %q, want %q", in, got, want)
		}
	}
}
