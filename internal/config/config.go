package config

import (
	"os"
	"strings"
	"time"

	"github.com/onnwee/student-roster/internal/utils"
)

// Backends accepted by STORE_BACKEND and CACHE_BACKEND.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	HTTPAddr  string
	URLPrefix string // optional mount point, e.g. "/app" behind a reverse proxy
	// Durable store
	StoreBackend string
	DatabaseURL  string
	// Cache store
	CacheBackend         string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	CacheKey             string
	CacheTTL             time.Duration
	CacheMaxMB           int64
	AdapterTimeout       time.Duration // per outbound call to either adapter
	CacheBreakerFailures int
	CacheBreakerCooldown time.Duration
	// Metrics
	MetricsServiceName string
	// Security settings
	RateLimitGlobal      float64  // requests per second globally
	RateLimitGlobalBurst int      // burst size for global rate limit
	RateLimitPerIP       float64  // requests per second per IP
	RateLimitPerIPBurst  int      // burst size for per-IP rate limit
	CORSAllowedOrigins   []string // allowed CORS origins
	EnableRateLimit      bool
	// Observability settings
	LogLevel          string
	OTELEnabled       bool
	OTELEndpoint      string
	OTELSampleRate    float64
	SentryDSN         string
	SentryEnvironment string
	SentryRelease     string
}

var cached *Config

// Load reads env vars once and caches them.
func Load() *Config {
	if cached != nil {
		return cached
	}
	cached = &Config{
		HTTPAddr:     utils.GetEnv("HTTP_ADDR", ":8080"),
		URLPrefix:    normalizePrefix(os.Getenv("URL_PREFIX")),
		StoreBackend: strings.ToLower(utils.GetEnv("STORE_BACKEND", StorePostgres)),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),

		CacheBackend:         strings.ToLower(utils.GetEnv("CACHE_BACKEND", CacheRedis)),
		RedisAddr:            utils.GetEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              utils.GetEnvAsInt("REDIS_DB", 0),
		CacheKey:             utils.GetEnv("CACHE_KEY", "students:all"),
		CacheTTL:             utils.GetEnvAsDuration("CACHE_TTL_SECONDS", time.Second, 120*time.Second),
		CacheMaxMB:           int64(utils.GetEnvAsInt("CACHE_MAX_MB", 16)),
		AdapterTimeout:       utils.GetEnvAsDuration("ADAPTER_TIMEOUT_MS", time.Millisecond, 5*time.Second),
		CacheBreakerFailures: utils.GetEnvAsInt("CACHE_BREAKER_FAILURES", 5),
		CacheBreakerCooldown: utils.GetEnvAsDuration("CACHE_BREAKER_COOLDOWN_MS", time.Millisecond, 30*time.Second),

		MetricsServiceName: utils.GetEnv("METRICS_SERVICE_NAME", "api"),

		RateLimitGlobal:      utils.GetEnvAsFloat("RATE_LIMIT_GLOBAL", 100.0),
		RateLimitGlobalBurst: utils.GetEnvAsInt("RATE_LIMIT_GLOBAL_BURST", 200),
		RateLimitPerIP:       utils.GetEnvAsFloat("RATE_LIMIT_PER_IP", 10.0),
		RateLimitPerIPBurst:  utils.GetEnvAsInt("RATE_LIMIT_PER_IP_BURST", 20),
		EnableRateLimit:      utils.GetEnvAsBool("ENABLE_RATE_LIMIT", true),
		CORSAllowedOrigins:   utils.GetEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5000", "http://localhost:3000"}, ","),

		LogLevel:          strings.ToLower(utils.GetEnv("LOG_LEVEL", "info")),
		OTELEnabled:       utils.GetEnvAsBool("OTEL_ENABLED", false),
		OTELEndpoint:      strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTELSampleRate:    utils.GetEnvAsFloat("OTEL_TRACE_SAMPLE_RATE", 0.1),
		SentryDSN:         strings.TrimSpace(os.Getenv("SENTRY_DSN")),
		SentryEnvironment: strings.TrimSpace(os.Getenv("SENTRY_ENVIRONMENT")),
		SentryRelease:     strings.TrimSpace(os.Getenv("SENTRY_RELEASE")),
	}
	if cached.SentryEnvironment == "" {
		cached.SentryEnvironment = utils.GetEnv("ENV", "development")
	}
	if cached.CacheBreakerFailures < 1 {
		cached.CacheBreakerFailures = 1
	}
	return cached
}

// ResetForTest clears cached config; for use in tests only.
func ResetForTest() { cached = nil }

// normalizePrefix turns "app/", "/app" and "/app/" into "/app"; "/" and "" disable the prefix.
func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
