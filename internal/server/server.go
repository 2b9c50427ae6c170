// Package server assembles the roster service from configuration and runs
// its HTTP listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/onnwee/student-roster/internal/api"
	"github.com/onnwee/student-roster/internal/api/handlers"
	"github.com/onnwee/student-roster/internal/cache"
	"github.com/onnwee/student-roster/internal/circuitbreaker"
	"github.com/onnwee/student-roster/internal/config"
	"github.com/onnwee/student-roster/internal/logger"
	"github.com/onnwee/student-roster/internal/metrics"
	"github.com/onnwee/student-roster/internal/middleware"
	"github.com/onnwee/student-roster/internal/roster"
	"github.com/onnwee/student-roster/internal/secrets"
	"github.com/onnwee/student-roster/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

// Server owns the backends and the HTTP handler built from them.
type Server struct {
	cfg     *config.Config
	store   store.Store
	cache   *cache.Guard
	roster  *roster.Coordinator
	metrics *metrics.Aggregator
	limiter *middleware.RateLimiter
	handler http.Handler
}

// New connects the configured backends. A cache that cannot be reached is
// not an error: the guard degrades to durable-store reads until it returns.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cs, err := openCache(cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return assemble(cfg, st, cs), nil
}

func assemble(cfg *config.Config, st store.Store, cs cache.Store) *Server {
	backend := cfg.CacheBackend
	if cs == nil {
		backend = config.CacheNone
	}
	guard := cache.NewGuard(cs, cache.GuardOptions{
		Backend: backend,
		Timeout: cfg.AdapterTimeout,
		Breaker: circuitbreaker.New(circuitbreaker.Config{
			Name:             "cache",
			FailureThreshold: cfg.CacheBreakerFailures,
			SuccessThreshold: 1,
			Timeout:          cfg.CacheBreakerCooldown,
		}),
	})

	s := &Server{
		cfg:   cfg,
		store: st,
		cache: guard,
		roster: roster.NewCoordinator(st, guard, roster.Options{
			Key:     cfg.CacheKey,
			TTL:     cfg.CacheTTL,
			Timeout: cfg.AdapterTimeout,
		}),
		metrics: metrics.NewAggregator(cfg.MetricsServiceName, metrics.WithGatherers(prometheus.DefaultGatherer)),
	}
	if cfg.EnableRateLimit {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimitGlobal, cfg.RateLimitGlobalBurst, cfg.RateLimitPerIP, cfg.RateLimitPerIPBurst)
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		cors.AllowedOrigins = cfg.CORSAllowedOrigins
	}

	checks := []handlers.Check{{Name: "store", Critical: true, Ping: st.Ping}}
	if guard.Enabled() {
		checks = append(checks, handlers.Check{Name: "cache", Ping: guard.Ping})
	}

	s.handler = api.Handler(api.Deps{
		Roster:  s.roster,
		Cache:   guard,
		Metrics: s.metrics,
		Checks:  checks,
		Service: cfg.MetricsServiceName,
		Prefix:  cfg.URLPrefix,
		CORS:    cors,
		Limiter: s.limiter,
	})
	return s
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		logger.Warn("Using in-memory store; records are lost on restart")
		return store.NewMemory(), nil
	case config.StorePostgres:
		if err := secrets.ValidateRequired(map[string]string{"DATABASE_URL": cfg.DatabaseURL}); err != nil {
			return nil, err
		}
		logger.Info("Connecting to postgres", "dsn", secrets.MaskURL(cfg.DatabaseURL))
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

func openCache(cfg *config.Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		logger.Info("Using redis cache", "addr", cfg.RedisAddr, "password", secrets.Mask(cfg.RedisPassword))
		return cache.NewRedis(cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Timeout:  cfg.AdapterTimeout,
		}), nil
	case config.CacheMemory:
		lru, err := cache.NewLRU(cfg.CacheMaxMB, 1000, cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("create memory cache: %w", err)
		}
		return lru, nil
	case config.CacheNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Roster returns the coordinator.
func (s *Server) Roster() *roster.Coordinator { return s.roster }

// Run serves HTTP on cfg.HTTPAddr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", s.cfg.HTTPAddr, "prefix", s.cfg.URLPrefix,
			"store", s.cfg.StoreBackend, "cache", s.cache.Stats().Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the backends.
func (s *Server) Close() error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return errors.Join(s.cache.Close(), s.store.Close())
}
