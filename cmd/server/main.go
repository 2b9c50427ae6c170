package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/onnwee/student-roster/internal/config"
	"github.com/onnwee/student-roster/internal/errorreporting"
	"github.com/onnwee/student-roster/internal/logger"
	"github.com/onnwee/student-roster/internal/server"
	"github.com/onnwee/student-roster/internal/tracing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using process environment")
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	logger.Info("Initializing roster API", "version", cfg.SentryRelease, "log_level", cfg.LogLevel)

	if err := errorreporting.Init(errorreporting.Options{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     cfg.SentryRelease,
	}); err != nil {
		logger.Warn("Failed to initialize error reporting", "error", err)
	} else if errorreporting.IsSentryEnabled() {
		logger.Info("Error reporting initialized", "environment", cfg.SentryEnvironment)
		defer errorreporting.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init(tracing.Options{
		Enabled:     cfg.OTELEnabled,
		ServiceName: "student-roster-api",
		Version:     cfg.SentryRelease,
		Endpoint:    cfg.OTELEndpoint,
		SampleRate:  cfg.OTELSampleRate,
	})
	if err != nil {
		logger.Warn("Failed to initialize tracing", "error", err)
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Error("Failed to shutdown tracer", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to start", "error", err)
		errorreporting.CaptureError(err)
		errorreporting.Flush(2 * time.Second)
		os.Exit(1)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Warn("Closing backends", "error", err)
		}
	}()

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server stopped", "error", err)
		errorreporting.CaptureError(err)
		return
	}
	logger.Info("Server stopped")
}
