package handlers

import (
	"context"
	"net/http"
	"time"
)

// Health returns a simple JSON payload to indicate the API is alive.
// GET /health
func Health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"service":   service,
			"timestamp": float64(now.UnixNano()) / 1e9,
		})
	}
}

// Check is a readiness probe against one dependency. A failing Critical
// check makes the service not ready; others are only reported.
type Check struct {
	Name     string
	Critical bool
	Ping     func(ctx context.Context) error
}

// Ready runs every check under timeout.
// GET /health/ready
func Ready(timeout time.Duration, checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		ready := true
		results := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.Ping(ctx); err != nil {
				results[c.Name] = "error: " + err.Error()
				if c.Critical {
					ready = false
				}
				continue
			}
			results[c.Name] = "ok"
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]any{"status": status, "checks": results})
	}
}
