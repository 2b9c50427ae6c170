package handlers

import (
	"net/http"

	"github.com/onnwee/student-roster/internal/logger"
)

// MetricsRenderer renders the text exposition.
type MetricsRenderer interface {
	Render() (string, error)
}

// Metrics serves the request counters in Prometheus text format.
// GET /metrics
func Metrics(m MetricsRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := m.Render()
		if err != nil {
			logger.ErrorContext(r.Context(), "render metrics", "error", err)
			http.Error(w, "failed to render metrics", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}
