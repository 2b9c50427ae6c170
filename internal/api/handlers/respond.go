package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/onnwee/student-roster/internal/apierr"
	"github.com/onnwee/student-roster/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierr.FromError(err)
	if apiErr.Status() >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	apierr.WriteErrorWithContext(w, r, apiErr)
}

// millis reports d in milliseconds rounded to two decimals.
func millis(d time.Duration) float64 {
	return math.Round(float64(d)/float64(time.Millisecond)*100) / 100
}
