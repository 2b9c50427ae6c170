package handlers

import (
	"net/http"

	"github.com/onnwee/student-roster/internal/cache"
)

// CacheStatser reports cache counters.
type CacheStatser interface {
	Stats() cache.Stats
}

// CacheAdminHandler handles cache administration endpoints.
type CacheAdminHandler struct {
	roster Roster
	stats  CacheStatser
}

// NewCacheAdminHandler creates a new cache admin handler. stats may be nil.
func NewCacheAdminHandler(r Roster, stats CacheStatser) *CacheAdminHandler {
	return &CacheAdminHandler{roster: r, stats: stats}
}

type clearResponse struct {
	Success        bool    `json:"success"`
	Cleared        bool    `json:"cleared"`
	CacheKey       string  `json:"cache_key"`
	ResponseTimeMS float64 `json:"response_time_ms"`
	Error          string  `json:"error,omitempty"`
}

// ClearCache drops the cached roster. An unreachable cache is reported in
// the body, not as a failed request.
// DELETE /student/cache/clear
func (h *CacheAdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	res := h.roster.ClearCache(r.Context())
	out := clearResponse{
		Success:        res.Success,
		Cleared:        res.Cleared,
		CacheKey:       res.Key,
		ResponseTimeMS: millis(res.Latency),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCacheStats returns counters observed by the cache guard.
// GET /student/cache/stats
func (h *CacheAdminHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	var s cache.Stats
	if h.stats != nil {
		s = h.stats.Stats()
	} else {
		s.Backend = "none"
	}
	writeJSON(w, http.StatusOK, s)
}
