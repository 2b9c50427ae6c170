package handlers

import (
	"context"
	"net/http"

	"github.com/onnwee/student-roster/internal/roster"
)

// Roster is the coordinator surface the HTTP layer drives.
type Roster interface {
	AddRecord(ctx context.Context, rec roster.Record) (roster.Record, error)
	ReadAll(ctx context.Context) ([]roster.Record, error)
	ReadAllWithDiagnostics(ctx context.Context) ([]roster.Record, roster.Diagnostics, error)
	ClearCache(ctx context.Context) roster.ClearResult
}

// StudentHandler serves the /student routes.
type StudentHandler struct {
	roster Roster
}

// NewStudentHandler creates a new student handler.
func NewStudentHandler(r Roster) *StudentHandler {
	return &StudentHandler{roster: r}
}

// Add enrols a student.
// POST /student/add
func (h *StudentHandler) Add(w http.ResponseWriter, r *http.Request) {
	rec, err := roster.DecodeRecord(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stored, err := h.roster.AddRecord(r.Context(), rec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// All lists every student in enrolment order.
// GET /student/all
func (h *StudentHandler) All(w http.ResponseWriter, r *http.Request) {
	recs, err := h.roster.ReadAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

type withCacheInfo struct {
	Data      []roster.Record  `json:"data"`
	CacheInfo roster.CacheInfo `json:"cache_info"`
}

// AllWithCacheInfo lists every student and reports how the read was served.
// GET /student/all/with-cache-info
func (h *StudentHandler) AllWithCacheInfo(w http.ResponseWriter, r *http.Request) {
	recs, diag, err := h.roster.ReadAllWithDiagnostics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withCacheInfo{Data: recs, CacheInfo: diag.Info()})
}
