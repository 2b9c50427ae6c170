package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/onnwee/student-roster/internal/metrics"
)

// HitRecorder counts requests per route and method.
type HitRecorder interface {
	RecordHit(route, method string)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// RequestMetrics counts every matched request under its mux path template,
// with prefix removed, and observes its latency. Requests whose template
// satisfies skip are served but not counted. It must be installed with
// Router.Use so the matched route is available.
func RequestMetrics(rec HitRecorder, prefix string, skip func(template string) bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := mux.CurrentRoute(r)
			if route == nil {
				next.ServeHTTP(w, r)
				return
			}
			tmpl, err := route.GetPathTemplate()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			tmpl = strings.TrimPrefix(tmpl, prefix)
			if tmpl == "" {
				tmpl = "/"
			}
			if skip != nil && skip(tmpl) {
				next.ServeHTTP(w, r)
				return
			}

			rec.RecordHit(tmpl, r.Method)

			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(sr, r)
			if sr.status == 0 {
				sr.status = http.StatusOK
			}
			metrics.APIRequestDuration.
				WithLabelValues(tmpl, r.Method, strconv.Itoa(sr.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}

// SkipOperational excludes health probes and the metrics endpoint itself.
func SkipOperational(template string) bool {
	return template == "/metrics" || template == "/health" || strings.HasPrefix(template, "/health/")
}
