package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/onnwee/student-roster/internal/metrics"
)

type hitKey struct{ route, method string }

type fakeRecorder struct {
	mu   sync.Mutex
	hits map[hitKey]int
}

func (f *fakeRecorder) RecordHit(route, method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hits == nil {
		f.hits = make(map[hitKey]int)
	}
	f.hits[hitKey{route, method}]++
}

func newMetricsRouter(rec HitRecorder, prefix string) *mux.Router {
	root := mux.NewRouter()
	r := root
	if prefix != "" {
		r = root.PathPrefix(prefix).Subrouter()
	}
	r.Use(RequestMetrics(rec, prefix, SkipOperational))
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	r.HandleFunc("/student/add", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}).Methods(http.MethodPost)
	r.HandleFunc("/student/all", ok).Methods(http.MethodGet)
	r.HandleFunc("/health", ok)
	r.HandleFunc("/metrics", ok)
	return root
}

func TestRequestMetrics_CountsByTemplate(t *testing.T) {
	for _, prefix := range []string{"", "/app"} {
		t.Run("prefix="+prefix, func(t *testing.T) {
			rec := &fakeRecorder{}
			router := newMetricsRouter(rec, prefix)

			send := func(method, path string) {
				router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, prefix+path, nil))
			}
			send("GET", "/student/all")
			send("GET", "/student/all")
			send("POST", "/student/add")
			send("GET", "/health")
			send("GET", "/metrics")
			send("GET", "/unknown")

			want := map[hitKey]int{
				{"/student/all", "GET"}:  2,
				{"/student/add", "POST"}: 1,
			}
			if len(rec.hits) != len(want) {
				t.Errorf("unexpected hit table: %v", rec.hits)
			}
			for k, n := range want {
				if rec.hits[k] != n {
					t.Errorf("%v: got %d, want %d", k, rec.hits[k], n)
				}
			}
		})
	}
}

func sampleCount(t *testing.T, labels ...string) uint64 {
	t.Helper()
	obs, err := metrics.APIRequestDuration.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatal(err)
	}
	var m dto.Metric
	if err := obs.(prometheus.Metric).Write(&m); err != nil {
		t.Fatal(err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRequestMetrics_ObservesStatus(t *testing.T) {
	router := newMetricsRouter(&fakeRecorder{}, "")
	before := sampleCount(t, "/student/add", "POST", "400")

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/student/add", nil))

	if got := sampleCount(t, "/student/add", "POST", "400"); got != before+1 {
		t.Errorf("expected one more observation for status 400, got %d -> %d", before, got)
	}
}

func TestSkipOperational(t *testing.T) {
	tests := map[string]bool{
		"/metrics":      true,
		"/health":       true,
		"/health/ready": true,
		"/healthz":      false,
		"/student/all":  false,
	}
	for tmpl, want := range tests {
		if got := SkipOperational(tmpl); got != want {
			t.Errorf("SkipOperational(%q) = %v, want %v", tmpl, got, want)
		}
	}
}
