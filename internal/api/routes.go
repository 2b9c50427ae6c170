package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/onnwee/student-roster/internal/api/handlers"
	"github.com/onnwee/student-roster/internal/apierr"
	"github.com/onnwee/student-roster/internal/metrics"
	"github.com/onnwee/student-roster/internal/middleware"
)

// notMounted is returned for paths outside the configured prefix.
const notMounted = "This URL does not belong to the app."

// Deps are the collaborators the router serves.
type Deps struct {
	Roster  handlers.Roster
	Cache   handlers.CacheStatser // optional
	Metrics *metrics.Aggregator
	Checks  []handlers.Check
	Service string
	// Prefix mounts every route below it, e.g. "/app". Empty mounts at root.
	Prefix string

	CORS    *middleware.CORSConfig  // nil uses middleware.DefaultCORSConfig
	Limiter *middleware.RateLimiter // nil disables rate limiting
}

// NewRouter registers every route under d.Prefix.
func NewRouter(d Deps) *mux.Router {
	root := mux.NewRouter()
	r := root
	if d.Prefix != "" {
		r = root.PathPrefix(d.Prefix).Subrouter()
	}
	r.Use(middleware.RequestMetrics(d.Metrics, d.Prefix, middleware.SkipOperational))

	// Operational
	r.HandleFunc("/health", handlers.Health(d.Service)).Methods("GET")
	r.HandleFunc("/health/ready", handlers.Ready(2*time.Second, d.Checks...)).Methods("GET")
	r.HandleFunc("/metrics", handlers.Metrics(d.Metrics)).Methods("GET")

	// Students
	students := handlers.NewStudentHandler(d.Roster)
	cacheAdmin := handlers.NewCacheAdminHandler(d.Roster, d.Cache)

	s := r.PathPrefix("/student").Subrouter()
	s.Use(middleware.NoStore)
	s.Handle("/add", middleware.RequireJSON(
		middleware.LimitBody(middleware.MaxRequestBodySize)(http.HandlerFunc(students.Add)))).Methods("POST")
	s.HandleFunc("/all", students.All).Methods("GET")
	s.HandleFunc("/all/with-cache-info", students.AllWithCacheInfo).Methods("GET")
	s.HandleFunc("/cache/clear", cacheAdmin.ClearCache).Methods("DELETE")
	s.HandleFunc("/cache/stats", cacheAdmin.GetCacheStats).Methods("GET")

	root.NotFoundHandler = notFound(d.Prefix)
	return root
}

func notFound(prefix string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if prefix != "" && r.URL.Path != prefix && !strings.HasPrefix(r.URL.Path, prefix+"/") {
			http.Error(w, notMounted, http.StatusNotFound)
			return
		}
		apierr.WriteErrorWithContext(w, r, apierr.ResourceNotFound("route"))
	})
}

// Handler wraps the router in the middleware stack, outermost first.
func Handler(d Deps) http.Handler {
	var h http.Handler = NewRouter(d)
	h = middleware.Compress(h)
	if d.Limiter != nil {
		if d.Limiter.Exempt == nil {
			prefix := d.Prefix
			d.Limiter.Exempt = func(r *http.Request) bool {
				return middleware.SkipOperational(strings.TrimPrefix(r.URL.Path, prefix))
			}
		}
		h = d.Limiter.Limit(h)
	}
	cors := d.CORS
	if cors == nil {
		cors = middleware.DefaultCORSConfig()
	}
	h = middleware.CORS(cors)(h)
	h = middleware.SecurityHeaders(h)
	h = middleware.RecoverWithSentry(h)
	h = middleware.RequestID(h)
	return h
}
