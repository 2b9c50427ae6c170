package middleware

import (
	"mime"
	"net/http"

	"github.com/onnwee/student-roster/internal/apierr"
)

// MaxRequestBodySize bounds request bodies. A roster record is four short
// strings, so 64KB is generous.
const MaxRequestBodySize = 64 * 1024

// LimitBody caps the body of requests that carry one. Handlers see a
// *http.MaxBytesError when a client sends more than max bytes.
func LimitBody(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				if r.ContentLength > max {
					apierr.WriteErrorWithContext(w, r, apierr.ValidationBodyTooLarge(max))
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, max)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireJSON rejects bodies that are not declared as application/json.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				apierr.WriteErrorWithContext(w, r, apierr.ValidationContentType("application/json"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
