package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/onnwee/student-roster/internal/cache"
	"github.com/onnwee/student-roster/internal/roster"
	"github.com/onnwee/student-roster/internal/store"
)

type fixture struct {
	store *store.Memory
	mock  *cache.MockCache
	guard *cache.Guard
	coord *roster.Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: store.NewMemory(), mock: cache.NewMockCache()}
	f.guard = cache.NewGuard(f.mock, cache.GuardOptions{Backend: "mock", Timeout: time.Second})
	f.coord = roster.NewCoordinator(f.store, f.guard, roster.Options{})
	return f
}

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/student/add", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v (raw %q)", err, rr.Body.String())
	}
	return body
}

func TestAdd_StoresRecord(t *testing.T) {
	f := newFixture(t)
	h := NewStudentHandler(f.coord)

	rr := postJSON(h.Add, `{"student_id":"S1","first_name":"Ada","last_name":"Lovelace","module_code":"CS101"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var got roster.Record
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	want := roster.Record{StudentID: "S1", FirstName: "Ada", LastName: "Lovelace", ModuleCode: "CS101"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if n := f.mock.Calls("delete"); n != 1 {
		t.Errorf("invalidations = %d, want 1", n)
	}
}

func TestAdd_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		code     string
		setup    func(f *fixture)
		wantSent bool
	}{
		{
			name:   "malformed json",
			body:   `{"student_id":`,
			status: http.StatusBadRequest,
			code:   "VALIDATION_INVALID_JSON",
		},
		{
			name:   "missing field",
			body:   `{"student_id":"S1","first_name":"Ada","last_name":"Lovelace"}`,
			status: http.StatusBadRequest,
			code:   "VALIDATION_MISSING_FIELD",
		},
		{
			name:   "wrong type",
			body:   `{"student_id":1,"first_name":"Ada","last_name":"Lovelace","module_code":"CS101"}`,
			status: http.StatusBadRequest,
			code:   "VALIDATION_INVALID_VALUE",
		},
		{
			name:   "duplicate",
			body:   `{"student_id":"S1","first_name":"Ada","last_name":"Lovelace","module_code":"CS101"}`,
			status: http.StatusConflict,
			code:   "RESOURCE_CONFLICT",
			setup: func(f *fixture) {
				_, _ = f.store.Insert(context.Background(), roster.Record{StudentID: "S1", FirstName: "A", LastName: "B", ModuleCode: "C"})
			},
		},
		{
			name:   "store down",
			body:   `{"student_id":"S2","first_name":"Ada","last_name":"Lovelace","module_code":"CS101"}`,
			status: http.StatusInternalServerError,
			code:   "SYSTEM_DATABASE",
			setup:  func(f *fixture) { f.store.FailWith(store.ErrUnavailable) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			rr := postJSON(NewStudentHandler(f.coord).Add, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.status, rr.Body.String())
			}
			if got := decodeError(t, rr).Error.Code; got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
			if n := f.mock.Calls("delete"); n != 0 {
				t.Errorf("cache invalidated %d times on a failed add", n)
			}
		})
	}
}

func TestAdd_BodyTooLarge(t *testing.T) {
	f := newFixture(t)
	h := NewStudentHandler(f.coord)

	body := `{"student_id":"` + strings.Repeat("x", 200) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/student/add", strings.NewReader(body))
	rr := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rr, req.Body, 32)
	h.Add(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rr.Code)
	}
	if got := decodeError(t, rr).Error.Details["max_bytes"]; got != float64(32) {
		t.Errorf("max_bytes = %v, want 32", got)
	}
}

func TestAll_ReturnsArray(t *testing.T) {
	f := newFixture(t)
	h := NewStudentHandler(f.coord)

	rr := httptest.NewRecorder()
	h.All(rr, httptest.NewRequest(http.MethodGet, "/student/all", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("empty roster body = %s, want []", got)
	}

	postJSON(h.Add, `{"student_id":"S1","first_name":"Ada","last_name":"Lovelace","module_code":"CS101"}`)
	postJSON(h.Add, `{"student_id":"S2","first_name":"Alan","last_name":"Turing","module_code":"CS102"}`)

	rr = httptest.NewRecorder()
	h.All(rr, httptest.NewRequest(http.MethodGet, "/student/all", nil))
	var recs []roster.Record
	if err := json.NewDecoder(rr.Body).Decode(&recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].StudentID != "S1" || recs[1].StudentID != "S2" {
		t.Errorf("records = %+v", recs)
	}
}

func TestAll_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.FailWith(store.ErrUnavailable)

	rr := httptest.NewRecorder()
	NewStudentHandler(f.coord).All(rr, httptest.NewRequest(http.MethodGet, "/student/all", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestAllWithCacheInfo(t *testing.T) {
	f := newFixture(t)
	h := NewStudentHandler(f.coord)
	postJSON(h.Add, `{"student_id":"S1","first_name":"Ada","last_name":"Lovelace","module_code":"CS101"}`)

	get := func() map[string]json.RawMessage {
		rr := httptest.NewRecorder()
		h.AllWithCacheInfo(rr, httptest.NewRequest(http.MethodGet, "/student/all/with-cache-info", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var body map[string]json.RawMessage
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		return body
	}

	first := get()
	var info map[string]any
	if err := json.Unmarshal(first["cache_info"], &info); err != nil {
		t.Fatal(err)
	}
	if info["status"] != "miss" || info["source"] != "durable-store" {
		t.Errorf("first read info = %v", info)
	}
	if !bytes.Contains(first["data"], []byte(`"S1"`)) {
		t.Errorf("data = %s", first["data"])
	}

	second := get()
	if err := json.Unmarshal(second["cache_info"], &info); err != nil {
		t.Fatal(err)
	}
	if info["status"] != "hit" || info["source"] != "cache" {
		t.Errorf("second read info = %v", info)
	}
}
