package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Call records one request that reached a FakeBackend.
type Call struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	Body          []byte
}

// FakeBackend is an httptest server that answers the restaurant API routes
// from per-route handlers and records every call.
type FakeBackend struct {
	Server *httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []Call
}

// NewFakeBackend starts a server; BaseURL() is the API root with the /api prefix.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{routes: make(map[string]http.HandlerFunc)}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.Server.Close)
	return fb
}

func (fb *FakeBackend) BaseURL() string {
	return fb.Server.URL + "/api"
}

// Handle registers a handler for "METHOD /path" relative to the API root.
func (fb *FakeBackend) Handle(method, path string, handler http.HandlerFunc) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[method+" /api"+path] = handler
}

// JSON registers a route that always responds with status and payload.
func (fb *FakeBackend) JSON(method, path string, status int, payload any) {
	fb.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, payload)
	})
}

// Calls returns a copy of the recorded requests.
func (fb *FakeBackend) Calls() []Call {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]Call, len(fb.calls))
	copy(out, fb.calls)
	return out
}

// CallsTo filters recorded requests by method and API path.
func (fb *FakeBackend) CallsTo(method, path string) []Call {
	var out []Call
	for _, call := range fb.Calls() {
		if call.Method == method && call.Path == "/api"+path {
			out = append(out, call)
		}
	}
	return out
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := readAll(r)
	fb.mu.Lock()
	fb.calls = append(fb.calls, Call{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	})
	handler, ok := fb.routes[r.Method+" "+r.URL.Path]
	fb.mu.Unlock()

	if !ok {
		WriteJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
		return
	}
	handler(w, r)
}

// WriteJSON writes payload as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
