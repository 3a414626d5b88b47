package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Request is one request seen by a Backend
type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// Backend is a scripted research backend
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
}

// NewBackend starts a server answering every request with handler. The
// server is closed when the test ends.
func NewBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()
	b := &Backend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
		})
		b.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

// NewJSONBackend answers every request with status and body
func NewJSONBackend(t *testing.T, status int, body string) *Backend {
	t.Helper()
	return NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// Requests returns the requests received so far
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// RequestCount returns how many requests were received
func (b *Backend) RequestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}
