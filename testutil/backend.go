package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Backend routes served by FakeBackend
var backendRoutes = []struct{ method, path string }{
	{http.MethodPost, "/ask"},
	{http.MethodPost, "/execute"},
	{http.MethodPost, "/schema"},
	{http.MethodGet, "/health"},
	{http.MethodPost, "/auth/login"},
	{http.MethodPost, "/auth/register"},
}

// Reply is a scripted backend response
type Reply struct {
	Status int
	Body   interface{}
}

// RecordedRequest is a request received by FakeBackend
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]interface{}
}

// FakeBackend serves scripted JSON replies on the backend routes and records
// what it receives. Replies queued for a path are consumed in order; once the
// queue is empty the last reply served repeats.
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	replies  map[string][]Reply
	last     map[string]Reply
	requests []RecordedRequest
}

// NewFakeBackend starts a fake backend that is shut down when the test ends
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{replies: map[string][]Reply{}, last: map[string]Reply{}}

	r := chi.NewRouter()
	for _, route := range backendRoutes {
		r.Method(route.method, route.path, http.HandlerFunc(fb.serve))
	}

	fb.Server = httptest.NewServer(r)
	t.Cleanup(fb.Server.Close)
	return fb
}

// URL returns the base URL of the fake backend
func (fb *FakeBackend) URL() string {
	return fb.Server.URL
}

// Respond queues a reply for path
func (fb *FakeBackend) Respond(path string, status int, body interface{}) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.replies[path] = append(fb.replies[path], Reply{Status: status, Body: body})
}

// RespondOK queues a 200 reply for path
func (fb *FakeBackend) RespondOK(path string, body interface{}) {
	fb.Respond(path, http.StatusOK, body)
}

// Requests returns the requests received on path
func (fb *FakeBackend) Requests(path string) []RecordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	var out []RecordedRequest
	for _, req := range fb.requests {
		if req.Path == path {
			out = append(out, req)
		}
	}
	return out
}

// LastRequest returns the newest request on path, failing the test if none
func (fb *FakeBackend) LastRequest(t *testing.T, path string) RecordedRequest {
	t.Helper()
	reqs := fb.Requests(path)
	if len(reqs) == 0 {
		t.Fatalf("no request received on %s", path)
	}
	return reqs[len(reqs)-1]
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	recorded := RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
	}
	if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, &recorded.Body)
	}

	fb.mu.Lock()
	fb.requests = append(fb.requests, recorded)
	reply := Reply{Status: http.StatusNotFound, Body: map[string]string{"detail": "no reply scripted for " + r.URL.Path}}
	if queue := fb.replies[r.URL.Path]; len(queue) > 0 {
		reply = queue[0]
		fb.replies[r.URL.Path] = queue[1:]
		fb.last[r.URL.Path] = reply
	} else if prev, ok := fb.last[r.URL.Path]; ok {
		reply = prev
	}
	fb.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	if s, ok := reply.Body.(string); ok {
		_, _ = io.WriteString(w, s)
		return
	}
	_ = json.NewEncoder(w).Encode(reply.Body)
}
