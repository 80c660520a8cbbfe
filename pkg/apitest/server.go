package apitest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/wasif-raza/mockify-cli/pkg/httputil"
)

// APIPrefix is the path prefix of the Mockify REST API.
const APIPrefix = "/api/v1"

// Server is a fake Mockify API.
type Server struct {
	t       testing.TB
	httpSrv *httptest.Server

	mu       sync.Mutex
	stubs    []*stub
	requests []RequestLog
}

// New starts a fake API. It is closed when the test completes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{t: t}
	s.httpSrv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// URL returns the server origin, e.g. http://127.0.0.1:41234.
func (s *Server) URL() string {
	return s.httpSrv.URL
}

// APIURL returns the API base URL, the origin plus APIPrefix.
func (s *Server) APIURL() string {
	return s.httpSrv.URL + APIPrefix
}

// Client returns an http.Client for the server.
func (s *Server) Client() *http.Client {
	return s.httpSrv.Client()
}

// Close stops the server.
func (s *Server) Close() {
	s.httpSrv.Close()
}

// Mock starts a stub for method and path. Path is relative to APIPrefix and
// may contain {param} segments.
//
// Example:
//
//	api.Mock("GET", "/{org}/projects").
//	    WithBearer("T1").
//	    RespondJSON([]any{}).
//	    Reply()
func (s *Server) Mock(method, path string) *StubBuilder {
	return &StubBuilder{
		server: s,
		stub: &stub{
			method: method,
			path:   path,
			status: http.StatusOK,
			header: http.Header{},
		},
	}
}

// Reset removes all stubs and logged requests.
func (s *Server) Reset() {
	s.mu.Lock()
	s.stubs = nil
	s.requests = nil
	s.mu.Unlock()
}

// Requests returns the logged requests in arrival order.
func (s *Server) Requests() []RequestLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RequestLog(nil), s.requests...)
}

func (s *Server) add(st *stub) {
	s.mu.Lock()
	s.stubs = append(s.stubs, st)
	s.mu.Unlock()
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, APIPrefix)

	log := RequestLog{
		Method:      r.Method,
		Path:        path,
		Headers:     r.Header.Clone(),
		Body:        string(body),
		QueryString: r.URL.RawQuery,
	}

	s.mu.Lock()
	var matched *stub
	for _, st := range s.stubs {
		if st.exhausted() || !st.matches(r, path, body) {
			continue
		}
		st.calls++
		matched = st
		break
	}
	if matched != nil {
		log.Matched = matched.name
	}
	s.requests = append(s.requests, log)
	s.mu.Unlock()

	if matched == nil {
		httputil.WriteNotFound(w, r.URL.Path, fmt.Sprintf("no stub for %s %s", r.Method, path))
		return
	}
	matched.respond(w, r, body)
}

// matchesPath checks if a request path matches the expected path pattern.
// Supports exact matching and path parameters ({id} patterns).
func matchesPath(actual, expected string) bool {
	if actual == expected {
		return true
	}

	actualParts := strings.Split(actual, "/")
	expectedParts := strings.Split(expected, "/")
	if len(actualParts) != len(expectedParts) {
		return false
	}

	for i := range expectedParts {
		exp := expectedParts[i]
		if strings.HasPrefix(exp, "{") && strings.HasSuffix(exp, "}") {
			continue
		}
		if exp != actualParts[i] {
			return false
		}
	}
	return true
}
