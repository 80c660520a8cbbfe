package apitest

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"testing"
)

// RequestLog is a request received by the Server.
type RequestLog struct {
	Method string
	// Path is relative to APIPrefix.
	Path        string
	Headers     http.Header
	Body        string
	QueryString string
	// Matched names the stub that answered, empty when none did.
	Matched string
}

// Bearer returns the bearer token of the request, or "" without one.
func (r RequestLog) Bearer() string {
	return strings.TrimPrefix(r.Headers.Get("Authorization"), "Bearer ")
}

// HasAuthorization reports whether the request carried an Authorization
// header at all.
func (r RequestLog) HasAuthorization() bool {
	_, ok := r.Headers["Authorization"]
	return ok
}

// AssertJSONBody asserts that the request body matches the expected JSON.
// The expected value can be a string, []byte, or any value that will be JSON encoded.
func (r RequestLog) AssertJSONBody(t testing.TB, expected any) {
	t.Helper()

	var expectedJSON, actualJSON any
	var raw []byte
	switch v := expected.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			t.Errorf("failed to marshal expected value: %v", err)
			return
		}
		raw = data
	}
	if err := json.Unmarshal(raw, &expectedJSON); err != nil {
		t.Errorf("failed to parse expected JSON: %v", err)
		return
	}
	if err := json.Unmarshal([]byte(r.Body), &actualJSON); err != nil {
		t.Errorf("request body is not valid JSON: %v\nbody: %s", err, r.Body)
		return
	}

	if !reflect.DeepEqual(actualJSON, expectedJSON) {
		expectedBytes, _ := json.MarshalIndent(expectedJSON, "", "  ")
		actualBytes, _ := json.MarshalIndent(actualJSON, "", "  ")
		t.Errorf("request body does not match expected JSON\nexpected:\n%s\nactual:\n%s",
			string(expectedBytes), string(actualBytes))
	}
}

// Calls returns the logged requests for method and path pattern.
func (s *Server) Calls(method, path string) []RequestLog {
	var out []RequestLog
	for _, r := range s.Requests() {
		if strings.EqualFold(r.Method, method) && matchesPath(r.Path, path) {
			out = append(out, r)
		}
	}
	return out
}

// LastRequest returns the most recent request for method and path.
func (s *Server) LastRequest(t testing.TB, method, path string) RequestLog {
	t.Helper()
	calls := s.Calls(method, path)
	if len(calls) == 0 {
		t.Fatalf("expected %s %s to be called, but it was not called", method, path)
	}
	return calls[len(calls)-1]
}

// AssertCalled asserts that an endpoint was called at least once.
func (s *Server) AssertCalled(t testing.TB, method, path string) {
	t.Helper()
	if len(s.Calls(method, path)) == 0 {
		t.Errorf("expected %s %s to be called, but it was not called", method, path)
	}
}

// AssertCalledTimes asserts that an endpoint was called exactly n times.
func (s *Server) AssertCalledTimes(t testing.TB, method, path string, times int) {
	t.Helper()
	if count := len(s.Calls(method, path)); count != times {
		t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, path, times, count)
	}
}

// AssertNotCalled asserts that an endpoint was not called.
func (s *Server) AssertNotCalled(t testing.TB, method, path string) {
	t.Helper()
	if count := len(s.Calls(method, path)); count > 0 {
		t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, path, count)
	}
}
