package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wasif-raza/mockify-cli/pkg/httputil"
)

// stub is a registered response. Fields other than calls are immutable
// after Reply.
type stub struct {
	name   string
	method string
	path   string

	reqHeaders  map[string]string
	queryParams map[string]string
	bodyHas     string
	noAuth      bool

	status  int
	header  http.Header
	cookies []*http.Cookie
	body    []byte
	delay   time.Duration
	handler http.HandlerFunc

	times int // 0 means unlimited
	calls int
}

func (st *stub) exhausted() bool {
	return st.times > 0 && st.calls >= st.times
}

func (st *stub) matches(r *http.Request, path string, body []byte) bool {
	if st.method != "" && !strings.EqualFold(st.method, r.Method) {
		return false
	}
	if !matchesPath(path, st.path) {
		return false
	}
	if st.noAuth {
		if _, ok := r.Header["Authorization"]; ok {
			return false
		}
	}
	for k, v := range st.reqHeaders {
		if r.Header.Get(k) != v {
			return false
		}
	}
	q := r.URL.Query()
	for k, v := range st.queryParams {
		if q.Get(k) != v {
			return false
		}
	}
	if st.bodyHas != "" && !strings.Contains(string(body), st.bodyHas) {
		return false
	}
	return true
}

func (st *stub) respond(w http.ResponseWriter, r *http.Request, body []byte) {
	if st.delay > 0 {
		select {
		case <-time.After(st.delay):
		case <-r.Context().Done():
			return
		}
	}
	for _, c := range st.cookies {
		http.SetCookie(w, c)
	}
	if st.handler != nil {
		st.handler(w, r)
		return
	}
	for k, vs := range st.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(st.status)
	if len(st.body) > 0 {
		_, _ = w.Write(st.body)
	}
}

// StubBuilder configures a stub using a fluent API.
type StubBuilder struct {
	server *Server
	stub   *stub
	err    error
}

// setError records the first error encountered during building.
func (b *StubBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns any error encountered during building.
func (b *StubBuilder) Err() error {
	return b.err
}

// WithName labels the stub in the request log.
func (b *StubBuilder) WithName(name string) *StubBuilder {
	b.stub.name = name
	return b
}

// WithStatus sets the response status code. Default is 200.
func (b *StubBuilder) WithStatus(status int) *StubBuilder {
	b.stub.status = status
	return b
}

// WithBody sets a raw response body.
func (b *StubBuilder) WithBody(body string) *StubBuilder {
	b.stub.body = []byte(body)
	return b
}

// WithJSON sets the response body as JSON.
func (b *StubBuilder) WithJSON(body any) *StubBuilder {
	data, err := json.Marshal(body)
	if err != nil {
		b.setError(fmt.Errorf("WithJSON: failed to marshal body: %w", err))
		return b
	}
	b.stub.body = data
	b.stub.header.Set("Content-Type", "application/json")
	return b
}

// WithHeader adds a response header.
func (b *StubBuilder) WithHeader(key, value string) *StubBuilder {
	b.stub.header.Add(key, value)
	return b
}

// WithCookie sets a response cookie.
func (b *StubBuilder) WithCookie(c *http.Cookie) *StubBuilder {
	b.stub.cookies = append(b.stub.cookies, c)
	return b
}

// WithDelay delays the response.
func (b *StubBuilder) WithDelay(d time.Duration) *StubBuilder {
	b.stub.delay = d
	return b
}

// WithHandler answers with fn instead of a canned response.
func (b *StubBuilder) WithHandler(fn http.HandlerFunc) *StubBuilder {
	b.stub.handler = fn
	return b
}

// WithRequestHeader matches requests carrying header key with value.
func (b *StubBuilder) WithRequestHeader(key, value string) *StubBuilder {
	if b.stub.reqHeaders == nil {
		b.stub.reqHeaders = make(map[string]string)
	}
	b.stub.reqHeaders[key] = value
	return b
}

// WithBearer matches requests authorized with token.
func (b *StubBuilder) WithBearer(token string) *StubBuilder {
	return b.WithRequestHeader("Authorization", "Bearer "+token)
}

// WithoutAuth matches requests that carry no Authorization header.
func (b *StubBuilder) WithoutAuth() *StubBuilder {
	b.stub.noAuth = true
	return b
}

// WithQueryParam matches requests with a query parameter.
func (b *StubBuilder) WithQueryParam(key, value string) *StubBuilder {
	if b.stub.queryParams == nil {
		b.stub.queryParams = make(map[string]string)
	}
	b.stub.queryParams[key] = value
	return b
}

// WithBodyContains matches requests whose body contains substr.
func (b *StubBuilder) WithBodyContains(substr string) *StubBuilder {
	b.stub.bodyHas = substr
	return b
}

// Times limits how many requests the stub answers. 0 is unlimited.
func (b *StubBuilder) Times(n int) *StubBuilder {
	b.stub.times = n
	return b
}

// Once is a convenience method for Times(1).
func (b *StubBuilder) Once() *StubBuilder {
	return b.Times(1)
}

// Twice is a convenience method for Times(2).
func (b *StubBuilder) Twice() *StubBuilder {
	return b.Times(2)
}

// Reply registers the stub. Builder errors fail the test.
func (b *StubBuilder) Reply() {
	b.server.t.Helper()
	if b.err != nil {
		b.server.t.Fatalf("apitest: %s %s: %v", b.stub.method, b.stub.path, b.err)
	}
	if b.stub.name == "" {
		b.stub.name = b.stub.method + " " + b.stub.path
	}
	b.server.add(b.stub)
}

// RespondJSON is a shorthand for a 200 JSON response.
func (b *StubBuilder) RespondJSON(body any) *StubBuilder {
	return b.WithStatus(http.StatusOK).WithJSON(body)
}

// RespondCreated is a shorthand for a 201 JSON response.
func (b *StubBuilder) RespondCreated(body any) *StubBuilder {
	return b.WithStatus(http.StatusCreated).WithJSON(body)
}

// RespondNoContent configures a 204 response.
func (b *StubBuilder) RespondNoContent() *StubBuilder {
	return b.WithStatus(http.StatusNoContent)
}

// RespondError configures an API error document.
func (b *StubBuilder) RespondError(status int, message string) *StubBuilder {
	return b.WithStatus(status).WithJSON(httputil.NewErrorBody(status, APIPrefix+b.stub.path, message))
}

// RespondValidation configures a 400 with per-field validation errors.
func (b *StubBuilder) RespondValidation(fields map[string][]string) *StubBuilder {
	body := httputil.NewErrorBody(http.StatusBadRequest, APIPrefix+b.stub.path, "Validation failed")
	body.ValidationErrors = fields
	return b.WithStatus(http.StatusBadRequest).WithJSON(body)
}

// RespondUnauthorized configures a 401 error document.
func (b *StubBuilder) RespondUnauthorized() *StubBuilder {
	return b.RespondError(http.StatusUnauthorized, "Full authentication is required to access this resource")
}

// RespondNotFound configures a 404 error document.
func (b *StubBuilder) RespondNotFound() *StubBuilder {
	return b.RespondError(http.StatusNotFound, "Resource not found")
}
