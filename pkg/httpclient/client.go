package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"

	"github.com/wasif-raza/mockify-cli/pkg/logging"
	"github.com/wasif-raza/mockify-cli/pkg/session"
)

// Header names set on every request.
const (
	RequestIDHeader = "X-Request-ID"
	authScheme      = "Bearer "
)

// DefaultRefreshPath is the endpoint that exchanges the server-side session
// for a new access token.
const DefaultRefreshPath = "/auth/refresh"

// SessionEndedFunc is called after the client clears the token because a 401
// could not be recovered. cause is the error that ended the session.
type SessionEndedFunc func(cause error)

// Client dispatches requests to the Mockify API. It is safe for concurrent use.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      session.TokenStore
	logger      *slog.Logger
	onEnded     SessionEndedFunc
	refreshPath string
	userAgent   string

	refreshes singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTokenStore sets the store the client reads and updates the token in.
func WithTokenStore(store session.TokenStore) Option {
	return func(c *Client) {
		if store != nil {
			c.tokens = store
		}
	}
}

// WithLogger sets the logger for request and refresh events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSessionEndedHook sets the function called when an unrecoverable 401
// ends the session.
func WithSessionEndedHook(fn SessionEndedFunc) Option {
	return func(c *Client) {
		c.onEnded = fn
	}
}

// WithRefreshPath overrides DefaultRefreshPath.
func WithRefreshPath(path string) Option {
	return func(c *Client) {
		c.refreshPath = path
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the API rooted at baseURL
// (e.g. "http://localhost:8080/api/v1").
func New(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		tokens:      session.NewMemoryStore(""),
		logger:      logging.Nop(),
		refreshPath: DefaultRefreshPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Tokens returns the client's token store.
func (c *Client) Tokens() session.TokenStore {
	return c.tokens
}

// Request describes one API call. Path is relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is encoded as JSON unless it is a []byte or json.RawMessage.
	Body any
}

// Get performs a GET and decodes the response into out (which may be nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path}, out)
}

// Post performs a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put performs a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path}, nil)
}

// Do sends r under the refresh-once policy and decodes a successful response
// body into out.
func (c *Client) Do(ctx context.Context, r *Request, out any) error {
	body, err := encodeBody(r.Body)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, r, body)
	if err != nil {
		return err
	}
	return decodeBody(resp, out)
}

// response is a fully read HTTP response.
type response struct {
	status int
	header http.Header
	body   []byte
}

// dispatch performs one HTTP exchange with token as the bearer credential and
// classifies the result. It never retries.
func (c *Client) dispatch(ctx context.Context, r *Request, body []byte, token string) attempt {
	u := c.baseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u, bodyReader)
	if err != nil {
		return attemptFailed(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", authScheme+token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return attemptFailed(ctx.Err())
		}
		c.logger.Debug("request failed", "method", r.Method, "path", r.Path, "request_id", requestID, "error", err)
		return attemptFailed(connectionError(c.baseURL, err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return attemptFailed(connectionError(c.baseURL, err))
	}

	c.logger.Debug("request",
		"method", r.Method,
		"path", r.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	res := &response{status: resp.StatusCode, header: resp.Header, body: data}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return attemptOK(res)
	case resp.StatusCode == http.StatusUnauthorized:
		return attemptNeedsRefresh(parseError(resp.StatusCode, data, r.Path))
	default:
		return attemptFailed(parseError(resp.StatusCode, data, r.Path))
	}
}

// IsAuthEndpoint reports whether path belongs to the auth API. A 401 from
// one of these never triggers a refresh.
func IsAuthEndpoint(path string) bool {
	return path == "/auth" || strings.HasPrefix(path, "/auth/")
}

func encodeBody(v any) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return data, nil
}

func decodeBody(resp *response, out any) error {
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], resp.body...)
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
