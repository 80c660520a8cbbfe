package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wasif-raza/mockify-cli/pkg/session"
)

// backend is a fake API that accepts exactly one bearer token on protected
// routes and rotates it on /auth/refresh.
type backend struct {
	t *testing.T

	mu        sync.Mutex
	valid     string
	next      string
	refreshOK bool

	refreshes atomic.Int32
	protected atomic.Int32
	authSeen  []string

	// refreshGate, when set, blocks the refresh handler until closed.
	refreshGate chan struct{}
}

func newBackend(t *testing.T, valid, next string) *backend {
	return &backend{t: t, valid: valid, next: next, refreshOK: true}
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/auth/refresh":
		b.refreshes.Add(1)
		if b.refreshGate != nil {
			<-b.refreshGate
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.refreshOK {
			writeJSON(b.t, w, http.StatusUnauthorized, map[string]any{"status": 401, "error": "Unauthorized", "message": "Refresh token expired"})
			return
		}
		b.valid = b.next
		writeJSON(b.t, w, http.StatusOK, map[string]any{"access_token": b.next, "token_type": "Bearer"})
	case "/api/v1/auth/me":
		writeJSON(b.t, w, http.StatusUnauthorized, map[string]any{"status": 401, "message": "Full authentication is required"})
	default:
		b.protected.Add(1)
		b.mu.Lock()
		b.authSeen = append(b.authSeen, r.Header.Get("Authorization"))
		valid := b.valid
		b.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+valid {
			writeJSON(b.t, w, http.StatusUnauthorized, map[string]any{"status": 401, "message": "Token expired"})
			return
		}
		writeJSON(b.t, w, http.StatusOK, []map[string]any{{"id": 1, "name": "Acme"}})
	}
}

func (b *backend) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.authSeen...)
}

// endedRecorder counts session-ended hook calls.
type endedRecorder struct {
	calls atomic.Int32
	last  atomic.Value
}

func (e *endedRecorder) hook(cause error) {
	e.calls.Add(1)
	e.last.Store(cause)
}

func TestRefresh_RetriesOnceWithNewToken(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "T2", "T2")
	store := session.NewMemoryStore("T1")
	ended := &endedRecorder{}
	_, c := mockServer(t, b.ServeHTTP, WithTokenStore(store), WithSessionEndedHook(ended.hook))

	var orgs []map[string]any
	require.NoError(t, c.Get(context.Background(), "/organizations", &orgs))

	assert.Len(t, orgs, 1)
	assert.Equal(t, int32(1), b.refreshes.Load(), "exactly one refresh")
	assert.Equal(t, []string{"Bearer T1", "Bearer T2"}, b.seen())
	tok, _ := store.Get()
	assert.Equal(t, "T2", tok)
	assert.Zero(t, ended.calls.Load())
}

func TestRefresh_SecondUnauthorizedClearsToken(t *testing.T) {
	t.Parallel()

	// Refresh hands out T2 but the API only accepts T3.
	b := newBackend(t, "T3", "T2")
	store := session.NewMemoryStore("T1")
	ended := &endedRecorder{}
	_, c := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/refresh" {
			b.refreshes.Add(1)
			writeJSON(t, w, http.StatusOK, map[string]any{"access_token": "T2"})
			return
		}
		b.ServeHTTP(w, r)
	}, WithTokenStore(store), WithSessionEndedHook(ended.hook))

	err := c.Get(context.Background(), "/organizations", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), b.refreshes.Load(), "no second refresh")
	assert.Equal(t, int32(2), b.protected.Load(), "original plus one retry")
	_, ok := store.Get()
	assert.False(t, ok)
	assert.Equal(t, int32(1), ended.calls.Load())
}

func TestRefresh_AuthEndpointNeverRefreshes(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/auth/refresh", "/auth/me"} {
		t.Run(path, func(t *testing.T) {
			t.Parallel()

			b := newBackend(t, "T2", "T2")
			b.refreshOK = false
			store := session.NewMemoryStore("T1")
			ended := &endedRecorder{}
			_, c := mockServer(t, b.ServeHTTP, WithTokenStore(store), WithSessionEndedHook(ended.hook))

			var err error
			if path == "/auth/refresh" {
				err = c.Post(context.Background(), path, nil, nil)
			} else {
				err = c.Get(context.Background(), path, nil)
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnauthorized)
			assert.NotErrorIs(t, err, ErrSessionExpired)
			wantRefreshes := int32(0)
			if path == "/auth/refresh" {
				wantRefreshes = 1 // the request itself
			}
			assert.Equal(t, wantRefreshes, b.refreshes.Load(), "no nested refresh")
			_, ok := store.Get()
			assert.False(t, ok, "token cleared")
			assert.Zero(t, ended.calls.Load())
		})
	}
}

func TestRefresh_FailureEndsSession(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "T2", "T2")
	b.refreshOK = false
	store := session.NewMemoryStore("T1")
	ended := &endedRecorder{}
	_, c := mockServer(t, b.ServeHTTP, WithTokenStore(store), WithSessionEndedHook(ended.hook))

	err := c.Get(context.Background(), "/organizations", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Token expired", apiErr.Message, "original error propagates")

	_, ok := store.Get()
	assert.False(t, ok)
	assert.Equal(t, int32(1), ended.calls.Load())
	assert.Equal(t, int32(1), b.protected.Load(), "original request not retried")
}

func TestRefresh_AnonymousUnauthorizedEndsNoSession(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "T2", "T2")
	b.refreshOK = false
	store := session.NewMemoryStore("")
	ended := &endedRecorder{}
	_, c := mockServer(t, b.ServeHTTP, WithTokenStore(store), WithSessionEndedHook(ended.hook))

	err := c.Get(context.Background(), "/organizations", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(1), b.refreshes.Load(), "server-side session is still tried")
	assert.Zero(t, ended.calls.Load())
}

func TestRefresh_MissingAccessTokenIsFailure(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore("T1")
	_, c := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/refresh" {
			writeJSON(t, w, http.StatusOK, map[string]any{})
			return
		}
		writeJSON(t, w, http.StatusUnauthorized, nil)
	}, WithTokenStore(store))

	err := c.Get(context.Background(), "/organizations", nil)
	assert.ErrorIs(t, err, ErrSessionExpired)
	_, ok := store.Get()
	assert.False(t, ok)
}

func TestRefresh_Explicit(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "T1", "T2")
	store := session.NewMemoryStore("")
	_, c := mockServer(t, b.ServeHTTP, WithTokenStore(store))

	tok, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T2", tok)
	got, _ := store.Get()
	assert.Equal(t, "T2", got)

	b.mu.Lock()
	b.refreshOK = false
	b.mu.Unlock()
	_, err = c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	got, _ = store.Get()
	assert.Equal(t, "T2", got, "explicit refresh failure leaves the store alone")
}

func TestRefresh_ReplaysSessionCookie(t *testing.T) {
	t.Parallel()

	var refreshCookie string
	_, c := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "R1", Path: "/"})
			writeJSON(t, w, http.StatusOK, map[string]any{"access_token": "T1"})
		case "/api/v1/auth/refresh":
			if ck, err := r.Cookie("refresh_token"); err == nil {
				refreshCookie = ck.Value
			}
			writeJSON(t, w, http.StatusOK, map[string]any{"access_token": "T2"})
		}
	})

	require.NoError(t, c.Post(context.Background(), "/auth/login", map[string]string{"email": "a@b.com"}, nil))
	_, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "R1", refreshCookie)
}

func TestRefresh_ConcurrentUnauthorizedCoalesce(t *testing.T) {
	ignore := goleak.IgnoreCurrent()

	const n = 8
	b := newBackend(t, "T2", "T2")
	b.refreshGate = make(chan struct{})
	ts := httptest.NewServer(b)

	transport := &http.Transport{}
	store := session.NewMemoryStore("T1")
	c := New(ts.URL+"/api/v1", WithHTTPClient(&http.Client{Transport: transport, Timeout: 5 * time.Second}), WithTokenStore(store))

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Get(context.Background(), "/organizations", nil)
		}(i)
	}

	// Hold the refresh open until every request has been rejected once.
	require.Eventually(t, func() bool { return b.protected.Load() >= n }, 2*time.Second, 5*time.Millisecond)
	close(b.refreshGate)
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, int32(1), b.refreshes.Load(), "one refresh for all callers")
	assert.Equal(t, int32(2*n), b.protected.Load(), "each request retried once")
	tok, _ := store.Get()
	assert.Equal(t, "T2", tok)

	ts.Close()
	transport.CloseIdleConnections()
	goleak.VerifyNone(t, ignore)
}

func TestRefresh_WaiterCancellation(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "T2", "T2")
	b.refreshGate = make(chan struct{})
	store := session.NewMemoryStore("T1")
	_, c := mockServer(t, b.ServeHTTP, WithTokenStore(store))
	defer close(b.refreshGate)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for b.refreshes.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	err := c.Get(ctx, "/organizations", nil)
	assert.ErrorIs(t, err, context.Canceled)
	tok, _ := store.Get()
	assert.Equal(t, "T1", tok, "a cancelled waiter does not end the session")
}
