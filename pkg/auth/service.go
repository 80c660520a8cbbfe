package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/wasif-raza/mockify-cli/pkg/httpclient"
	"github.com/wasif-raza/mockify-cli/pkg/logging"
	"github.com/wasif-raza/mockify-cli/pkg/query"
	"github.com/wasif-raza/mockify-cli/pkg/session"
)

// Auth API paths, relative to the API base URL.
const (
	PathRegister       = "/auth/register"
	PathLogin          = "/auth/login"
	PathLogout         = "/auth/logout"
	PathMe             = "/auth/me"
	PathForgotPassword = "/auth/forgot-password"
	PathResetPassword  = "/auth/reset-password"
	PathVerifyEmail    = "/auth/register/verify"

	// GoogleAuthPath is relative to the server origin, not the API base.
	GoogleAuthPath = "/oauth2/authorization/google"
)

// IdentityKey is the cache key of the current user.
var IdentityKey = query.Key{"auth", "me"}

// identity is a cached user together with the token it was fetched under.
type identity struct {
	user  *User
	token string
}

// Service runs session operations against the API. It is safe for
// concurrent use.
type Service struct {
	client *httpclient.Client
	tokens session.TokenStore
	cache  *query.Cache
	status *session.Machine
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache shares a query cache with the resource clients.
func WithCache(cache *query.Cache) Option {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service that uses client's token store.
func NewService(client *httpclient.Client, opts ...Option) *Service {
	s := &Service{
		client: client,
		tokens: client.Tokens(),
		cache:  query.New(),
		status: session.NewMachine(),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.status.OnTransition(func(from, to session.Status) {
		s.logger.Debug("session status changed", "from", from.String(), "to", to.String())
	})
	return s
}

// Status returns the current session status.
func (s *Service) Status() session.Status {
	return s.status.Current()
}

// OnStatusChange registers fn to observe status transitions.
func (s *Service) OnStatusChange(fn session.TransitionFunc) {
	s.status.OnTransition(fn)
}

// Register creates an account and opens a session for it.
func (s *Service) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var res AuthResult
	err := s.client.Post(ctx, PathRegister, RegisterRequest{Name: name, Email: email, Password: password}, &res)
	if err != nil {
		s.settle()
		return nil, err
	}
	if err := s.establish(&res); err != nil {
		return nil, err
	}
	s.logger.Info("registered", "email", email)
	return &res, nil
}

// Login authenticates with email and password.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	err := s.client.Post(ctx, PathLogin, LoginRequest{Email: email, Password: password}, &res)
	if err != nil {
		s.settle()
		if errors.Is(err, httpclient.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, err
	}
	if err := s.establish(&res); err != nil {
		return nil, err
	}
	s.logger.Info("logged in", "email", email)
	return &res, nil
}

// Logout ends the session. Local state is cleared whatever the server says;
// the remote error, if any, is returned for reporting only.
func (s *Service) Logout(ctx context.Context) error {
	err := s.client.Post(ctx, PathLogout, nil, nil)
	if err != nil {
		s.logger.Debug("remote logout failed", "error", err)
	}
	s.tokens.Clear()
	s.cache.Clear()
	s.toAnonymous()
	return err
}

// Bootstrap tries to recover a session from server-side state such as a
// refresh cookie. It reports whether a session was recovered and never fails.
func (s *Service) Bootstrap(ctx context.Context) bool {
	if s.status.Current() == session.StatusAuthenticated {
		return true
	}
	s.transition(session.StatusLoading)

	if _, err := s.client.Refresh(ctx); err != nil {
		s.logger.Debug("no session to recover", "error", err)
		s.tokens.Clear()
		s.cache.Remove(IdentityKey)
		s.toAnonymous()
		return false
	}

	s.cache.Remove(IdentityKey)
	s.transition(session.StatusAuthenticated)
	return true
}

// Refresh rotates the access token explicitly. A failure ends the session.
func (s *Service) Refresh(ctx context.Context) error {
	if _, err := s.client.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.tokens.Clear()
		s.cache.Remove(IdentityKey)
		s.toAnonymous()
		return fmt.Errorf("%w: %w", httpclient.ErrSessionExpired, err)
	}
	s.cache.Remove(IdentityKey)
	s.transition(session.StatusAuthenticated)
	return nil
}

// ForgotPassword requests a password reset email. It always succeeds from
// the caller's point of view so responses never reveal whether an account
// exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) {
	if err := s.client.Post(ctx, PathForgotPassword, forgotPasswordRequest{Email: email}, nil); err != nil {
		s.logger.Debug("forgot-password request failed", "error", err)
	}
}

// ResetPassword sets a new password using the token from a reset email.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidOrExpiredLink
	}
	err := s.client.Post(ctx, PathResetPassword, resetPasswordRequest{Token: token, NewPassword: newPassword}, nil)
	if err != nil {
		s.settle()
		return linkError(err)
	}
	return nil
}

// VerifyEmail consumes an email verification token. On success it behaves
// like Login.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*AuthResult, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredLink
	}

	var res AuthResult
	err := s.client.Do(ctx, &httpclient.Request{
		Method: http.MethodGet,
		Path:   PathVerifyEmail,
		Query:  url.Values{"token": {token}},
	}, &res)
	if err != nil {
		s.settle()
		return nil, linkError(err)
	}
	if err := s.establish(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CurrentUser returns the authenticated identity, reading through the cache.
// A cached identity fetched under a different token is stale. Without a token
// it fails with ErrNotAuthenticated and sends no request.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	token, ok := s.tokens.Get()
	if !ok {
		s.cache.Remove(IdentityKey)
		s.toAnonymous()
		return nil, ErrNotAuthenticated
	}

	if v, ok := s.cache.Get(IdentityKey); ok {
		if id, ok := v.(identity); ok && id.token == token {
			return id.user, nil
		}
		s.cache.Remove(IdentityKey)
	}

	if s.status.Current() == session.StatusUnknown {
		s.transition(session.StatusLoading)
	}

	id, err := query.Fetch(ctx, s.cache, IdentityKey, func(ctx context.Context) (identity, error) {
		var u User
		if err := s.client.Get(ctx, PathMe, &u); err != nil {
			return identity{}, err
		}
		return identity{user: &u, token: token}, nil
	})
	if err != nil {
		if errors.Is(err, httpclient.ErrUnauthorized) {
			s.settle()
			return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
		}
		return nil, err
	}

	s.transition(session.StatusAuthenticated)
	return id.user, nil
}

// CachedUser returns the cached identity without a request, if it is still
// valid for the current token.
func (s *Service) CachedUser() (*User, bool) {
	token, ok := s.tokens.Get()
	if !ok {
		return nil, false
	}
	v, ok := s.cache.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(identity)
	if !ok || id.token != token {
		return nil, false
	}
	return id.user, true
}

// GoogleAuthURL returns the OAuth2 entry point for Google sign-in.
func (s *Service) GoogleAuthURL() string {
	return Origin(s.client.BaseURL()) + GoogleAuthPath
}

// HandleSessionEnded is the httpclient session-ended hook: it drops the
// cached identity and moves the session to Anonymous.
func (s *Service) HandleSessionEnded(cause error) {
	s.logger.Info("session ended", "error", cause)
	s.cache.Clear()
	s.toAnonymous()
}

// Origin strips the API prefix from an API base URL.
func Origin(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	return strings.TrimSuffix(base, "/api/v1")
}

// establish stores a newly issued token and caches the identity it came with.
func (s *Service) establish(res *AuthResult) error {
	if res.AccessToken == "" {
		return errors.New("auth response has no access_token")
	}
	s.tokens.Set(res.AccessToken)
	if res.User != nil {
		s.cache.Set(IdentityKey, identity{user: res.User, token: res.AccessToken})
	} else {
		s.cache.Remove(IdentityKey)
	}
	s.transition(session.StatusAuthenticated)
	return nil
}

// settle reconciles the status after a failed call: without a token the
// session is Anonymous.
func (s *Service) settle() {
	if _, ok := s.tokens.Get(); ok {
		return
	}
	s.cache.Remove(IdentityKey)
	s.toAnonymous()
}

func (s *Service) toAnonymous() {
	s.transition(session.StatusAnonymous)
}

func (s *Service) transition(to session.Status) {
	if err := s.status.Transition(to); err != nil {
		s.logger.Debug("ignored status change", "error", err)
	}
}

// linkError maps a rejected link token onto ErrInvalidOrExpiredLink. Transport
// failures pass through.
func linkError(err error) error {
	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return fmt.Errorf("%w: %w", ErrInvalidOrExpiredLink, err)
	}
	return err
}
