package session

import (
	"log/slog"
	"sync"

	"github.com/wasif-raza/mockify-cli/pkg/cliconfig"
	"github.com/wasif-raza/mockify-cli/pkg/logging"
)

// TokenStore holds the current access token. Tokens are opaque bearer
// credentials; stores never inspect them.
type TokenStore interface {
	// Get returns the current token and whether one is present.
	Get() (string, bool)
	// Set replaces the current token. Setting "" is equivalent to Clear.
	Set(token string)
	// Clear removes the current token.
	Clear()
}

// MemoryStore is a process-scoped TokenStore safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates a MemoryStore, optionally seeded with a token.
func NewMemoryStore(initial string) *MemoryStore {
	return &MemoryStore{token: initial}
}

// Get returns the current token.
func (s *MemoryStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set replaces the current token.
func (s *MemoryStore) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Clear removes the current token.
func (s *MemoryStore) Clear() {
	s.Set("")
}

// ContextStore persists the token of one named context in the CLI context
// file, so a session outlives the process that opened it. The in-memory copy
// is authoritative for this process; persistence failures are logged.
type ContextStore struct {
	mu      sync.Mutex
	path    string
	name    string
	token   string
	logger  *slog.Logger
	lastErr error
}

// NewContextStore loads the token of context name from the context file at path.
// A missing file or context yields an empty store.
func NewContextStore(path, name string, logger *slog.Logger) (*ContextStore, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	cfg, err := cliconfig.LoadContextConfigFrom(path)
	if err != nil {
		return nil, err
	}
	s := &ContextStore{path: path, name: name, logger: logger}
	if ctx := cfg.Contexts[name]; ctx != nil {
		s.token = ctx.AccessToken
	}
	return s, nil
}

// Get returns the current token.
func (s *ContextStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// Set replaces the token and writes it to the context file.
func (s *ContextStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.persist()
}

// Clear removes the token from memory and from the context file.
func (s *ContextStore) Clear() {
	s.Set("")
}

// Err returns the last persistence error, if any.
func (s *ContextStore) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// persist re-reads the file so edits to other contexts are preserved.
// Callers hold s.mu.
func (s *ContextStore) persist() {
	cfg, err := cliconfig.LoadContextConfigFrom(s.path)
	if err != nil {
		s.fail(err)
		return
	}
	ctx := cfg.Contexts[s.name]
	if ctx == nil {
		if s.token == "" {
			s.lastErr = nil
			return
		}
		ctx = &cliconfig.Context{APIURL: cliconfig.DefaultAPIURL}
		cfg.Contexts[s.name] = ctx
	}
	if ctx.AccessToken == s.token {
		s.lastErr = nil
		return
	}
	ctx.AccessToken = s.token
	if err := cliconfig.SaveContextConfigTo(s.path, cfg); err != nil {
		s.fail(err)
		return
	}
	s.lastErr = nil
}

func (s *ContextStore) fail(err error) {
	s.lastErr = err
	s.logger.Warn("failed to persist session token", "context", s.name, "error", err)
}
