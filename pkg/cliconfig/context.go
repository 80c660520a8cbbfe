package cliconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ContextConfigFileName is the name of the context configuration file.
const ContextConfigFileName = "contexts.json"

// ContextConfigVersion is the current version of the context config schema.
const ContextConfigVersion = 1

// DefaultContextName is the name of the default context.
const DefaultContextName = "local"

// ContextConfig holds the user's named API endpoints and the access token
// issued by each. It is stored separately from CLIConfig so that settings
// files can be shared without leaking credentials.
type ContextConfig struct {
	// Version is the config schema version for future migrations
	Version int `json:"version"`

	// CurrentContext is the name of the currently active context
	CurrentContext string `json:"currentContext"`

	// Contexts maps context names to their configuration
	Contexts map[string]*Context `json:"contexts"`
}

// Context is a named Mockify deployment (local, staging, ...) together with
// the session token the CLI holds for it.
type Context struct {
	// APIURL is the REST base URL (e.g., "http://localhost:8080/api/v1")
	APIURL string `json:"apiUrl"`

	// Description is an optional human-readable description
	Description string `json:"description,omitempty"`

	// AccessToken is the bearer token of the current session, if any
	AccessToken string `json:"accessToken,omitempty"`
}

// NewDefaultContextConfig creates a new ContextConfig with default values.
func NewDefaultContextConfig() *ContextConfig {
	return &ContextConfig{
		Version:        ContextConfigVersion,
		CurrentContext: DefaultContextName,
		Contexts: map[string]*Context{
			DefaultContextName: {
				APIURL:      DefaultAPIURL,
				Description: "Local Mockify backend",
			},
		},
	}
}

// GetContextConfigPath returns the path to the context config file.
func GetContextConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(dir, ContextConfigFileName), nil
}

// LoadContextConfig loads the context configuration from the default location.
// If the file doesn't exist, returns a default configuration.
func LoadContextConfig() (*ContextConfig, error) {
	path, err := GetContextConfigPath()
	if err != nil {
		//nolint:nilerr // without a config dir the defaults apply
		return NewDefaultContextConfig(), nil
	}
	return LoadContextConfigFrom(path)
}

// LoadContextConfigFrom loads the context configuration from path.
func LoadContextConfigFrom(path string) (*ContextConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefaultContextConfig(), nil
		}
		return nil, fmt.Errorf("failed to read context config: %w", err)
	}

	var cfg ContextConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{
			Path:    path,
			Message: fmt.Sprintf("invalid JSON: %s", err.Error()),
		}
	}

	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}

	// Ensure default context exists
	if len(cfg.Contexts) == 0 {
		cfg.Contexts[DefaultContextName] = &Context{
			APIURL:      DefaultAPIURL,
			Description: "Local Mockify backend",
		}
		if cfg.CurrentContext == "" {
			cfg.CurrentContext = DefaultContextName
		}
	}

	return &cfg, nil
}

// SaveContextConfig saves the context configuration to the default location.
func SaveContextConfig(cfg *ContextConfig) error {
	path, err := GetContextConfigPath()
	if err != nil {
		return err
	}
	return SaveContextConfigTo(path, cfg)
}

// SaveContextConfigTo writes cfg to path with owner-only permissions. The file
// is replaced atomically so concurrent readers never see a partial token.
func SaveContextConfigTo(path string, cfg *ContextConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode context config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ContextConfigFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to write context config: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write context config: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write context config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write context config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to write context config: %w", err)
	}
	return nil
}

// GetCurrentContext returns the currently active context.
// Returns nil if no context is set or the context doesn't exist.
func (c *ContextConfig) GetCurrentContext() *Context {
	if c.CurrentContext == "" {
		return nil
	}
	return c.Contexts[c.CurrentContext]
}

// SetCurrentContext switches to the named context.
func (c *ContextConfig) SetCurrentContext(name string) error {
	if _, exists := c.Contexts[name]; !exists {
		return fmt.Errorf("context not found: %s", name)
	}
	c.CurrentContext = name
	return nil
}

// AddContext adds a new context with the given name.
func (c *ContextConfig) AddContext(name string, ctx *Context) error {
	if name == "" {
		return errors.New("context name is required")
	}
	if _, exists := c.Contexts[name]; exists {
		return fmt.Errorf("context already exists: %s", name)
	}
	if c.Contexts == nil {
		c.Contexts = make(map[string]*Context)
	}
	c.Contexts[name] = ctx
	return nil
}

// RemoveContext removes a context by name.
// The current context cannot be removed.
func (c *ContextConfig) RemoveContext(name string) error {
	if _, exists := c.Contexts[name]; !exists {
		return fmt.Errorf("context not found: %s", name)
	}
	if c.CurrentContext == name {
		return errors.New("cannot remove current context; switch to another context first")
	}
	delete(c.Contexts, name)
	return nil
}

// Names returns the context names in sorted order.
func (c *ContextConfig) Names() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveContext resolves which context to use.
// Priority: explicit flag > env var > current context
func ResolveContext(flagValue string, cfg *ContextConfig) string {
	if flagValue != "" {
		return flagValue
	}
	if envCtx := GetContextFromEnv(); envCtx != "" {
		return envCtx
	}
	if cfg == nil || cfg.CurrentContext == "" {
		return DefaultContextName
	}
	return cfg.CurrentContext
}
