package cliconfig

import "strconv"

// DefaultAPIURL is the default Mockify REST API base URL.
const DefaultAPIURL = "http://localhost:8080/api/v1"

// DefaultTimeout is the default request timeout in seconds.
const DefaultTimeout = 30

// DefaultStaleTime is how long cached query results stay fresh, in seconds.
const DefaultStaleTime = 300

// DefaultLogLevel is the default log level for the CLI.
const DefaultLogLevel = "warn"

// DefaultLogFormat is the default log format.
const DefaultLogFormat = "text"

// DefaultTokenStore persists the access token in the context file.
const DefaultTokenStore = TokenStoreFile

// NewDefault creates a new CLIConfig with default values.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		APIURL:     DefaultAPIURL,
		Timeout:    DefaultTimeout,
		TokenStore: DefaultTokenStore,
		StaleTime:  DefaultStaleTime,
		LogLevel:   DefaultLogLevel,
		LogFormat:  DefaultLogFormat,
		Sources:    make(map[string]string),
	}

	for _, key := range []string{"apiUrl", "timeout", "tokenStore", "staleTime", "logLevel", "logFormat", "json"} {
		cfg.Sources[key] = SourceDefault
	}

	return cfg
}

// Validate checks that the configuration values are usable.
func (c *CLIConfig) Validate() error {
	if c.Timeout < 0 || c.Timeout > 600 {
		return &ConfigError{Message: "timeout " + strconv.Itoa(c.Timeout) + " is out of range (0-600)"}
	}
	if c.StaleTime < 0 {
		return &ConfigError{Message: "staleTime " + strconv.Itoa(c.StaleTime) + " must not be negative"}
	}
	if c.APIURL != "" {
		if err := ValidateAPIURL(c.APIURL); err != nil {
			return err
		}
	}
	switch c.TokenStore {
	case "", TokenStoreFile, TokenStoreMemory:
	default:
		return &ConfigError{Message: "tokenStore " + strconv.Quote(c.TokenStore) + " must be \"file\" or \"memory\""}
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return &ConfigError{Message: "logFormat " + strconv.Quote(c.LogFormat) + " must be \"text\" or \"json\""}
	}
	return nil
}
