package cliconfig

import "time"

// ClientConfig holds resolved configuration for creating an API client.
// This is the single source of truth for CLI commands needing to connect.
type ClientConfig struct {
	// APIURL is the resolved REST base URL
	APIURL string

	// APIURLSource names where APIURL came from
	APIURLSource string

	// ContextName is the context whose token store is used
	ContextName string

	// EnvToken is a token supplied via MOCKIFY_TOKEN (takes precedence over the stored one)
	EnvToken string

	// Timeout is the per-request timeout
	Timeout time.Duration

	// TokenStore is "file" or "memory"
	TokenStore string

	// StaleTime is how long cached query results stay fresh
	StaleTime time.Duration
}

// ResolveClientConfig resolves all client configuration from various sources.
// Pass empty strings for flag values that weren't provided.
// Priority for the API URL: flag > env > context > config file > default.
func ResolveClientConfig(flagAPIURL, flagContext string, cfg *CLIConfig, contexts *ContextConfig) *ClientConfig {
	if cfg == nil {
		cfg = NewDefault()
	}

	out := &ClientConfig{
		ContextName: ResolveContext(flagContext, contexts),
		EnvToken:    GetTokenFromEnv(),
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		TokenStore:  cfg.TokenStore,
		StaleTime:   time.Duration(cfg.StaleTime) * time.Second,
	}

	var ctx *Context
	if contexts != nil {
		ctx = contexts.Contexts[out.ContextName]
	}

	switch {
	case flagAPIURL != "":
		out.APIURL, out.APIURLSource = flagAPIURL, SourceFlag
	case GetAPIURLFromEnv() != "":
		out.APIURL, out.APIURLSource = GetAPIURLFromEnv(), SourceEnv
	case ctx != nil && ctx.APIURL != "":
		out.APIURL, out.APIURLSource = ctx.APIURL, SourceContext
	case cfg.APIURL != "":
		out.APIURL, out.APIURLSource = cfg.APIURL, cfg.Sources["apiUrl"]
	default:
		out.APIURL, out.APIURLSource = DefaultAPIURL, SourceDefault
	}

	if out.TokenStore == "" {
		out.TokenStore = DefaultTokenStore
	}
	return out
}
