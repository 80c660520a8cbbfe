package cliconfig

import (
	"os"
	"strconv"
)

// Environment variable names
const (
	EnvAPIURL     = "MOCKIFY_API_URL"
	EnvTimeout    = "MOCKIFY_TIMEOUT"
	EnvContext    = "MOCKIFY_CONTEXT"
	EnvToken      = "MOCKIFY_TOKEN"
	EnvTokenStore = "MOCKIFY_TOKEN_STORE"
	EnvStaleTime  = "MOCKIFY_STALE_TIME"
	EnvLogLevel   = "MOCKIFY_LOG_LEVEL"
	EnvLogFormat  = "MOCKIFY_LOG_FORMAT"
	EnvLogFile    = "MOCKIFY_LOG_FILE"
	EnvJSON       = "MOCKIFY_JSON"
)

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment.
func LoadEnvConfig(cfg *CLIConfig) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
		cfg.Sources["apiUrl"] = SourceEnv
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			cfg.Timeout = timeout
			cfg.Sources["timeout"] = SourceEnv
		}
	}

	if v := os.Getenv(EnvTokenStore); v != "" {
		cfg.TokenStore = v
		cfg.Sources["tokenStore"] = SourceEnv
	}

	if v := os.Getenv(EnvStaleTime); v != "" {
		if stale, err := strconv.Atoi(v); err == nil {
			cfg.StaleTime = stale
			cfg.Sources["staleTime"] = SourceEnv
		}
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		cfg.Sources["logLevel"] = SourceEnv
	}

	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		cfg.Sources["logFormat"] = SourceEnv
	}

	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
		cfg.Sources["logFile"] = SourceEnv
	}

	if v := os.Getenv(EnvJSON); v != "" {
		cfg.JSON = v == "true" || v == "1" || v == "yes"
		cfg.Sources["json"] = SourceEnv
	}
}

// GetAPIURLFromEnv returns the API URL from the environment, or "".
func GetAPIURLFromEnv() string {
	return os.Getenv(EnvAPIURL)
}

// GetContextFromEnv returns the context name from the environment, or "".
func GetContextFromEnv() string {
	return os.Getenv(EnvContext)
}

// GetTokenFromEnv returns an access token supplied through the environment, or "".
func GetTokenFromEnv() string {
	return os.Getenv(EnvToken)
}
