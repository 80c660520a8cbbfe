package cliconfig

// CLIConfig represents the complete configuration for the mockify CLI.
// Configuration values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Local config file (.mockifyrc.yaml in current directory)
// 4. Global config file (~/.config/mockify/config.yaml)
// 5. Default values (lowest priority)
type CLIConfig struct {
	// API settings
	APIURL  string `yaml:"apiUrl" json:"apiUrl"`
	Timeout int    `yaml:"timeout" json:"timeout"`

	// Session settings
	TokenStore string `yaml:"tokenStore" json:"tokenStore"`
	StaleTime  int    `yaml:"staleTime" json:"staleTime"`

	// Logging settings
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`
	LogFile   string `yaml:"logFile,omitempty" json:"logFile,omitempty"`

	// Output settings
	JSON bool `yaml:"json" json:"json"`

	// Sources tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`

	// SetFields records which keys were present in a loaded file, so an
	// explicit "json: false" can override an earlier "json: true".
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceFlag    = "flag"
	SourceContext = "context"
)

// Token store kinds.
const (
	TokenStoreFile   = "file"
	TokenStoreMemory = "memory"
)
