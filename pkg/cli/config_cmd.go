package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wasif-raza/mockify-cli/pkg/cli/internal/output"
	"github.com/wasif-raza/mockify-cli/pkg/cliconfig"
)

// configValue is one resolved setting and where it came from.
type configValue struct {
	Value  any    `yaml:"value" json:"value"`
	Source string `yaml:"source" json:"source"`
}

// resolvedConfig is the effective configuration shown by `config show`.
type resolvedConfig struct {
	Context  string                 `yaml:"context" json:"context"`
	Settings map[string]configValue `yaml:"settings" json:"settings"`
	Files    map[string]string      `yaml:"files,omitempty" json:"files,omitempty"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect CLI configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration and where each value came from",
	Long: `Display the effective configuration after merging defaults, the global
config file, a local .mockifyrc.yaml, MOCKIFY_* environment variables and flags.

Output is YAML by default, or JSON with --json.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		contexts, err := loadContexts()
		if err != nil {
			return err
		}
		conn := cliconfig.ResolveClientConfig(apiURL, contextName, cfg, contexts)

		tokenStore := configValue{Value: conn.TokenStore, Source: sourceOf(cfg, "tokenStore")}
		if conn.EnvToken != "" {
			tokenStore = configValue{Value: "env", Source: cliconfig.SourceEnv}
		}

		out := resolvedConfig{
			Context: conn.ContextName,
			Settings: map[string]configValue{
				"apiUrl":     {Value: conn.APIURL, Source: conn.APIURLSource},
				"timeout":    {Value: cfg.Timeout, Source: sourceOf(cfg, "timeout")},
				"tokenStore": tokenStore,
				"staleTime":  {Value: cfg.StaleTime, Source: sourceOf(cfg, "staleTime")},
				"logLevel":   {Value: cfg.LogLevel, Source: sourceOf(cfg, "logLevel")},
				"logFormat":  {Value: cfg.LogFormat, Source: sourceOf(cfg, "logFormat")},
				"json":       {Value: cfg.JSON, Source: sourceOf(cfg, "json")},
			},
			Files: configFiles(),
		}
		if cfg.LogFile != "" {
			out.Settings["logFile"] = configValue{Value: cfg.LogFile, Source: sourceOf(cfg, "logFile")}
		}

		if jsonOutput {
			return output.JSON(out)
		}
		data, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		output.Println("# Resolved mockify configuration")
		output.Printf("%s", data)
		return nil
	},
}

func sourceOf(cfg *cliconfig.CLIConfig, key string) string {
	if src := cfg.Sources[key]; src != "" {
		return src
	}
	return cliconfig.SourceDefault
}

// configFiles lists the config files that exist on this machine.
func configFiles() map[string]string {
	files := map[string]string{}
	if path, err := cliconfig.FindGlobalConfig(); err == nil && path != "" {
		files[cliconfig.SourceGlobal] = path
	}
	if path, err := cliconfig.FindLocalConfig(); err == nil && path != "" {
		files[cliconfig.SourceLocal] = path
	}
	if path, err := cliconfig.GetContextConfigPath(); err == nil {
		files[cliconfig.SourceContext] = path
	}
	return files
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
