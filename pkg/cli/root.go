package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wasif-raza/mockify-cli/pkg/cli/internal/output"
	"github.com/wasif-raza/mockify-cli/pkg/cliconfig"
)

var (
	// Persistent flags available to all subcommands
	apiURL      string
	contextName string
	jsonOutput  bool
	timeoutSecs int
	logLevel    string
	logFormat   string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mockify",
	Short: "mockify manages mock APIs on a Mockify server",
	Long: `mockify is the command-line client of the Mockify mock API platform.
It manages organizations, projects, schemas and mock records, and keeps a
session per context so that you stay signed in between commands.

Configuration can be provided via flags, environment variables (MOCKIFY_*),
a local .mockifyrc.yaml or the global config.yaml in the mockify config directory.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if current != nil {
		current.close()
	}
	if err != nil {
		printError(err)
		return 1
	}
	return 0
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&apiURL, "api-url", "", "Mockify API base URL (default: context or "+cliconfig.DefaultAPIURL+")")
	pf.StringVar(&contextName, "context", "", "Context to use instead of the current one")
	pf.BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
	pf.IntVar(&timeoutSecs, "timeout", cliconfig.DefaultTimeout, "Request timeout in seconds")
	pf.StringVar(&logLevel, "log-level", cliconfig.DefaultLogLevel, "Log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", cliconfig.DefaultLogFormat, "Log format (text, json)")

	rootCmd.SetOut(output.Stdout)
	rootCmd.SetErr(output.Stderr)
}
