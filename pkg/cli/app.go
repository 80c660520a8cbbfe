package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wasif-raza/mockify-cli/pkg/api"
	"github.com/wasif-raza/mockify-cli/pkg/auth"
	"github.com/wasif-raza/mockify-cli/pkg/cli/internal/output"
	"github.com/wasif-raza/mockify-cli/pkg/cliconfig"
	"github.com/wasif-raza/mockify-cli/pkg/httpclient"
	"github.com/wasif-raza/mockify-cli/pkg/logging"
	"github.com/wasif-raza/mockify-cli/pkg/query"
	"github.com/wasif-raza/mockify-cli/pkg/session"
)

// app is the per-invocation wiring of configuration, session and clients.
type app struct {
	cfg      *cliconfig.CLIConfig
	conn     *cliconfig.ClientConfig
	logger   *slog.Logger
	closeLog func() error

	tokens session.TokenStore
	http   *httpclient.Client
	auth   *auth.Service
	api    *api.Client
}

// current is the app built by the running command, used for error hints.
var current *app

// loadConfig resolves the layered config and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*cliconfig.CLIConfig, error) {
	cfg, err := cliconfig.LoadAll()
	if err != nil {
		return nil, err
	}

	flags := &cliconfig.CLIConfig{SetFields: map[string]bool{}}
	fs := cmd.Flags()
	if fs.Changed("timeout") {
		flags.Timeout = timeoutSecs
	}
	if fs.Changed("log-level") {
		flags.LogLevel = logLevel
	}
	if fs.Changed("log-format") {
		flags.LogFormat = logFormat
	}
	if fs.Changed("json") {
		flags.JSON = jsonOutput
		flags.SetFields["json"] = true
	}
	cliconfig.MergeConfig(cfg, flags, cliconfig.SourceFlag)
	if fs.Changed("api-url") {
		cfg.Sources["apiUrl"] = cliconfig.SourceFlag
	}

	jsonOutput = cfg.JSON
	return cfg, nil
}

// newApp builds the clients for the resolved context.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	contexts, err := cliconfig.LoadContextConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load context config: %w", err)
	}

	conn := cliconfig.ResolveClientConfig(apiURL, contextName, cfg, contexts)
	if err := cliconfig.ValidateAPIURL(conn.APIURL); err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: output.Stderr,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := openTokenStore(conn, logger)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		conn:     conn,
		logger:   logger,
		closeLog: closeLog,
		tokens:   tokens,
	}
	cache := query.New(query.WithStaleTime(conn.StaleTime), query.WithLogger(logger))
	a.http = httpclient.New(conn.APIURL,
		httpclient.WithTimeout(conn.Timeout),
		httpclient.WithTokenStore(tokens),
		httpclient.WithLogger(logger),
		httpclient.WithUserAgent("mockify-cli/"+Version),
		httpclient.WithSessionEndedHook(a.sessionEnded),
	)
	a.auth = auth.NewService(a.http, auth.WithCache(cache), auth.WithLogger(logger))
	a.api = api.New(a.http, cache)

	logger.Debug("client configured",
		"apiUrl", conn.APIURL,
		"source", conn.APIURLSource,
		"context", conn.ContextName,
		"tokenStore", conn.TokenStore,
	)
	current = a
	return a, nil
}

// openTokenStore picks where the session token lives: MOCKIFY_TOKEN pins an
// in-memory token, otherwise the context file holds it.
func openTokenStore(conn *cliconfig.ClientConfig, logger *slog.Logger) (session.TokenStore, error) {
	if conn.EnvToken != "" {
		return session.NewMemoryStore(conn.EnvToken), nil
	}
	if conn.TokenStore == cliconfig.TokenStoreMemory {
		return session.NewMemoryStore(""), nil
	}
	path, err := cliconfig.GetContextConfigPath()
	if err != nil {
		return nil, err
	}
	return session.NewContextStore(path, conn.ContextName, logger)
}

func (a *app) sessionEnded(cause error) {
	a.auth.HandleSessionEnded(cause)
	output.Warn("session expired, run `mockify login`")
}

// requireLogin fails fast when the context holds no session, so resource
// commands never send anonymous requests.
func (a *app) requireLogin() error {
	if _, ok := a.tokens.Get(); !ok {
		return auth.ErrNotAuthenticated
	}
	return nil
}

// checkPersisted warns when a new token could not be written to disk.
func (a *app) checkPersisted() {
	if cs, ok := a.tokens.(*session.ContextStore); ok {
		if err := cs.Err(); err != nil {
			output.Warn("session token could not be saved, it lasts for this command only: %v", err)
		}
	}
}

func (a *app) close() {
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}

// runE adapts a command body that needs the wired clients.
func runE(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return fn(cmd.Context(), a, args)
	}
}

// authedE is runE for commands that need a session.
func authedE(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return runE(func(ctx context.Context, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		return fn(ctx, a, args)
	})
}
