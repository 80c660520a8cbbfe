package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wasif-raza/mockify-cli/pkg/cli/internal/output"
	"github.com/wasif-raza/mockify-cli/pkg/cliconfig"
)

// contextForJSON is a sanitized version of Context for JSON output.
// The access token is reduced to whether one is held.
type contextForJSON struct {
	APIURL      string `json:"apiUrl"`
	Description string `json:"description,omitempty"`
	LoggedIn    bool   `json:"loggedIn"`
}

func sanitizeContextForJSON(ctx *cliconfig.Context) *contextForJSON {
	return &contextForJSON{
		APIURL:      ctx.APIURL,
		Description: ctx.Description,
		LoggedIn:    ctx.AccessToken != "",
	}
}

func sanitizeContextsForJSON(contexts map[string]*cliconfig.Context) map[string]*contextForJSON {
	result := make(map[string]*contextForJSON, len(contexts))
	for name, ctx := range contexts {
		result[name] = sanitizeContextForJSON(ctx)
	}
	return result
}

func loadContexts() (*cliconfig.ContextConfig, error) {
	cfg, err := cliconfig.LoadContextConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load context config: %w", err)
	}
	return cfg, nil
}

func saveContexts(cfg *cliconfig.ContextConfig) error {
	if err := cliconfig.SaveContextConfig(cfg); err != nil {
		return fmt.Errorf("failed to save context config: %w", err)
	}
	return nil
}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage contexts (named Mockify APIs, each with its own session)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContextShow()
	},
}

var contextShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current context",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContextShow()
	},
}

// runContextShow displays the current context.
func runContextShow() error {
	cfg, err := loadContexts()
	if err != nil {
		return err
	}

	effective := cliconfig.ResolveContext(contextName, cfg)
	source := ""
	switch {
	case contextName != "":
		source = "--context"
	case cliconfig.GetContextFromEnv() != "":
		source = cliconfig.EnvContext
	}

	ctx := cfg.Contexts[effective]
	if ctx == nil {
		if source != "" {
			return fmt.Errorf("context %q (from %s) not found", effective, source)
		}
		return errors.New("no current context set; run 'mockify context add <name>'")
	}

	if jsonOutput {
		return output.JSON(struct {
			Name    string          `json:"name"`
			Context *contextForJSON `json:"context"`
		}{Name: effective, Context: sanitizeContextForJSON(ctx)})
	}

	output.Printf("Current context: %s", effective)
	if source != "" {
		output.Printf("  (from %s)", source)
	}
	output.Println()
	output.Printf("  API URL:     %s\n", ctx.APIURL)
	if ctx.Description != "" {
		output.Printf("  Description: %s\n", ctx.Description)
	}
	if ctx.AccessToken != "" {
		output.Println("  Session:     logged in")
	} else {
		output.Println("  Session:     not logged in")
	}
	return nil
}

var contextUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch to a different context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := loadContexts()
		if err != nil {
			return err
		}

		if err := cfg.SetCurrentContext(name); err != nil {
			return fmt.Errorf("%w\n\nAvailable contexts: %s", err, strings.Join(cfg.Names(), ", "))
		}
		if err := saveContexts(cfg); err != nil {
			return err
		}

		return printResult(map[string]string{"currentContext": name}, func() {
			output.Printf("Switched to context %q\n", name)
			output.Printf("  API URL: %s\n", cfg.Contexts[name].APIURL)
		})
	},
}

var (
	contextAddAPIURL      string
	contextAddDescription string
	contextAddUseCurrent  bool
)

// validateContextName rejects names that cannot be typed safely.
func validateContextName(name string) error {
	switch {
	case name == "":
		return errors.New("context name cannot be empty")
	case len(name) > 64:
		return errors.New("context name cannot exceed 64 characters")
	case strings.ContainsAny(name, " \t\n/\\"):
		return errors.New("context name cannot contain whitespace or path separators")
	}
	return nil
}

var contextAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := validateContextName(name); err != nil {
			return err
		}

		if err := askMissing(field{
			flag:     "api-url",
			title:    "API URL (e.g. http://localhost:8080/api/v1)",
			value:    &contextAddAPIURL,
			validate: cliconfig.ValidateAPIURL,
		}); err != nil {
			return err
		}
		if err := cliconfig.ValidateAPIURL(contextAddAPIURL); err != nil {
			return err
		}

		cfg, err := loadContexts()
		if err != nil {
			return err
		}
		ctx := &cliconfig.Context{
			APIURL:      strings.TrimRight(contextAddAPIURL, "/"),
			Description: contextAddDescription,
		}
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}
		if contextAddUseCurrent {
			cfg.CurrentContext = name
		}
		if err := saveContexts(cfg); err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(struct {
				Name    string          `json:"name"`
				Context *contextForJSON `json:"context"`
				Current bool            `json:"current"`
			}{Name: name, Context: sanitizeContextForJSON(ctx), Current: cfg.CurrentContext == name})
		}
		output.Printf("Added context %q\n", name)
		if contextAddUseCurrent {
			output.Printf("Switched to context %q\n", name)
		}
		return nil
	},
}

var contextListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all contexts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadContexts()
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(struct {
				CurrentContext string                     `json:"currentContext"`
				Contexts       map[string]*contextForJSON `json:"contexts"`
			}{CurrentContext: cfg.CurrentContext, Contexts: sanitizeContextsForJSON(cfg.Contexts)})
		}

		w := output.Table()
		_, _ = fmt.Fprintln(w, "CURRENT\tNAME\tAPI URL\tSESSION\tDESCRIPTION")
		for _, name := range cfg.Names() {
			ctx := cfg.Contexts[name]
			cur := ""
			if name == cfg.CurrentContext {
				cur = "*"
			}
			sess := "-"
			if ctx.AccessToken != "" {
				sess = "logged in"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", cur, name,
				output.Truncate(ctx.APIURL, 40), sess, output.Dash(output.Truncate(ctx.Description, 30)))
		}
		return w.Flush()
	},
}

var contextRemoveForce bool

var contextRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a context and its session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := loadContexts()
		if err != nil {
			return err
		}
		ctx, exists := cfg.Contexts[name]
		if !exists {
			return fmt.Errorf("context not found: %s", name)
		}

		if !contextRemoveForce {
			ok, err := confirm(fmt.Sprintf("Remove context %q (%s)?", name, ctx.APIURL))
			if err != nil || !ok {
				return abortIfDeclined(err)
			}
		}
		if err := cfg.RemoveContext(name); err != nil {
			return err
		}
		if err := saveContexts(cfg); err != nil {
			return err
		}
		return printDone("Removed context %q", name)
	},
}

func init() {
	contextAddCmd.Flags().StringVarP(&contextAddAPIURL, "api-url", "u", "", "Mockify API base URL")
	contextAddCmd.Flags().StringVarP(&contextAddDescription, "description", "d", "", "Description for this context")
	contextAddCmd.Flags().BoolVar(&contextAddUseCurrent, "use", false, "Switch to this context after adding")
	contextRemoveCmd.Flags().BoolVarP(&contextRemoveForce, "force", "f", false, "Remove without confirmation")

	contextCmd.AddCommand(contextShowCmd, contextUseCmd, contextAddCmd, contextListCmd, contextRemoveCmd)
	rootCmd.AddCommand(contextCmd)
}
