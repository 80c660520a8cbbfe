package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wasif-raza/mockify-cli/pkg/api/types"
	"github.com/wasif-raza/mockify-cli/pkg/auth"
	"github.com/wasif-raza/mockify-cli/pkg/cli/internal/output"
	"github.com/wasif-raza/mockify-cli/pkg/httpclient"
)

// DefaultWatchInterval matches the refresh period of the web dashboard.
const DefaultWatchInterval = 60 * time.Second

var (
	dashboardWatch    bool
	dashboardInterval time.Duration
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show usage statistics",
}

var titleCaser = cases.Title(language.English)

// statLabel turns a stat key such as "totalRecords" into "Total Records".
func statLabel(key string) string {
	var words []string
	var cur []rune
	for i, r := range key {
		if r == '_' || r == '-' {
			if len(cur) > 0 {
				words = append(words, string(cur))
				cur = cur[:0]
			}
			continue
		}
		if i > 0 && unicode.IsUpper(r) && len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		words = append(words, string(cur))
	}
	return titleCaser.String(strings.Join(words, " "))
}

// formatStat renders a stat value on one line.
func formatStat(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%.2f", x)
	default:
		raw, _ := json.Marshal(x)
		return string(raw)
	}
}

func printStats(title string, stats types.Stats) error {
	return printResult(stats, func() {
		output.Println(title)
		w := output.Table()
		for _, k := range stats.Keys() {
			_, _ = fmt.Fprintf(w, "  %s\t%s\n", statLabel(k), formatStat(stats[k]))
		}
		_ = w.Flush()
	})
}

// statsCommand builds a dashboard subcommand. fetch reads one statistics
// document; with --watch it is re-read every interval until interrupted.
func statsCommand(use, short string, nargs int, title func(args []string) string,
	fetch func(ctx context.Context, a *app, args []string) (types.Stats, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: authedE(func(ctx context.Context, a *app, args []string) error {
			show := func() error {
				stats, err := fetch(ctx, a, args)
				if err != nil {
					return err
				}
				return printStats(title(args), stats)
			}
			if !dashboardWatch {
				return show()
			}
			return watch(ctx, dashboardInterval, func() error {
				// Each tick must reach the API, not the cache.
				a.api.Cache().Invalidate(nil)
				return show()
			})
		}),
	}
}

// watch runs fn now and then every interval until ctx is done. Errors other
// than an ended session are reported and the loop continues.
func watch(ctx context.Context, interval time.Duration, fn func() error) error {
	if interval <= 0 {
		return errors.New("--interval must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := fn(); err != nil {
			if unrecoverable(err) {
				return err
			}
			output.Warn("%s", strings.TrimPrefix(FormatError(err, ""), "Error: "))
		}
		if !jsonOutput {
			output.Info("updated %s, next in %s (Ctrl-C to stop)", time.Now().Format(time.TimeOnly), interval)
		}
		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func init() {
	dashboardCmd.PersistentFlags().BoolVarP(&dashboardWatch, "watch", "w", false, "Refresh periodically until interrupted")
	dashboardCmd.PersistentFlags().DurationVar(&dashboardInterval, "interval", DefaultWatchInterval, "Refresh interval for --watch")

	dashboardCmd.AddCommand(
		statsCommand("user", "Show your totals", 0,
			func([]string) string { return "Your usage" },
			func(ctx context.Context, a *app, _ []string) (types.Stats, error) {
				return a.api.Dashboard.UserStats(ctx)
			}),
		statsCommand("org <org-id>", "Show the totals of an organization", 1,
			func(args []string) string { return "Organization " + args[0] },
			func(ctx context.Context, a *app, args []string) (types.Stats, error) {
				id, err := resolveOrgID(ctx, a, args[0])
				if err != nil {
					return nil, err
				}
				return a.api.Dashboard.OrganizationStats(ctx, fmt.Sprint(id))
			}),
		statsCommand("project <project-id>", "Show the totals of a project", 1,
			func(args []string) string { return "Project " + args[0] },
			func(ctx context.Context, a *app, args []string) (types.Stats, error) {
				return a.api.Dashboard.ProjectStats(ctx, args[0])
			}),
		statsCommand("schema <schema-id>", "Show the totals of a schema", 1,
			func(args []string) string { return "Schema " + args[0] },
			func(ctx context.Context, a *app, args []string) (types.Stats, error) {
				return a.api.Dashboard.SchemaStats(ctx, args[0])
			}),
		statsCommand("records", "Show record expiry health", 0,
			func([]string) string { return "Record health" },
			func(ctx context.Context, a *app, _ []string) (types.Stats, error) {
				return a.api.Dashboard.RecordHealth(ctx)
			}),
	)
	rootCmd.AddCommand(dashboardCmd)
}

// unrecoverable reports errors that no later tick or record can recover
// from: the session is gone or the command was interrupted.
func unrecoverable(err error) bool {
	return errors.Is(err, httpclient.ErrSessionExpired) ||
		errors.Is(err, auth.ErrNotAuthenticated) ||
		errors.Is(err, context.Canceled)
}
