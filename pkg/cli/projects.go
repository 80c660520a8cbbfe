package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wasif-raza/mockify-cli/pkg/api/types"
	"github.com/wasif-raza/mockify-cli/pkg/cli/internal/output"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project"},
	Short:   "Manage the projects of an organization",
}

var projectsListCmd = &cobra.Command{
	Use:     "list <org>",
	Aliases: []string{"ls"},
	Short:   "List the projects of an organization",
	Args:    cobra.ExactArgs(1),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		projects, err := a.api.Projects.List(ctx, args[0])
		if err != nil {
			return err
		}
		return printTable(projects, "ID\tNAME\tSLUG\tSCHEMAS\tCREATED", func(w *tabwriter.Writer, p types.Project) {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Slug, p.SchemaCount, output.Dash(p.CreatedAt))
		})
	}),
}

var projectsGetCmd = &cobra.Command{
	Use:   "get <org> <project>",
	Short: "Show a project with its schemas and record counts",
	Args:  cobra.ExactArgs(2),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		p, err := a.api.Projects.Get(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printResult(p, func() {
			output.Printf("Project: %s (%s/%s)\n", p.Name, args[0], p.Slug)
			output.Printf("ID:      %d\n", p.ID)
			output.Printf("Schemas: %d   Records: %d (active %d, expired %d)\n",
				p.Stats.TotalSchemas, p.Stats.TotalRecords, p.Stats.ActiveRecords, p.Stats.ExpiredRecords)
			if len(p.Schemas) == 0 {
				return
			}
			output.Println()
			w := output.Table()
			_, _ = fmt.Fprintln(w, "SCHEMA\tSLUG\tRECORDS")
			for _, s := range p.Schemas {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", s.Name, s.Slug, s.RecordCount)
			}
			_ = w.Flush()
		})
	}),
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create <org> <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(2),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		p, err := a.api.Projects.Create(ctx, args[0], types.ProjectInput{Name: args[1]})
		if err != nil {
			return err
		}
		return printResult(p, func() {
			output.Printf("Created project %q (%s/%s)\n", p.Name, args[0], p.Slug)
		})
	}),
}

var projectsUpdateName string

var projectsUpdateCmd = &cobra.Command{
	Use:   "update <org> <project>",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		p, err := a.api.Projects.Update(ctx, args[0], args[1], types.ProjectInput{Name: projectsUpdateName})
		if err != nil {
			return err
		}
		return printResult(p, func() {
			output.Printf("Updated project %s/%s: %s\n", args[0], p.Slug, p.Name)
		})
	}),
}

var projectsDeleteForce bool

var projectsDeleteCmd = &cobra.Command{
	Use:     "delete <org> <project>",
	Aliases: []string{"rm"},
	Short:   "Delete a project with its schemas and records",
	Args:    cobra.ExactArgs(2),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		if !projectsDeleteForce {
			ok, err := confirm(fmt.Sprintf("Delete project %s/%s?", args[0], args[1]))
			if err != nil || !ok {
				return abortIfDeclined(err)
			}
		}
		if err := a.api.Projects.Delete(ctx, args[0], args[1]); err != nil {
			return err
		}
		return printDone("Deleted project %s/%s", args[0], args[1])
	}),
}

func init() {
	projectsUpdateCmd.Flags().StringVar(&projectsUpdateName, "name", "", "New name")
	_ = projectsUpdateCmd.MarkFlagRequired("name")
	projectsDeleteCmd.Flags().BoolVarP(&projectsDeleteForce, "force", "f", false, "Delete without confirmation")

	projectsCmd.AddCommand(projectsListCmd, projectsGetCmd, projectsCreateCmd, projectsUpdateCmd, projectsDeleteCmd)
	rootCmd.AddCommand(projectsCmd)
}
