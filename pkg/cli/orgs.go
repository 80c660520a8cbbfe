package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wasif-raza/mockify-cli/pkg/api/types"
	"github.com/wasif-raza/mockify-cli/pkg/cli/internal/output"
	"github.com/wasif-raza/mockify-cli/pkg/httpclient"
)

var orgsCmd = &cobra.Command{
	Use:     "orgs",
	Aliases: []string{"org", "organizations"},
	Short:   "Manage organizations",
}

// resolveOrgID accepts an organization id or slug.
func resolveOrgID(ctx context.Context, a *app, ref string) (int64, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}
	orgs, err := a.api.Organizations.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, o := range orgs {
		if o.Slug == ref {
			return o.ID, nil
		}
	}
	return 0, fmt.Errorf("organization %q not found: %w", ref, httpclient.ErrNotFound)
}

func orgRow(w *tabwriter.Writer, o types.Organization) {
	_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", o.ID, o.Name, o.Slug, o.ProjectCount, output.Dash(o.CreatedAt))
}

var orgsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your organizations",
	Args:    cobra.NoArgs,
	RunE: authedE(func(ctx context.Context, a *app, _ []string) error {
		orgs, err := a.api.Organizations.List(ctx)
		if err != nil {
			return err
		}
		return printTable(orgs, "ID\tNAME\tSLUG\tPROJECTS\tCREATED", orgRow)
	}),
}

var orgsGetCmd = &cobra.Command{
	Use:   "get <org>",
	Short: "Show an organization and its projects",
	Args:  cobra.ExactArgs(1),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		id, err := resolveOrgID(ctx, a, args[0])
		if err != nil {
			return err
		}
		org, err := a.api.Organizations.Get(ctx, id)
		if err != nil {
			return err
		}
		return printResult(org, func() {
			output.Printf("Organization: %s (%s)\n", org.Name, org.Slug)
			output.Printf("ID:           %d\n", org.ID)
			if org.Owner != nil {
				output.Printf("Owner:        %s\n", org.Owner.Name)
			}
			output.Printf("Created:      %s\n", output.Dash(org.CreatedAt))
			if len(org.Projects) == 0 {
				output.Println("\nNo projects yet")
				return
			}
			output.Println()
			w := output.Table()
			_, _ = fmt.Fprintln(w, "PROJECT\tSLUG\tSCHEMAS")
			for _, p := range org.Projects {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", p.Name, p.Slug, p.SchemaCount)
			}
			_ = w.Flush()
		})
	}),
}

var orgsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an organization",
	Args:  cobra.ExactArgs(1),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		org, err := a.api.Organizations.Create(ctx, types.OrganizationInput{Name: args[0]})
		if err != nil {
			return err
		}
		return printResult(org, func() {
			output.Printf("Created organization %q (slug %s, id %d)\n", org.Name, org.Slug, org.ID)
		})
	}),
}

var orgsUpdateName string

var orgsUpdateCmd = &cobra.Command{
	Use:   "update <org>",
	Short: "Rename an organization",
	Args:  cobra.ExactArgs(1),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		id, err := resolveOrgID(ctx, a, args[0])
		if err != nil {
			return err
		}
		org, err := a.api.Organizations.Update(ctx, id, types.OrganizationInput{Name: orgsUpdateName})
		if err != nil {
			return err
		}
		return printResult(org, func() {
			output.Printf("Updated organization %d: %s\n", org.ID, org.Name)
		})
	}),
}

var orgsDeleteForce bool

var orgsDeleteCmd = &cobra.Command{
	Use:     "delete <org>",
	Aliases: []string{"rm"},
	Short:   "Delete an organization with all its projects",
	Args:    cobra.ExactArgs(1),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		id, err := resolveOrgID(ctx, a, args[0])
		if err != nil {
			return err
		}
		if !orgsDeleteForce {
			ok, err := confirm(fmt.Sprintf("Delete organization %s and everything in it?", args[0]))
			if err != nil || !ok {
				return abortIfDeclined(err)
			}
		}
		if err := a.api.Organizations.Delete(ctx, id); err != nil {
			return err
		}
		return printDone("Deleted organization %s", args[0])
	}),
}

// abortIfDeclined maps a declined confirmation to ErrAborted.
func abortIfDeclined(err error) error {
	if err != nil {
		return err
	}
	return ErrAborted
}

func init() {
	orgsUpdateCmd.Flags().StringVar(&orgsUpdateName, "name", "", "New name")
	_ = orgsUpdateCmd.MarkFlagRequired("name")
	orgsDeleteCmd.Flags().BoolVarP(&orgsDeleteForce, "force", "f", false, "Delete without confirmation")

	orgsCmd.AddCommand(orgsListCmd, orgsGetCmd, orgsCreateCmd, orgsUpdateCmd, orgsDeleteCmd)
	rootCmd.AddCommand(orgsCmd)
}
