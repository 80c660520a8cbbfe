package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wasif-raza/mockify-cli/pkg/api/types"
	"github.com/wasif-raza/mockify-cli/pkg/cli/internal/output"
	"github.com/wasif-raza/mockify-cli/pkg/portability"
	"github.com/wasif-raza/mockify-cli/pkg/validation"
)

var schemasCmd = &cobra.Command{
	Use:     "schemas",
	Aliases: []string{"schema"},
	Short:   "Manage the schemas of a project",
}

var schemasListCmd = &cobra.Command{
	Use:     "list <org> <project>",
	Aliases: []string{"ls"},
	Short:   "List the schemas of a project",
	Args:    cobra.ExactArgs(2),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		schemas, err := a.api.Schemas.List(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printTable(schemas, "ID\tNAME\tSLUG\tRECORDS\tCREATED", func(w *tabwriter.Writer, s types.MockSchema) {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Slug, s.RecordCount, output.Dash(s.CreatedAt))
		})
	}),
}

var schemasGetCmd = &cobra.Command{
	Use:   "get <org> <project> <schema>",
	Short: "Show a schema, its JSON Schema and its latest records",
	Args:  cobra.ExactArgs(3),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		s, err := a.api.Schemas.Get(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		return printResult(s, func() {
			output.Printf("Schema:  %s (%s/%s/%s)\n", s.Name, args[0], args[1], s.Slug)
			output.Printf("ID:      %d\n", s.ID)
			output.Printf("Records: %d\n", s.RecordCount)
			if len(s.SchemaJSON) > 0 {
				var pretty any
				if json.Unmarshal(s.SchemaJSON, &pretty) == nil {
					output.Println("\nJSON Schema:")
					_ = output.JSON(pretty)
				}
			}
			if len(s.RecentRecords) > 0 {
				output.Println("\nRecent records:")
				printRecordTable(s.RecentRecords)
			}
		})
	}),
}

var (
	schemaInline string
	schemaFile   string
)

// schemaInput reads and checks a JSON Schema before it is sent.
func schemaInput(name string) (types.SchemaInput, error) {
	raw, err := readDocument(schemaInline, schemaFile)
	if err != nil {
		return types.SchemaInput{}, err
	}
	if len(raw) == 0 {
		return types.SchemaInput{}, errors.New("no JSON Schema; pass --schema or --schema-file")
	}
	if _, err := validation.Compile(raw); err != nil {
		return types.SchemaInput{}, err
	}
	return types.SchemaInput{Name: name, SchemaJSON: raw}, nil
}

var schemasCreateCmd = &cobra.Command{
	Use:   "create <org> <project> <name>",
	Short: "Create a schema from a JSON Schema document",
	Args:  cobra.ExactArgs(3),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		in, err := schemaInput(args[2])
		if err != nil {
			return err
		}
		s, err := a.api.Schemas.Create(ctx, args[0], args[1], in)
		if err != nil {
			return err
		}
		return printResult(s, func() {
			output.Printf("Created schema %q (%s/%s/%s)\n", s.Name, args[0], args[1], s.Slug)
		})
	}),
}

var schemasUpdateName string

var schemasUpdateCmd = &cobra.Command{
	Use:   "update <org> <project> <schema>",
	Short: "Replace the name and JSON Schema of a schema",
	Args:  cobra.ExactArgs(3),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		name := schemasUpdateName
		if name == "" {
			cur, err := a.api.Schemas.Get(ctx, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			name = cur.Name
		}
		in, err := schemaInput(name)
		if err != nil {
			return err
		}
		s, err := a.api.Schemas.Update(ctx, args[0], args[1], args[2], in)
		if err != nil {
			return err
		}
		return printResult(s, func() {
			output.Printf("Updated schema %s/%s/%s\n", args[0], args[1], s.Slug)
		})
	}),
}

var schemasDeleteForce bool

var schemasDeleteCmd = &cobra.Command{
	Use:     "delete <org> <project> <schema>",
	Aliases: []string{"rm"},
	Short:   "Delete a schema and its records",
	Args:    cobra.ExactArgs(3),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		if !schemasDeleteForce {
			ok, err := confirm(fmt.Sprintf("Delete schema %s/%s/%s and its records?", args[0], args[1], args[2]))
			if err != nil || !ok {
				return abortIfDeclined(err)
			}
		}
		if err := a.api.Schemas.Delete(ctx, args[0], args[1], args[2]); err != nil {
			return err
		}
		return printDone("Deleted schema %s/%s/%s", args[0], args[1], args[2])
	}),
}

var (
	openapiFormat string
	openapiOut    string
)

var schemasOpenAPICmd = &cobra.Command{
	Use:   "openapi <org> <project>",
	Short: "Export the record endpoints of a project as OpenAPI 3",
	Args:  cobra.ExactArgs(2),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		format, err := portability.ParseFormat(openapiFormat)
		if err != nil {
			return err
		}
		if jsonOutput {
			format = portability.FormatJSON
		}

		project, err := a.api.Projects.Get(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		// The list carries each schema's JSON Schema; project details may not.
		schemas, err := a.api.Schemas.List(ctx, args[0], args[1])
		if err != nil {
			return err
		}

		doc, err := portability.ExportOpenAPI(portability.ExportInput{
			ServerURL: a.http.BaseURL(),
			Org:       args[0],
			Project:   project,
			Schemas:   schemas,
		})
		if err != nil {
			return err
		}
		data, err := portability.Marshal(doc, format)
		if err != nil {
			return err
		}

		if openapiOut == "" || openapiOut == "-" {
			_, err = output.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(openapiOut, data, 0o644); err != nil {
			return err
		}
		output.Info("Wrote %s", openapiOut)
		return nil
	}),
}

func init() {
	for _, c := range []*cobra.Command{schemasCreateCmd, schemasUpdateCmd} {
		c.Flags().StringVar(&schemaInline, "schema", "", "JSON Schema document")
		c.Flags().StringVar(&schemaFile, "schema-file", "", "File holding the JSON Schema (- for stdin)")
	}
	schemasUpdateCmd.Flags().StringVar(&schemasUpdateName, "name", "", "New name (default: keep)")
	schemasDeleteCmd.Flags().BoolVarP(&schemasDeleteForce, "force", "f", false, "Delete without confirmation")
	schemasOpenAPICmd.Flags().StringVar(&openapiFormat, "format", "yaml", "Output format (yaml, json)")
	schemasOpenAPICmd.Flags().StringVarP(&openapiOut, "output", "o", "", "Write to file instead of stdout")

	schemasCmd.AddCommand(schemasListCmd, schemasGetCmd, schemasCreateCmd, schemasUpdateCmd, schemasDeleteCmd, schemasOpenAPICmd)
	rootCmd.AddCommand(schemasCmd)
}
