package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wasif-raza/mockify-cli/internal/matching"
	"github.com/wasif-raza/mockify-cli/pkg/api/types"
	"github.com/wasif-raza/mockify-cli/pkg/cli/internal/output"
	"github.com/wasif-raza/mockify-cli/pkg/portability"
	"github.com/wasif-raza/mockify-cli/pkg/ratelimit"
	"github.com/wasif-raza/mockify-cli/pkg/validation"
)

var recordsCmd = &cobra.Command{
	Use:     "records",
	Aliases: []string{"record"},
	Short:   "Manage the mock records of a schema",
}

func recordRow(w *tabwriter.Writer, r types.MockRecord) {
	data, _ := json.Marshal(r.Data)
	expires := output.Dash(r.ExpiresAt)
	if r.Expired {
		expires += " (expired)"
	}
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, expires, output.Truncate(string(data), 60))
}

func printRecordTable(records []types.MockRecord) {
	w := output.Table()
	_, _ = fmt.Fprintln(w, "ID\tEXPIRES\tDATA")
	for _, r := range records {
		recordRow(w, r)
	}
	_ = w.Flush()
}

var (
	recordsWhere    string
	recordsJSONPath string
)

var recordsListCmd = &cobra.Command{
	Use:     "list <org> <project> <schema>",
	Aliases: []string{"ls"},
	Short:   "List the records of a schema",
	Long: `List the records of a schema.

--where keeps the records for which an expression holds, e.g.
  --where 'data.age > 30 && data.active'
--jsonpath prints the values a JSONPath selects from each record, e.g.
  --jsonpath '$.data.email'`,
	Args: cobra.ExactArgs(3),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		records, err := a.api.Records.List(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		if recordsWhere == "" && recordsJSONPath == "" {
			return printTable(records, "ID\tEXPIRES\tDATA", recordRow)
		}

		docs, err := matching.Documents(records)
		if err != nil {
			return err
		}
		if recordsWhere != "" {
			if docs, err = matching.Filter(recordsWhere, docs); err != nil {
				return err
			}
		}
		if recordsJSONPath == "" {
			var filtered []types.MockRecord
			raw, err := json.Marshal(docs)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(raw, &filtered); err != nil {
				return err
			}
			return printTable(filtered, "ID\tEXPIRES\tDATA", recordRow)
		}

		values, err := matching.Select(recordsJSONPath, docs)
		if err != nil {
			return err
		}
		if jsonOutput {
			if values == nil {
				values = []any{}
			}
			return output.JSON(values)
		}
		for _, v := range values {
			if s, ok := v.(string); ok {
				output.Println(s)
				continue
			}
			raw, _ := json.Marshal(v)
			output.Println(string(raw))
		}
		return nil
	}),
}

var recordsGetCmd = &cobra.Command{
	Use:   "get <org> <project> <schema> <id>",
	Short: "Show one record",
	Args:  cobra.ExactArgs(4),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		r, err := a.api.Records.Get(ctx, args[0], args[1], args[2], args[3])
		if err != nil {
			return err
		}
		return printResult(r, func() {
			output.Printf("Record:  %s\n", r.ID)
			output.Printf("Created: %s\n", output.Dash(r.CreatedAt))
			output.Printf("Expires: %s\n", output.Dash(r.ExpiresAt))
			if r.Expired {
				output.Println("Status:  expired")
			}
			output.Println("Data:")
			_ = output.JSON(r.Data)
		})
	}),
}

var (
	recordInline   string
	recordFile     string
	recordSets     []string
	recordValidate bool
	recordTTL      int
)

// validatorFor compiles the JSON Schema of a schema for --validate.
func validatorFor(ctx context.Context, a *app, org, project, schema string) (*validation.RecordValidator, error) {
	s, err := a.api.Schemas.Get(ctx, org, project, schema)
	if err != nil {
		return nil, err
	}
	return validation.Compile(s.SchemaJSON)
}

var recordsCreateCmd = &cobra.Command{
	Use:   "create <org> <project> <schema>",
	Short: "Create a record",
	Example: `  mockify records create acme shop users --data '{"name":"Ada","age":36}'
  mockify records create acme shop users --set name=Ada --set age=36 --validate`,
	Args: cobra.ExactArgs(3),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		data, err := recordData(recordInline, recordFile, recordSets)
		if err != nil {
			return err
		}
		if recordValidate {
			v, err := validatorFor(ctx, a, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if err := v.Validate(data).Err(); err != nil {
				return err
			}
		}
		r, err := a.api.Records.Create(ctx, args[0], args[1], args[2], data)
		if err != nil {
			return err
		}
		return printResult(r, func() {
			output.Printf("Created record %s\n", r.ID)
		})
	}),
}

var recordsUpdateCmd = &cobra.Command{
	Use:   "update <org> <project> <schema> <id>",
	Short: "Replace the data of a record",
	Args:  cobra.ExactArgs(4),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		data, err := recordData(recordInline, recordFile, recordSets)
		if err != nil {
			return err
		}
		if recordValidate {
			v, err := validatorFor(ctx, a, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if err := v.Validate(data).Err(); err != nil {
				return err
			}
		}
		in := types.RecordInput{Data: data}
		if recordTTL > 0 {
			ttl := recordTTL
			in.TTLMinutes = &ttl
		}
		r, err := a.api.Records.Update(ctx, args[0], args[1], args[2], args[3], in)
		if err != nil {
			return err
		}
		return printResult(r, func() {
			output.Printf("Updated record %s\n", r.ID)
		})
	}),
}

var recordsDeleteForce bool

var recordsDeleteCmd = &cobra.Command{
	Use:     "delete <org> <project> <schema> <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a record",
	Args:    cobra.ExactArgs(4),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		if !recordsDeleteForce {
			ok, err := confirm(fmt.Sprintf("Delete record %s?", args[3]))
			if err != nil || !ok {
				return abortIfDeclined(err)
			}
		}
		if err := a.api.Records.Delete(ctx, args[0], args[1], args[2], args[3]); err != nil {
			return err
		}
		return printDone("Deleted record %s", args[3])
	}),
}

var (
	recordsImportDryRun bool
	recordsImportRate   float64
)

// importResult is the JSON shape of records import.
type importResult struct {
	Files    int      `json:"files"`
	Created  int      `json:"created"`
	Invalid  int      `json:"invalid"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
	DryRun   bool     `json:"dryRun,omitempty"`
	Imported []string `json:"imported,omitempty"`
}

var recordsImportCmd = &cobra.Command{
	Use:   "import <org> <project> <schema> <glob>",
	Short: "Create records from JSON or YAML files",
	Long: `Create records from every file matched by a glob; ** matches any depth.
Each file holds one record object or an array of them. Quote the glob so the
shell does not expand it.`,
	Example: `  mockify records import acme shop users 'fixtures/**/*.json' --validate`,
	Args:    cobra.ExactArgs(4),
	RunE: authedE(func(ctx context.Context, a *app, args []string) error {
		files, err := portability.LoadRecords(args[3])
		if err != nil {
			return err
		}

		var v *validation.RecordValidator
		if recordValidate {
			if v, err = validatorFor(ctx, a, args[0], args[1], args[2]); err != nil {
				return err
			}
		}

		limiter := ratelimit.New(recordsImportRate)
		res := importResult{Files: len(files), DryRun: recordsImportDryRun}
		for _, f := range files {
			for i, data := range f.Records {
				where := fmt.Sprintf("%s[%d]", f.Path, i)
				if v != nil {
					if err := v.Validate(data).Err(); err != nil {
						res.Invalid++
						res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", where, err))
						continue
					}
				}
				if recordsImportDryRun {
					continue
				}
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
				r, err := a.api.Records.Create(ctx, args[0], args[1], args[2], data)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					if unrecoverable(err) {
						return err
					}
					res.Failed++
					res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", where, err))
					continue
				}
				res.Created++
				res.Imported = append(res.Imported, r.ID.String())
			}
		}

		if err := printResult(res, func() {
			for _, e := range res.Errors {
				output.Warn("%s", e)
			}
			if res.DryRun {
				output.Printf("Checked %d file(s): %d invalid record(s)\n", res.Files, res.Invalid)
				return
			}
			output.Printf("Imported %d record(s) from %d file(s)", res.Created, res.Files)
			if res.Invalid+res.Failed > 0 {
				output.Printf(", %d invalid, %d failed", res.Invalid, res.Failed)
			}
			output.Println()
		}); err != nil {
			return err
		}
		if res.Invalid+res.Failed > 0 {
			return fmt.Errorf("%d record(s) were not imported", res.Invalid+res.Failed)
		}
		return nil
	}),
}

func init() {
	recordsListCmd.Flags().StringVar(&recordsWhere, "where", "", "Keep records matching an expression")
	recordsListCmd.Flags().StringVar(&recordsJSONPath, "jsonpath", "", "Print the values a JSONPath selects")

	for _, c := range []*cobra.Command{recordsCreateCmd, recordsUpdateCmd} {
		c.Flags().StringVar(&recordInline, "data", "", "Record data as a JSON object")
		c.Flags().StringVar(&recordFile, "file", "", "File holding the record data (- for stdin)")
		c.Flags().StringArrayVar(&recordSets, "set", nil, "Set a field, e.g. --set age=36 --set address.city=Paris")
	}
	for _, c := range []*cobra.Command{recordsCreateCmd, recordsUpdateCmd, recordsImportCmd} {
		c.Flags().BoolVar(&recordValidate, "validate", false, "Validate data against the schema before sending")
	}
	recordsUpdateCmd.Flags().IntVar(&recordTTL, "ttl", 0, "New time to live in minutes")
	recordsDeleteCmd.Flags().BoolVarP(&recordsDeleteForce, "force", "f", false, "Delete without confirmation")
	recordsImportCmd.Flags().BoolVar(&recordsImportDryRun, "dry-run", false, "Only parse and validate the files")
	recordsImportCmd.Flags().Float64Var(&recordsImportRate, "rate", 0, "Maximum records created per second (0 for no limit)")

	recordsCmd.AddCommand(recordsListCmd, recordsGetCmd, recordsCreateCmd, recordsUpdateCmd, recordsDeleteCmd, recordsImportCmd)
	rootCmd.AddCommand(recordsCmd)
}
