package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/wasif-raza/mockify-cli/pkg/cli/internal/output"
)

// printResult outputs a single operation result.
//
// Contract: when --json is active, ONLY the JSON encoding of data is written
// to stdout. Human-readable prose (progress messages, hints) must go to stderr
// or be omitted entirely. textFn is called only in text mode.
func printResult(data any, textFn func()) error {
	if jsonOutput {
		return output.JSON(data)
	}
	textFn()
	return nil
}

// printTable outputs a collection of items. In text mode header is written
// first and row is called for each item.
func printTable[T any](items []T, header string, row func(w *tabwriter.Writer, item T)) error {
	if jsonOutput {
		if items == nil {
			items = []T{}
		}
		return output.JSON(items)
	}
	if len(items) == 0 {
		output.Println("No results")
		return nil
	}
	w := output.Table()
	_, _ = fmt.Fprintln(w, header)
	for _, item := range items {
		row(w, item)
	}
	return w.Flush()
}

// printDone reports a completed mutation: the JSON status object in JSON
// mode, the message otherwise.
func printDone(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return printResult(map[string]any{"ok": true, "message": msg}, func() {
		output.Println(msg)
	})
}
