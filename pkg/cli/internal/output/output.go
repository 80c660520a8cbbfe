// Package output provides common output formatting utilities.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// Stdout and Stderr are the destinations of command output. Tests replace them.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// JSON writes indented JSON to Stdout.
func JSON(v any) error {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table creates an aligned table writer for Stdout.
// Remember to call Flush() when done writing.
func Table() *tabwriter.Writer {
	return tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
}

// Printf writes formatted text to Stdout.
func Printf(format string, args ...any) {
	fmt.Fprintf(Stdout, format, args...)
}

// Println writes a line to Stdout.
func Println(args ...any) {
	fmt.Fprintln(Stdout, args...)
}

// Warn prints a warning message to Stderr.
func Warn(format string, args ...any) {
	fmt.Fprintf(Stderr, "Warning: "+format+"\n", args...)
}

// Info prints a progress message to Stderr, keeping Stdout clean for data.
func Info(format string, args ...any) {
	fmt.Fprintf(Stderr, format+"\n", args...)
}

// Dash returns s, or "-" when s is empty.
func Dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Truncate shortens s to n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 4 {
		return s
	}
	return string(r[:n-3]) + "..."
}
