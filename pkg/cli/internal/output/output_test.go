package output

import (
	"bytes"
	"testing"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	old := Stdout
	Stdout = &buf
	t.Cleanup(func() { Stdout = old })

	if err := JSON(map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\n  \"a\": 1\n}\n" {
		t.Errorf("JSON output = %q", got)
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	old := Stdout
	Stdout = &buf
	t.Cleanup(func() { Stdout = old })

	w := Table()
	_, _ = w.Write([]byte("ID\tNAME\n1\tAcme\n"))
	_ = w.Flush()
	if got := buf.String(); got != "ID  NAME\n1   Acme\n" {
		t.Errorf("table output = %q", got)
	}
}

func TestDashAndTruncate(t *testing.T) {
	if Dash("") != "-" || Dash("x") != "x" {
		t.Error("Dash")
	}
	if got := Truncate("abcdefgh", 6); got != "abc..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("abc", 6); got != "abc" {
		t.Errorf("Truncate = %q", got)
	}
}
