package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"text/tabwriter"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasif-raza/mockify-cli/pkg/auth"
	"github.com/wasif-raza/mockify-cli/pkg/cli/internal/output"
	"github.com/wasif-raza/mockify-cli/pkg/cliconfig"
	"github.com/wasif-raza/mockify-cli/pkg/httpclient"
)

// captureStdout redirects command output into a buffer and sets the output
// mode for the duration of the test.
func captureStdout(t *testing.T, asJSON bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldOut, oldJSON := output.Stdout, jsonOutput
	output.Stdout = &buf
	jsonOutput = asJSON
	t.Cleanup(func() {
		output.Stdout = oldOut
		jsonOutput = oldJSON
	})
	return &buf
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "network",
			err:  fmt.Errorf("%w: dial tcp: connection refused", httpclient.ErrNetwork),
			want: []string{"Error: ", "Is the Mockify API running at http://api.test/api/v1?", cliconfig.EnvAPIURL},
		},
		{
			name: "session expired",
			err:  httpclient.ErrSessionExpired,
			want: []string{"Run 'mockify login' to sign in again."},
		},
		{
			name: "not authenticated",
			err:  auth.ErrNotAuthenticated,
			want: []string{"Error: not authenticated", "Run 'mockify login' to sign in."},
		},
		{
			name: "forbidden",
			err:  httpclient.ErrForbidden,
			want: []string{"cannot access this resource"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatError(tt.err, "http://api.test/api/v1")
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

func TestFormatError_NoHint(t *testing.T) {
	got := FormatError(errors.New("boom"), "")
	assert.Equal(t, "Error: boom", got)
}

func TestFormatError_DefaultURL(t *testing.T) {
	got := FormatError(httpclient.ErrNetwork, "")
	assert.Contains(t, got, cliconfig.DefaultAPIURL)
}

func TestStatLabel(t *testing.T) {
	tests := map[string]string{
		"totalRecords":   "Total Records",
		"organizations":  "Organizations",
		"active_schemas": "Active Schemas",
		"expiring-soon":  "Expiring Soon",
	}
	for in, want := range tests {
		assert.Equal(t, want, statLabel(in), in)
	}
}

func TestFormatStat(t *testing.T) {
	assert.Equal(t, "-", formatStat(nil))
	assert.Equal(t, "42", formatStat(float64(42)))
	assert.Equal(t, "0.75", formatStat(0.75))
	assert.Equal(t, "ok", formatStat("ok"))
	assert.Equal(t, `{"a":1}`, formatStat(map[string]any{"a": 1}))
}

func TestRecordData(t *testing.T) {
	t.Run("inline with assignments", func(t *testing.T) {
		data, err := recordData(`{"name":"Ada","age":36}`, "", []string{"age=37", "address.city=London"})
		require.NoError(t, err)
		assert.Equal(t, "Ada", data["name"])
		assert.EqualValues(t, 37, data["age"])
		assert.Equal(t, map[string]any{"city": "London"}, data["address"])
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "record.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"sku":"A-1"}`), 0o600))
		data, err := recordData("", path, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"sku": "A-1"}, data)
	})

	t.Run("both sources", func(t *testing.T) {
		_, err := recordData(`{}`, "x.json", nil)
		assert.Error(t, err)
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := recordData(`[1,2]`, "", nil)
		assert.ErrorContains(t, err, "must be a JSON object")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := recordData("", "", nil)
		assert.ErrorContains(t, err, "no record data")
	})
}

func TestAskMissing_NonInteractive(t *testing.T) {
	old := interactive
	interactive = func() bool { return false }
	t.Cleanup(func() { interactive = old })

	email, password := "", ""
	err := askMissing(
		field{flag: "email", title: "Email", value: &email},
		field{flag: "password", title: "Password", value: &password, secret: true},
	)
	require.Error(t, err)
	assert.Equal(t, "missing --email, --password (no terminal to prompt on)", err.Error())

	email, password = "a@b.c", "secret"
	assert.NoError(t, askMissing(
		field{flag: "email", title: "Email", value: &email},
		field{flag: "password", title: "Password", value: &password, secret: true},
	))
}

func TestConfirm_NonInteractive(t *testing.T) {
	old := interactive
	interactive = func() bool { return false }
	t.Cleanup(func() { interactive = old })

	ok, err := confirm("Delete?")
	assert.False(t, ok)
	assert.ErrorContains(t, err, "--force")
}

func TestPrintTable(t *testing.T) {
	row := func(w *tabwriter.Writer, s string) { _, _ = fmt.Fprintf(w, "%s\n", s) }

	t.Run("json nil is empty array", func(t *testing.T) {
		buf := captureStdout(t, true)
		require.NoError(t, printTable[string](nil, "NAME", row))
		assert.JSONEq(t, `[]`, buf.String())
	})

	t.Run("text empty", func(t *testing.T) {
		buf := captureStdout(t, false)
		require.NoError(t, printTable([]string{}, "NAME", row))
		assert.Equal(t, "No results\n", buf.String())
	})

	t.Run("text rows", func(t *testing.T) {
		buf := captureStdout(t, false)
		require.NoError(t, printTable([]string{"acme", "globex"}, "NAME", row))
		assert.Equal(t, "NAME\nacme\nglobex\n", buf.String())
	})
}

func TestPrintDone(t *testing.T) {
	buf := captureStdout(t, true)
	require.NoError(t, printDone("Deleted %s", "acme"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, true, got["ok"])
	assert.Equal(t, "Deleted acme", got["message"])
}

func TestSanitizeContextForJSON(t *testing.T) {
	ctx := &cliconfig.Context{APIURL: "http://x/api/v1", AccessToken: "secret-token"}
	out := sanitizeContextForJSON(ctx)
	assert.True(t, out.LoggedIn)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")
}

func TestValidateContextName(t *testing.T) {
	assert.NoError(t, validateContextName("staging"))
	assert.Error(t, validateContextName(""))
	assert.Error(t, validateContextName("my context"))
	assert.Error(t, validateContextName("a/b"))
}

func TestWatch(t *testing.T) {
	captureStdout(t, true)

	t.Run("stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := watch(ctx, time.Millisecond, func() error {
			calls++
			if calls == 3 {
				cancel()
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns on session end", func(t *testing.T) {
		calls := 0
		err := watch(context.Background(), time.Millisecond, func() error {
			calls++
			return httpclient.ErrSessionExpired
		})
		assert.ErrorIs(t, err, httpclient.ErrSessionExpired)
		assert.Equal(t, 1, calls)
	})

	t.Run("rejects bad interval", func(t *testing.T) {
		assert.Error(t, watch(context.Background(), 0, func() error { return nil }))
	})
}

func TestFormatError_InvalidCredentials(t *testing.T) {
	err := fmt.Errorf("%w: %w", auth.ErrInvalidCredentials, &httpclient.APIError{StatusCode: 401, Message: "Bad credentials"})
	assert.Equal(t, "Error: invalid email or password", FormatError(err, ""))
}

func TestUnrecoverable(t *testing.T) {
	assert.True(t, unrecoverable(fmt.Errorf("create record: %w", httpclient.ErrSessionExpired)))
	assert.True(t, unrecoverable(auth.ErrNotAuthenticated))
	assert.True(t, unrecoverable(context.Canceled))
	assert.False(t, unrecoverable(httpclient.ErrValidation))
	assert.False(t, unrecoverable(httpclient.ErrNetwork))
}
