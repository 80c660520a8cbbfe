package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wasif-raza/mockify-cli/pkg/auth"
	"github.com/wasif-raza/mockify-cli/pkg/cli/internal/output"
	"github.com/wasif-raza/mockify-cli/pkg/cliconfig"
	"github.com/wasif-raza/mockify-cli/pkg/httpclient"
)

// ErrAborted is returned when the user cancels an interactive prompt.
var ErrAborted = errors.New("aborted")

// FormatError renders err for the terminal: the message a user should see,
// followed by a hint when the failure has an obvious next step.
func FormatError(err error, apiURL string) string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(message(err))

	switch {
	case errors.Is(err, httpclient.ErrNetwork):
		if apiURL == "" {
			apiURL = cliconfig.DefaultAPIURL
		}
		fmt.Fprintf(&b, "\n\nIs the Mockify API running at %s?", apiURL)
		b.WriteString("\nSet another URL with --api-url, " + cliconfig.EnvAPIURL + " or 'mockify context add'.")
	case errors.Is(err, httpclient.ErrSessionExpired):
		b.WriteString("\n\nRun 'mockify login' to sign in again.")
	case errors.Is(err, auth.ErrNotAuthenticated):
		b.WriteString("\n\nRun 'mockify login' to sign in.")
	case errors.Is(err, httpclient.ErrForbidden):
		b.WriteString("\n\nYour account cannot access this resource.")
	}
	return b.String()
}

// message prefers the auth outcome over the server's wording for it.
func message(err error) string {
	for _, sentinel := range []error{auth.ErrInvalidCredentials, auth.ErrInvalidOrExpiredLink} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return httpclient.UserMessage(err)
}

func printError(err error) {
	url := ""
	if current != nil {
		url = current.conn.APIURL
	}
	fmt.Fprintln(output.Stderr, FormatError(err, url))
}
