package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/wasif-raza/mockify-cli/pkg/auth"
	"github.com/wasif-raza/mockify-cli/pkg/cli/internal/output"
	"github.com/wasif-raza/mockify-cli/pkg/session"
)

// sessionOutput is the JSON shape of commands that open a session. Tokens
// are never printed.
type sessionOutput struct {
	Context   string     `json:"context"`
	User      *auth.User `json:"user,omitempty"`
	ExpiresIn int64      `json:"expiresIn,omitempty"`
}

func (a *app) printSession(verb string, res *auth.AuthResult) error {
	a.checkPersisted()
	out := sessionOutput{Context: a.conn.ContextName, User: res.User, ExpiresIn: res.ExpiresIn}
	return printResult(out, func() {
		if res.User != nil {
			output.Printf("%s as %s <%s>\n", verb, res.User.Name, res.User.Email)
		} else {
			output.Printf("%s\n", verb)
		}
		output.Printf("Context: %s (%s)\n", a.conn.ContextName, a.conn.APIURL)
	})
}

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Sign in and store the session in the current context.

Missing credentials are prompted for when running in a terminal.`,
	Args: cobra.NoArgs,
	RunE: runE(func(ctx context.Context, a *app, _ []string) error {
		if err := askMissing(
			field{flag: "email", title: "Email", value: &loginEmail},
			field{flag: "password", title: "Password", value: &loginPassword, secret: true},
		); err != nil {
			return err
		}
		res, err := a.auth.Login(ctx, loginEmail, loginPassword)
		if err != nil {
			return err
		}
		return a.printSession("Logged in", res)
	}),
}

var (
	registerName     string
	registerEmail    string
	registerPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: runE(func(ctx context.Context, a *app, _ []string) error {
		if err := askMissing(
			field{flag: "name", title: "Name", value: &registerName},
			field{flag: "email", title: "Email", value: &registerEmail},
			field{flag: "password", title: "Password", value: &registerPassword, secret: true},
		); err != nil {
			return err
		}
		res, err := a.auth.Register(ctx, registerName, registerEmail, registerPassword)
		if err != nil {
			return err
		}
		return a.printSession("Registered", res)
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session of the current context",
	Args:  cobra.NoArgs,
	RunE: runE(func(ctx context.Context, a *app, _ []string) error {
		if err := a.auth.Logout(ctx); err != nil {
			output.Warn("the server did not confirm the logout: %v", err)
		}
		a.checkPersisted()
		return printDone("Logged out of context %q", a.conn.ContextName)
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: authedE(func(ctx context.Context, a *app, _ []string) error {
		user, err := a.auth.CurrentUser(ctx)
		if err != nil {
			return err
		}
		return printResult(user, func() {
			output.Printf("%s <%s>\n", user.Name, user.Email)
			output.Printf("ID: %d\n", user.ID)
		})
	}),
}

// statusOutput is the JSON shape of the status command.
type statusOutput struct {
	Context    string     `json:"context"`
	APIURL     string     `json:"apiUrl"`
	TokenStore string     `json:"tokenStore"`
	LoggedIn   bool       `json:"loggedIn"`
	Status     string     `json:"status"`
	Subject    string     `json:"subject,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	Expired    bool       `json:"expired,omitempty"`
	User       *auth.User `json:"user,omitempty"`
}

var statusOffline bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session of the current context",
	Long: `Show which API and context are in use and whether a session is held.

The session is checked against the API unless --offline is given; the token
claims shown are read locally and are informational only.`,
	Args: cobra.NoArgs,
	RunE: runE(func(ctx context.Context, a *app, _ []string) error {
		out := statusOutput{
			Context:    a.conn.ContextName,
			APIURL:     a.conn.APIURL,
			TokenStore: a.conn.TokenStore,
		}
		if a.conn.EnvToken != "" {
			out.TokenStore = "env"
		}

		if _, ok := a.tokens.Get(); !ok && !statusOffline {
			// A server-side session may still outlive the stored token.
			if a.auth.Bootstrap(ctx) {
				a.checkPersisted()
			}
		}

		token, ok := a.tokens.Get()
		out.LoggedIn = ok
		if ok {
			if info, err := session.InspectToken(token); err == nil {
				out.Subject = info.Subject
				if !info.ExpiresAt.IsZero() {
					exp := info.ExpiresAt
					out.ExpiresAt = &exp
					out.Expired = info.Expired(time.Now())
				}
			}
			if !statusOffline {
				user, err := a.auth.CurrentUser(ctx)
				switch {
				case err == nil:
					out.User = user
				case errors.Is(err, auth.ErrNotAuthenticated):
					out.LoggedIn = false
				default:
					return err
				}
			}
		}
		out.Status = a.auth.Status().String()

		return printResult(out, func() {
			output.Printf("Context:     %s\n", out.Context)
			output.Printf("API URL:     %s\n", out.APIURL)
			output.Printf("Token store: %s\n", out.TokenStore)
			if !out.LoggedIn {
				output.Println("Session:     not logged in")
				return
			}
			if out.User != nil {
				output.Printf("Session:     %s <%s>\n", out.User.Name, out.User.Email)
			} else {
				output.Println("Session:     token held (not checked)")
			}
			if out.ExpiresAt != nil {
				state := "valid until"
				if out.Expired {
					state = "expired at"
				}
				output.Printf("Token:       %s %s\n", state, out.ExpiresAt.Local().Format(time.RFC1123))
			}
		})
	}),
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rotate the access token of the current session",
	Args:  cobra.NoArgs,
	RunE: authedE(func(ctx context.Context, a *app, _ []string) error {
		if err := a.auth.Refresh(ctx); err != nil {
			return err
		}
		a.checkPersisted()
		return printResult(sessionOutput{Context: a.conn.ContextName}, func() {
			output.Printf("Session refreshed for context %q\n", a.conn.ContextName)
		})
	}),
}

var verifyEmailCmd = &cobra.Command{
	Use:   "verify-email <token>",
	Short: "Verify an email address with the token from the verification email",
	Args:  cobra.ExactArgs(1),
	RunE: runE(func(ctx context.Context, a *app, args []string) error {
		res, err := a.auth.VerifyEmail(ctx, args[0])
		if err != nil {
			return err
		}
		return a.printSession("Email verified, logged in", res)
	}),
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password <email>",
	Short: "Request a password reset email",
	Args:  cobra.ExactArgs(1),
	RunE: runE(func(ctx context.Context, a *app, args []string) error {
		a.auth.ForgotPassword(ctx, args[0])
		return printDone("If an account exists for %s, a password reset link has been sent.", args[0])
	}),
}

var resetPassword string

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <token>",
	Short: "Set a new password with the token from a reset email",
	Args:  cobra.ExactArgs(1),
	RunE: runE(func(ctx context.Context, a *app, args []string) error {
		if err := askMissing(field{flag: "password", title: "New password", value: &resetPassword, secret: true}); err != nil {
			return err
		}
		if err := a.auth.ResetPassword(ctx, args[0], resetPassword); err != nil {
			if errors.Is(err, auth.ErrInvalidOrExpiredLink) {
				return errors.New("invalid or expired reset link, request a new one with 'mockify forgot-password'")
			}
			return err
		}
		return printDone("Password updated. Run 'mockify login' to sign in.")
	}),
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication helpers",
}

var googleURLCmd = &cobra.Command{
	Use:   "google-url",
	Short: "Print the Google sign-in URL",
	Args:  cobra.NoArgs,
	RunE: runE(func(_ context.Context, a *app, _ []string) error {
		u := a.auth.GoogleAuthURL()
		return printResult(map[string]string{"url": u}, func() {
			output.Println(u)
		})
	}),
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password")

	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "Account email")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "Account password")

	resetPasswordCmd.Flags().StringVarP(&resetPassword, "password", "p", "", "New password")

	statusCmd.Flags().BoolVar(&statusOffline, "offline", false, "Do not contact the API")

	authCmd.AddCommand(googleURLCmd)
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, statusCmd, refreshCmd,
		verifyEmailCmd, forgotPasswordCmd, resetPasswordCmd, authCmd)
}
