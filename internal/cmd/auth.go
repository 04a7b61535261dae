package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakura-poetry/poetryctl/internal/api"
	"github.com/sakura-poetry/poetryctl/internal/errors"
	"github.com/sakura-poetry/poetryctl/internal/session"
	"github.com/sakura-poetry/poetryctl/internal/ux"
)

func newAuthCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the login session",
		Long: `Log in to the backend, inspect the current session and log out.

The token is stored in the configured backend (a file under ~/.poetryctl by
default) so later commands reuse it.`,
	}

	cmd.AddCommand(
		newAuthLoginCommand(st),
		newAuthLogoutCommand(st),
		newAuthStatusCommand(st),
		newAuthWhoamiCommand(st),
		newAuthRefreshCommand(st),
		newAuthRegisterCommand(st),
	)
	return cmd
}

func newAuthLoginCommand(st *state) *cobra.Command {
	var (
		username      string
		password      string
		passwordStdin bool
		force         bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a username and password",
		Long: `Log in and store the session token.

Missing credentials are prompted for when running in a terminal. In scripts,
pass --username and pipe the password with --password-stdin.`,
		Example: `  poetryctl auth login
  poetryctl auth login -u admin
  echo "$PASSWORD" | poetryctl auth login -u admin --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFor(st)
			ctx := cmd.Context()

			if app.Store.IsLoggedIn() && !force {
				fmt.Fprintf(app.Out, "Already logged in%s. Use --force to log in again.\n", loggedInAs(app))
				return nil
			}

			if passwordStdin {
				p, err := readSecret(st.stdin)
				if err != nil {
					return err
				}
				password = p
			}

			if username == "" || password == "" {
				if !st.canPrompt() {
					return errors.NewValidationError("username and password are required", nil).
						WithSuggestion("Pass --username and --password-stdin, or run in a terminal")
				}
				u, p, err := ux.PromptCredentials(username, password)
				if err != nil {
					return err
				}
				username, password = u, p
			}

			res, err := app.Store.Login(ctx, session.Credentials{Username: username, Password: password})
			if err != nil {
				if res != nil && app.Store.IsLoggedIn() {
					fmt.Fprintln(app.Out, "Logged in, but the profile could not be loaded.")
				}
				return err
			}

			name := username
			if p := app.Store.Profile(); p != nil {
				name = p.DisplayName()
			}
			fmt.Fprintf(app.Out, "Logged in as %s.\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "log in even if a session exists")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
	return cmd
}

func newAuthLogoutCommand(st *state) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Long: `Clear the stored token and profile. With --remote the server is told
first; a failure there is logged and the local session is cleared anyway.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFor(st)
			ctx := cmd.Context()

			if remote && app.Store.IsLoggedIn() {
				if err := app.Auth.Logout(ctx); err != nil {
					app.Logger.Warn("remote logout failed", "error", err)
				}
			}
			if err := app.Store.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "Logged out.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "also invalidate the token on the server")
	return cmd
}

// statusView is the offline description of the stored session.
type statusView struct {
	LoggedIn    bool       `json:"loggedIn" yaml:"loggedIn"`
	Server      string     `json:"server" yaml:"server"`
	Storage     string     `json:"storage" yaml:"storage"`
	Fingerprint string     `json:"tokenFingerprint,omitempty" yaml:"tokenFingerprint,omitempty"`
	Subject     string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Expired     bool       `json:"expired,omitempty" yaml:"expired,omitempty"`
	Next        string     `json:"next,omitempty" yaml:"next,omitempty"`
}

func (v statusView) Table() ux.Table {
	rows := [][]string{
		{"Logged in", yesNo(v.LoggedIn)},
		{"Server", v.Server},
		{"Storage", v.Storage},
	}
	if v.Fingerprint != "" {
		rows = append(rows, []string{"Token", v.Fingerprint})
	}
	if v.Subject != "" {
		rows = append(rows, []string{"Subject", v.Subject})
	}
	if v.ExpiresAt != nil {
		exp := v.ExpiresAt.Local().Format(time.RFC3339)
		if v.Expired {
			exp += " (expired)"
		}
		rows = append(rows, []string{"Expires", exp})
	}
	if v.Next != "" {
		rows = append(rows, []string{"Next", v.Next})
	}
	return ux.Table{Rows: rows}
}

func newAuthStatusCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session without contacting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFor(st)

			view := statusView{
				LoggedIn: app.Store.IsLoggedIn(),
				Server:   app.Config.API.BaseURL,
				Storage:  app.Config.Storage.Backend,
			}
			if view.LoggedIn {
				view.Fingerprint = session.Fingerprint(app.Store.Token())
				if claims, err := app.Store.Claims(); err == nil {
					view.Subject = claims.Subject
					if !claims.ExpiresAt.IsZero() {
						exp := claims.ExpiresAt
						view.ExpiresAt = &exp
						view.Expired = claims.Expired(time.Now())
					}
				}
			}
			view.Next = ux.NextStep(ux.Setup{
				HasConfig: app.Config.Source != "",
				LoggedIn:  view.LoggedIn,
				Expired:   view.Expired,
			})
			return app.Print(view)
		},
	}
}

func newAuthWhoamiCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Fetch the signed-in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFor(st)
			if err := requireSession(app); err != nil {
				return err
			}

			profile, err := app.Store.FetchProfile(cmd.Context())
			if err != nil {
				return err
			}
			return app.Render(profile, profileTable(profile))
		},
	}
}

func newAuthRefreshCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the current token for a fresh one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFor(st)
			ctx := cmd.Context()
			if err := requireSession(app); err != nil {
				return err
			}

			res, err := app.Auth.Refresh(ctx)
			if err != nil {
				return err
			}
			if res == nil || res.Token == "" {
				return errors.New(errors.KindAuth, errors.ErrCodeMissingToken, "refresh response carried no token")
			}
			if err := app.Store.SetToken(ctx, res.Token); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "Token refreshed.")
			return nil
		},
	}
}

func newAuthRegisterCommand(st *state) *cobra.Command {
	var (
		req           api.RegisterRequest
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Long:  `Create an account on the backend. Registering does not log you in.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFor(st)

			if passwordStdin {
				p, err := readSecret(st.stdin)
				if err != nil {
					return err
				}
				req.Password = p
			}
			if req.Username == "" || req.Password == "" {
				if !st.canPrompt() {
					return errors.NewValidationError("username and password are required", nil).
						WithSuggestion("Pass --username and --password-stdin, or run in a terminal")
				}
				u, p, err := ux.PromptCredentials(req.Username, req.Password)
				if err != nil {
					return err
				}
				req.Username, req.Password = u, p
			}
			creds := session.Credentials{Username: req.Username, Password: req.Password}
			if err := creds.Validate(); err != nil {
				return err
			}

			msg, err := app.Auth.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Account created."
			}
			fmt.Fprintln(app.Out, msg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Nickname, "nickname", "", "display name")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func profileTable(p *session.UserProfile) ux.Table {
	return ux.Table{Rows: [][]string{
		{"ID", fmt.Sprint(p.ID)},
		{"Username", p.Username},
		{"Nickname", p.Nickname},
		{"Email", p.Email},
		{"Phone", p.Phone},
		{"Roles", strings.Join(p.Roles, ", ")},
		{"Permissions", strings.Join(p.Permissions, ", ")},
	}}
}

func loggedInAs(app *App) string {
	if p := app.Store.Profile(); p != nil {
		return " as " + p.DisplayName()
	}
	if claims, err := app.Store.Claims(); err == nil && claims.Subject != "" {
		return " as " + claims.Subject
	}
	return ""
}

// readSecret reads one line from r without the trailing newline.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.NewValidationError("failed to read password from stdin", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
