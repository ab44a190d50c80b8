package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/launchpad/internal/auth"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// LoginOptions holds options for the login command.
type LoginOptions struct {
	Email    string
	Password string
}

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	opts := &LoginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the workspace",
		Long: `Sign in to the workspace. Any well-formed email address and a password
of at least six characters are accepted. The session is shared with the
dashboard through the state backend.`,
		Example: `  launchpad login --email ada@example.com
  launchpad login --email ada@example.com --password 'secret-password'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Password (prompted when omitted on a terminal)")

	return cmd
}

func runLogin(cmd *cobra.Command, opts *LoginOptions) error {
	password := opts.Password
	if password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	}

	creds := core.Credentials{Email: strings.TrimSpace(opts.Email), Password: password}
	if err := auth.CheckCredentials(creds); err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	sess, err := cmdCtx.Auth.Login(cmd.Context(), creds)
	if err != nil {
		return fmt.Errorf("sign in failed: %w", err)
	}
	cmdCtx.Renderer.Success(fmt.Sprintf("Signed in as %s <%s>", sess.User.Name, sess.User.Email))
	return nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			_, wasSignedIn := cmdCtx.Auth.Current()
			if err := cmdCtx.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			if wasSignedIn {
				cmdCtx.Renderer.Success("Signed out")
			} else {
				cmdCtx.Renderer.Println(cmdCtx.Renderer.Muted("Not signed in"))
			}
			return nil
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			r := cmdCtx.Renderer
			sess, ok := cmdCtx.Auth.Current()
			if !ok {
				return errors.New("not signed in")
			}
			if handled, err := r.Data(sess.User); handled {
				return err
			}
			r.Printf("%s <%s>\n", sess.User.Name, sess.User.Email)
			r.Println(r.Muted("id " + sess.User.ID))
			return nil
		},
	}
}
