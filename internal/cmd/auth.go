package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/lexai-app/lexai/internal/errors"
	"github.com/lexai-app/lexai/internal/session"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Long: `Sign in to the LexAI backend. The token and user record are stored so
the interactive interface and later commands start signed in.

Missing values are prompted for; the password is read without echo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd)
			if err := p.fill(&email, "Email", false); err != nil {
				return err
			}
			if err := p.fill(&password, "Password", true); err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.shell.Login(cmd.Context(), email, password); err != nil {
				return fmt.Errorf("login failed: %s", errors.UserMessage(err))
			}
			printSignedIn(cmd.OutOrStdout(), a.shell.Current())
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var email, password, name, organization string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in with it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd)
			for _, f := range []struct {
				dst    *string
				label  string
				secret bool
			}{
				{&name, "Name", false},
				{&organization, "Organization", false},
				{&email, "Email", false},
				{&password, "Password", true},
			} {
				if err := p.fill(f.dst, f.label, f.secret); err != nil {
					return err
				}
				if *f.dst == "" {
					return errors.NewValidationError("register", "Completa todos los campos")
				}
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.shell.Register(cmd.Context(), email, password, name, organization); err != nil {
				return fmt.Errorf("registration failed: %s", errors.UserMessage(err))
			}
			printSignedIn(cmd.OutOrStdout(), a.shell.Current())
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "full name")
	cmd.Flags().StringVarP(&organization, "organization", "o", "", "law firm or organization")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	var purge bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Long: `Forget the stored session. The selected legal category is kept unless
--purge is given, which removes every value the client has stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			wasSignedIn := a.shell.Authenticated()
			if purge {
				if err := a.shell.Clear(cmd.Context()); err != nil {
					return err
				}
			} else {
				a.shell.Logout(cmd.Context())
			}

			if wasSignedIn {
				fmt.Fprintln(out, "Signed out")
			} else {
				fmt.Fprintln(out, "Not signed in")
			}
			if purge {
				fmt.Fprintf(out, "Cleared stored credentials (%s storage)\n", a.cfg.Storage.Backend)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&purge, "purge", false, "remove every stored value, not just the session")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the signed-in user and token details",
		Long: `Show the stored session. Token claims are decoded without verifying
the signature and are informational only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend: %s\n", a.cfg.Backend.URL)
			fmt.Fprintf(out, "Storage: %s\n", a.cfg.Storage.Backend)

			sess := a.shell.Current()
			if sess == nil {
				fmt.Fprintln(out, "Not signed in")
				return nil
			}
			printSignedIn(out, sess)

			claims, err := a.shell.Claims()
			if err != nil {
				fmt.Fprintf(out, "Token: unreadable (%v)\n", err)
				return nil
			}
			printClaims(out, claims, time.Now())
			return nil
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			h, err := a.client.Health(cmd.Context())
			if err != nil {
				return backendError("backend "+a.cfg.Backend.URL, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", a.cfg.Backend.URL, h.Status, h.Service)
			return nil
		},
	}
}

func printSignedIn(w io.Writer, sess *session.Session) {
	if sess == nil {
		return
	}
	fmt.Fprintf(w, "Signed in as %s <%s>\n", sess.User.Name, sess.User.Email)
	if sess.User.Organization != "" {
		fmt.Fprintf(w, "Organization: %s\n", sess.User.Organization)
	}
}

func printClaims(w io.Writer, c *session.Claims, now time.Time) {
	if c.UserID != "" {
		fmt.Fprintf(w, "User ID: %s\n", c.UserID)
	}
	if c.OrgID != "" {
		fmt.Fprintf(w, "Organization ID: %s\n", c.OrgID)
	}
	switch {
	case c.ExpiresAt.IsZero():
		fmt.Fprintln(w, "Token expires: never")
	case c.Expired(now):
		fmt.Fprintf(w, "Token expired: %s\n", c.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	default:
		fmt.Fprintf(w, "Token expires: %s\n", c.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}
}
