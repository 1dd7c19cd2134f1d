package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/calimport/internal/google"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Google account authorization",
	}
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize calimport to access Google Calendar and Sheets",
		Long: `Start the OAuth consent flow for an account. Open the printed URL in a
browser and grant access; the token is stored in the configured token store
and refreshed automatically afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(a)

			auth, err := a.authenticator()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if auth.HasToken(ctx, account) {
				_, _ = warnColor.Fprintf(out, "Account %q is already authorized; its token will be replaced.\n", account)
			}
			err = google.LoopbackLogin(ctx, auth, account, func(url string) error {
				fmt.Fprintf(out, "Open this URL in your browser to authorize account %q:\n\n  %s\n\n", account, url)
				fmt.Fprintln(out, "Waiting for authorization...")
				return nil
			})
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			_, _ = okColor.Fprintf(out, "Account %q authorized.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Account name to store the token under")
	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List accounts with a stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(a)

			out := cmd.OutOrStdout()
			if _, err := a.authenticator(); err != nil {
				_, _ = warnColor.Fprintf(out, "OAuth client: %v\n", err)
			}
			accounts, err := a.store.Accounts(ctx)
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				fmt.Fprintln(out, "No accounts authorized. Run 'calimport auth login'.")
				return nil
			}
			for _, acct := range accounts {
				_, _ = okColor.Fprintf(out, "%s\n", acct)
			}
			return nil
		},
	}
}
