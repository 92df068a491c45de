package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/gdocs-mcp/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize a Google account",
		Long: `Authorize a Google account for the document tools.

Opens an OAuth consent URL. Visit the URL in a browser, grant access, and
paste the authorization code back into this command. The resulting token is
stored in the user cache directory and refreshed automatically.

OAuth client credentials must be present in the GOOGLE_CLIENT_ID and
GOOGLE_CLIENT_SECRET environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(cmd, account)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Name for the account (e.g. 'work', 'personal')")

	return cmd
}

func runAuth(cmd *cobra.Command, account string) error {
	conf := google.GetOAuthConfig()
	if conf.ClientID == "" || conf.ClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}

	if google.HasTokenForAccount(account) {
		fmt.Fprintf(cmd.OutOrStdout(), "A token already exists for account %q and will be replaced.\n", account)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Visit this URL to authorize account %q:\n\n%s\n\n", account, google.GetAuthURL())
	fmt.Fprint(cmd.OutOrStdout(), "Enter the authorization code: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("authorization code cannot be empty")
	}

	if err := google.SaveTokenForAccount(cmd.Context(), account, code); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Token saved for account %q.\n", account)
	return nil
}
