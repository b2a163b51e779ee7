// ABOUTME: Login and logout CLI commands
// ABOUTME: Stores and clears the API bearer token under the XDG data dir
package cli

import (
	"flag"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/harperreed/bellhop/remote"
)

// LoginCommand saves an API token for subsequent commands.
func LoginCommand(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	token := fs.String("token", "", "API bearer token (required)")
	_ = fs.Parse(args)

	if *token == "" {
		return fmt.Errorf("--token is required")
	}

	if err := remote.SaveToken(&oauth2.Token{AccessToken: *token}); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Printf("✓ Token saved to %s\n", remote.TokenPath())
	return nil
}

// LogoutCommand removes the stored token.
func LogoutCommand(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := remote.ClearToken(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	fmt.Println("✓ Logged out")
	return nil
}
