// ABOUTME: Auth token management for the notifications API
// ABOUTME: Handles token storage at XDG paths and bearer header construction
package remote

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
)

// TokenPath returns XDG-compliant path for storing the API token.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, AppName, "credentials.json")
}

// SaveToken saves the token to the XDG data directory.
func SaveToken(token *oauth2.Token) error {
	path := TokenPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	// 0600: token grants access to the account's notifications
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// LoadToken loads the token from the XDG data directory.
func LoadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// ClearToken removes the stored token (logout).
func ClearToken() error {
	err := os.Remove(TokenPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
