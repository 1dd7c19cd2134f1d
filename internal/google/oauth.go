package google

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultAccount is the account used when none is given.
const DefaultAccount = "default"

// ErrNoCredentials is returned when neither a credentials file nor a
// client id and secret are configured.
var ErrNoCredentials = errors.New("no Google OAuth client configured; set google.credentialsfile or google.clientid and google.clientsecret")

// OAuthSettings selects the OAuth client. CredentialsFile takes precedence
// over ClientID and ClientSecret.
type OAuthSettings struct {
	CredentialsFile string
	ClientID        string
	ClientSecret    string
}

// LoadOAuthConfig builds the OAuth2 configuration for an installed
// (desktop) application client.
func LoadOAuthConfig(s OAuthSettings) (*oauth2.Config, error) {
	if s.CredentialsFile != "" {
		b, err := os.ReadFile(s.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		conf, err := google.ConfigFromJSON(b, DefaultOAuthScopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credentials file %s: %w", s.CredentialsFile, err)
		}
		return conf, nil
	}
	if s.ClientID == "" || s.ClientSecret == "" {
		return nil, ErrNoCredentials
	}
	return &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       DefaultOAuthScopes,
	}, nil
}

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateAccountName restricts account names to characters that are safe
// in file names.
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

// DefaultCacheDir returns the directory tokens are stored in by default.
func DefaultCacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate cache directory: %w", err)
	}
	return filepath.Join(dir, "calimport"), nil
}
