package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
)

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// TokenProvider is an interface for providing OAuth tokens for Google APIs
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

// FileTokenProvider reads oauth2.Token JSON files from a directory.
type FileTokenProvider struct {
	dir string
}

// NewFileTokenProvider creates a provider reading tokens from dir.
func NewFileTokenProvider(dir string) *FileTokenProvider {
	return &FileTokenProvider{dir: dir}
}

// GetTokenForAccount loads the stored token of account.
func (p *FileTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	path, err := p.tokenFilePath(account)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", path, err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s has neither an access nor a refresh token", path)
	}
	return &token, nil
}

// HasTokenForAccount checks if a token file exists for account.
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	path, err := p.tokenFilePath(account)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// SaveToken writes token for account with owner-only permissions.
func (p *FileTokenProvider) SaveToken(account string, token *oauth2.Token) error {
	path, err := p.tokenFilePath(account)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (p *FileTokenProvider) tokenFilePath(account string) (string, error) {
	if err := validateAccountName(account); err != nil {
		return "", err
	}
	return filepath.Join(p.dir, account+".json"), nil
}

func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, hyphens and underscores are allowed", account)
	}
	return nil
}
