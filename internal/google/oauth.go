package google

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// DefaultAccount is used when a tool call names no account.
const DefaultAccount = "default"

// Config holds the OAuth client credentials and the token directory.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenDir     string
}

// DefaultConfig reads GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and
// AURA_TOKEN_DIR, falling back to $XDG_CONFIG_HOME/aura/tokens.
func DefaultConfig() Config {
	dir := os.Getenv("AURA_TOKEN_DIR")
	if dir == "" {
		dir = filepath.Join(configDir(), "aura", "tokens")
	}
	return Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		TokenDir:     dir,
	}
}

// OAuthConfig returns the oauth2 configuration used to refresh tokens.
func (c Config) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       DefaultOAuthScopes,
	}
}

// HTTPClient returns an HTTP client authorized as account. The token is
// refreshed through oauth2 when it expires.
func HTTPClient(ctx context.Context, config Config, provider TokenProvider, account string) (*http.Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}
	token, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no Google token for account %s: %w", account, err)
	}

	client := oauth2.NewClient(ctx, config.OAuthConfig().TokenSource(ctx, token))

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return client, nil
}

// ClientOptions returns the option set for constructing a Google API service
// authorized as account.
func ClientOptions(ctx context.Context, config Config, provider TokenProvider, account string) ([]option.ClientOption, error) {
	client, err := HTTPClient(ctx, config, provider, account)
	if err != nil {
		return nil, err
	}
	return []option.ClientOption{option.WithHTTPClient(client)}, nil
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return filepath.Join(os.Getenv("HOME"), ".config")
}
