package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{"valid default", "default", false},
		{"valid with hyphen", "work-email", false},
		{"valid with underscore", "personal_email", false},
		{"valid alphanumeric", "account123", false},
		{"empty", "", true},
		{"with spaces", "my account", true},
		{"with special chars", "account@work", true},
		{"with slash", "work/personal", true},
		{"with dot", "work.email", true},
		{"path traversal", "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAccountName(tt.account)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileTokenProvider(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tokens")
	p := NewFileTokenProvider(dir)
	ctx := context.Background()

	assert.False(t, p.HasTokenForAccount("work"))
	_, err := p.GetTokenForAccount(ctx, "work")
	assert.Error(t, err)

	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, p.SaveToken("work", &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}))

	info, err := os.Stat(filepath.Join(dir, "work.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.True(t, p.HasTokenForAccount("work"))
	token, err := p.GetTokenForAccount(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, "access", token.AccessToken)
	assert.Equal(t, "refresh", token.RefreshToken)
	assert.True(t, expiry.Equal(token.Expiry))

	assert.False(t, p.HasTokenForAccount("../work"))
	assert.Error(t, p.SaveToken("bad name", &oauth2.Token{}))
}

func TestFileTokenProvider_InvalidFiles(t *testing.T) {
	dir := t.TempDir()
	p := NewFileTokenProvider(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("not json"), 0o600))
	_, err := p.GetTokenForAccount(context.Background(), "garbage")
	assert.ErrorContains(t, err, "invalid token file")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.json"), []byte(`{}`), 0o600))
	_, err = p.GetTokenForAccount(context.Background(), "empty")
	assert.ErrorContains(t, err, "neither an access nor a refresh token")
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("AURA_TOKEN_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	cfg := DefaultConfig()
	assert.Equal(t, "/tmp/xdg/aura/tokens", cfg.TokenDir)
	assert.Equal(t, "id", cfg.ClientID)

	oc := cfg.OAuthConfig()
	assert.Equal(t, "secret", oc.ClientSecret)
	assert.Equal(t, DefaultOAuthScopes, oc.Scopes)

	t.Setenv("AURA_TOKEN_DIR", "/srv/tokens")
	assert.Equal(t, "/srv/tokens", DefaultConfig().TokenDir)
}

func TestHTTPClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewFileTokenProvider(t.TempDir())
	require.NoError(t, p.SaveToken(DefaultAccount, &oauth2.Token{
		AccessToken: "abc",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}))

	client, err := HTTPClient(context.Background(), Config{}, p, DefaultAccount)
	require.NoError(t, err)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "Bearer abc", gotAuth)

	_, err = HTTPClient(context.Background(), Config{}, p, "missing")
	assert.ErrorContains(t, err, "no Google token for account missing")

	_, err = HTTPClient(context.Background(), Config{}, nil, DefaultAccount)
	assert.Error(t, err)
}
