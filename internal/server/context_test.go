package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-assistant/aura/internal/schema"
	"github.com/aura-assistant/aura/internal/store"
)

func newTestServerContext(t *testing.T, opts Options) *ServerContext {
	t.Helper()
	if opts.Store == nil {
		s, err := store.Open(context.Background(), store.Config{})
		require.NoError(t, err)
		opts.Store = s
	}
	if opts.Google.TokenDir == "" {
		opts.Google.TokenDir = t.TempDir()
	}
	sc, err := NewServerContext(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestNewServerContext_RequiresStore(t *testing.T) {
	_, err := NewServerContext(context.Background(), Options{})
	assert.ErrorContains(t, err, "store is required")
}

func TestNewServerContext_Defaults(t *testing.T) {
	sc := newTestServerContext(t, Options{})

	assert.NotNil(t, sc.Store())
	assert.NotNil(t, sc.Logger())
	assert.Nil(t, sc.Describer(), "no describer without a completer")
	assert.Nil(t, sc.Embedder())
	assert.Equal(t, schema.VectorDimension, sc.Dimension())
	assert.Nil(t, sc.Metrics())
}

func TestNewServerContext_Describer(t *testing.T) {
	completer := schema.CompleterFunc(func(context.Context, schema.Conversation) (string, error) {
		return "", nil
	})
	sc := newTestServerContext(t, Options{Completer: completer, MaxSchemaRetries: 5})

	require.NotNil(t, sc.Describer())
	assert.Equal(t, 5, sc.Describer().MaxRetries())
}

func TestServerContext_GoogleClientsWithoutToken(t *testing.T) {
	sc := newTestServerContext(t, Options{})

	_, err := sc.GmailClientForAccount("default")
	assert.ErrorContains(t, err, `no Google token stored for account "default"`)

	_, err = sc.CalendarClientForAccount("work")
	assert.ErrorContains(t, err, `no Google token stored for account "work"`)
}

func TestServerContext_Shutdown(t *testing.T) {
	s, err := store.Open(context.Background(), store.Config{})
	require.NoError(t, err)
	sc, err := NewServerContext(context.Background(), Options{Store: s})
	require.NoError(t, err)

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())

	// Idempotent
	assert.NoError(t, sc.Shutdown())
}
