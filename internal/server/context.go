package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aura-assistant/aura/internal/calendar"
	"github.com/aura-assistant/aura/internal/gmail"
	"github.com/aura-assistant/aura/internal/google"
	"github.com/aura-assistant/aura/internal/instrumentation"
	"github.com/aura-assistant/aura/internal/llm"
	"github.com/aura-assistant/aura/internal/logging"
	"github.com/aura-assistant/aura/internal/schema"
	"github.com/aura-assistant/aura/internal/store"
)

// Options configures a ServerContext. Only Store is required.
type Options struct {
	Store *store.Store

	// Completer and Embedder back the vector tools. When nil, tools that need
	// them return an error result.
	Completer schema.Completer
	Embedder  llm.Embedder

	MaxSchemaRetries int
	Dimension        int

	Google        google.Config
	TokenProvider google.TokenProvider

	Metrics     *instrumentation.Metrics
	AuditLogger *instrumentation.AuditLogger
	Logger      *slog.Logger
}

// ServerContext holds the dependencies shared by all tool handlers
type ServerContext struct {
	ctx             context.Context
	cancel          context.CancelFunc
	store           *store.Store
	completer       schema.Completer
	embedder        llm.Embedder
	describer       *schema.Describer
	dimension       int
	googleConfig    google.Config
	tokenProvider   google.TokenProvider
	gmailClients    map[string]*gmail.Client    // Maps account name to Gmail client
	calendarClients map[string]*calendar.Client // Maps account name to Calendar client
	metrics         *instrumentation.Metrics
	auditLogger     *instrumentation.AuditLogger
	logger          *slog.Logger
	mu              sync.RWMutex
	shutdown        bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Dimension <= 0 {
		opts.Dimension = schema.VectorDimension
	}
	if opts.MaxSchemaRetries <= 0 {
		opts.MaxSchemaRetries = schema.DefaultMaxRetries
	}
	if opts.TokenProvider == nil {
		opts.TokenProvider = google.NewFileTokenProvider(opts.Google.TokenDir)
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		store:           opts.Store,
		completer:       opts.Completer,
		embedder:        opts.Embedder,
		dimension:       opts.Dimension,
		googleConfig:    opts.Google,
		tokenProvider:   opts.TokenProvider,
		gmailClients:    make(map[string]*gmail.Client),
		calendarClients: make(map[string]*calendar.Client),
		metrics:         opts.Metrics,
		auditLogger:     opts.AuditLogger,
		logger:          opts.Logger,
	}

	if opts.Completer != nil {
		sc.describer = schema.NewDescriber(opts.Completer, schema.DescriberConfig{
			MaxRetries: opts.MaxSchemaRetries,
			Dimension:  opts.Dimension,
			Logger:     logging.NewSlogAdapter(opts.Logger),
			OnAttempt:  sc.recordSchemaAttempt,
		})
	}
	return sc, nil
}

func (sc *ServerContext) recordSchemaAttempt(ctx context.Context, attempt int, err error) {
	outcome := "valid"
	if err != nil {
		outcome = "invalid"
	}
	sc.metrics.RecordSchemaAttempt(ctx, outcome)
	sc.logger.Debug("schema attempt", logging.Attempt(attempt), logging.Err(err))
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Store returns the tabular store.
func (sc *ServerContext) Store() *store.Store {
	return sc.store
}

// Describer returns the schema describer, or nil without a completer.
func (sc *ServerContext) Describer() *schema.Describer {
	return sc.describer
}

// Embedder returns the embedding client, or nil when none is configured.
func (sc *ServerContext) Embedder() llm.Embedder {
	return sc.embedder
}

// Dimension returns the vector width of embedded tables.
func (sc *ServerContext) Dimension() int {
	return sc.dimension
}

// Metrics returns the metrics recorder, possibly nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, possibly nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// GmailClientForAccount returns the Gmail client for account, creating and
// caching it on first use.
func (sc *ServerContext) GmailClientForAccount(account string) (*gmail.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.gmailClients[account]; ok {
		return client, nil
	}
	if !sc.tokenProvider.HasTokenForAccount(account) {
		return nil, fmt.Errorf("no Google token stored for account %q", account)
	}

	client, err := gmail.NewClientForAccount(sc.ctx, sc.googleConfig, sc.tokenProvider, account)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail client for account %s: %w", account, err)
	}
	client.SetMetrics(sc.metrics)
	sc.gmailClients[account] = client
	return client, nil
}

// SetGmailClientForAccount sets the Gmail client for a specific account
func (sc *ServerContext) SetGmailClientForAccount(account string, client *gmail.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.gmailClients[account] = client
}

// CalendarClientForAccount returns the Calendar client for account, creating
// and caching it on first use.
func (sc *ServerContext) CalendarClientForAccount(account string) (*calendar.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.calendarClients[account]; ok {
		return client, nil
	}
	if !sc.tokenProvider.HasTokenForAccount(account) {
		return nil, fmt.Errorf("no Google token stored for account %q", account)
	}

	client, err := calendar.NewClientForAccount(sc.ctx, sc.googleConfig, sc.tokenProvider, account)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar client for account %s: %w", account, err)
	}
	client.SetMetrics(sc.metrics)
	sc.calendarClients[account] = client
	return client, nil
}

// SetCalendarClientForAccount sets the Calendar client for a specific account
func (sc *ServerContext) SetCalendarClientForAccount(account string, client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClients[account] = client
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and closes the store.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return sc.store.Close()
}
