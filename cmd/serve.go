package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aura-assistant/aura/internal/google"
	"github.com/aura-assistant/aura/internal/instrumentation"
	"github.com/aura-assistant/aura/internal/llm"
	"github.com/aura-assistant/aura/internal/logging"
	"github.com/aura-assistant/aura/internal/resources"
	"github.com/aura-assistant/aura/internal/schema"
	"github.com/aura-assistant/aura/internal/server"
	"github.com/aura-assistant/aura/internal/store"
	"github.com/aura-assistant/aura/internal/tools/calendar_tools"
	"github.com/aura-assistant/aura/internal/tools/gmail_tools"
	"github.com/aura-assistant/aura/internal/tools/util_tools"
	"github.com/aura-assistant/aura/internal/tools/vector_tools"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// ServeConfig holds the resolved settings of the serve command.
type ServeConfig struct {
	Transport string
	HTTPAddr  string
	Debug     bool
	Yolo      bool

	// DBPath is the DuckDB file. Empty uses AURA_DB_PATH or ./.aura/aura.duckdb.
	DBPath string

	MaxSchemaRetries int
	Metrics          MetricsConfig
}

func newServeCmd() *cobra.Command {
	var config ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide table, Gmail
and Calendar tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Safety Mode:
  By default, the server operates in read-only mode, providing only list, get
  and search operations. Use --yolo to enable write operations (creating
  tables and entities, editing labels and events, etc.)

Environment:
  OPENAI_API_KEY        Enables schema generation and embeddings
  AURA_DB_PATH          DuckDB database file (default: ./.aura/aura.duckdb)
  AURA_TIMEZONE         Time zone for local times (default: UTC)
  GOOGLE_CLIENT_ID      OAuth client used to refresh stored Google tokens
  GOOGLE_CLIENT_SECRET
  AURA_TOKEN_DIR        Directory of <account>.json tokens`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadServeEnvVars(cmd, &config); err != nil {
				return err
			}
			return runServe(config)
		},
	}

	addServeFlags(cmd, &config)

	return cmd
}

func addServeFlags(cmd *cobra.Command, config *ServeConfig) {
	cmd.Flags().BoolVar(&config.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&config.Transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&config.Yolo, "yolo", false, "Enable write operations (table and entity changes, label and event edits). Default is read-only mode.")
	cmd.Flags().StringVar(&config.DBPath, "db-path", "", "DuckDB database file. Can also use AURA_DB_PATH env var. Default: ./.aura/aura.duckdb")
	cmd.Flags().IntVar(&config.MaxSchemaRetries, "max-schema-retries", schema.DefaultMaxRetries, "Attempts the LLM gets to produce a valid table description. Can also use AURA_MAX_SCHEMA_RETRIES env var.")

	// Metrics server flags
	cmd.Flags().BoolVar(&config.Metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")
}

// loadServeEnvVars fills config from environment variables.
// Environment variables only override flag values when the flag was not explicitly set.
func loadServeEnvVars(cmd *cobra.Command, config *ServeConfig) error {
	if config.DBPath == "" {
		config.DBPath = store.DefaultConfig().Path
	}

	if !cmd.Flags().Changed("max-schema-retries") {
		if env := os.Getenv("AURA_MAX_SCHEMA_RETRIES"); env != "" {
			retries, err := cast.ToIntE(env)
			if err != nil || retries < 1 {
				return fmt.Errorf("invalid AURA_MAX_SCHEMA_RETRIES %q: must be a positive integer", env)
			}
			config.MaxSchemaRetries = retries
		}
	}
	if config.MaxSchemaRetries < 1 {
		return fmt.Errorf("--max-schema-retries must be at least 1")
	}

	if !cmd.Flags().Changed("metrics-enabled") {
		if env := os.Getenv("METRICS_ENABLED"); env != "" {
			enabled, err := cast.ToBoolE(env)
			if err != nil {
				return fmt.Errorf("invalid METRICS_ENABLED %q: %w", env, err)
			}
			config.Metrics.Enabled = enabled
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			config.Metrics.Addr = addr
		}
	}

	switch config.Transport {
	case transportStdio, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", config.Transport)
	}
	return nil
}

func runServe(config ServeConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries the protocol in stdio mode, so logs always go to stderr
	logger := logging.NewLogger(os.Stderr, config.Debug)
	slog.SetDefault(logger)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if config.Transport != transportStdio && config.Metrics.Enabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(config.Metrics, provider)
		if err != nil {
			return err
		}
		logger.Info("metrics server started", "addr", metricsServer.Addr())
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	st, err := store.Open(shutdownCtx, store.Config{Path: config.DBPath})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	st.SetMetrics(provider.Metrics())
	logger.Debug("store opened", "path", config.DBPath)

	opts := server.Options{
		Store:            st,
		MaxSchemaRetries: config.MaxSchemaRetries,
		Dimension:        schema.VectorDimension,
		Google:           google.DefaultConfig(),
		Metrics:          provider.Metrics(),
		Logger:           logger,
	}
	if instrConfig.AuditLogging.Enabled {
		opts.AuditLogger = instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging)
	}

	// Without an API key the table tools that need the LLM return an error
	// result; everything else keeps working.
	llmConfig := llm.DefaultConfig()
	if llmConfig.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set: schema generation and vector search are disabled")
	} else {
		client, err := llm.New(llmConfig)
		if err != nil {
			logger.Warn("failed to create LLM client", logging.Err(err))
		} else {
			client.SetMetrics(provider.Metrics())
			opts.Completer = client
			opts.Embedder = client
		}
	}

	// The server context owns the store and closes it on shutdown
	serverContext, err := server.NewServerContext(shutdownCtx, opts)
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", logging.Err(err))
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("aura", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	// readOnly is the inverse of yolo
	readOnly := !config.Yolo
	if readOnly {
		logger.Info("starting server in READ-ONLY mode (use --yolo to enable write operations)")
	} else {
		logger.Info("starting server with WRITE operations enabled (--yolo flag is set)")
	}

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	switch config.Transport {
	case transportStdio:
		return runStdioServer(mcpSrv)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, config.HTTPAddr)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", config.Transport)
	}
}

// startMetricsServer starts the dedicated Prometheus server and waits until
// it is listening or has failed.
func startMetricsServer(config MetricsConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    config.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	// ListenAndServe fails fast on a bad address; no error within the grace
	// period means the listener is up.
	select {
	case err := <-metricsErr:
		if err != nil {
			return nil, fmt.Errorf("metrics server failed to start: %w", err)
		}
		return nil, fmt.Errorf("metrics server stopped during startup")
	case <-time.After(200 * time.Millisecond):
		return metricsServer, nil
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "vector",
			register: func() error {
				return vector_tools.RegisterVectorTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Gmail",
			register: func() error {
				return gmail_tools.RegisterGmailTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Calendar",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "utility",
			register: func() error {
				return util_tools.RegisterUtilTools(mcpSrv, sc)
			},
		},
		{
			name: "schema resource",
			register: func() error {
				return resources.RegisterSchemaResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.name, err)
		}
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, addr string) error {
	httpServer := server.NewHTTPServer(mcpSrv, sc)

	fmt.Fprintf(os.Stderr, "Streamable HTTP server starting on %s\n", addr)
	fmt.Fprintf(os.Stderr, "  HTTP endpoint: %s\n", server.MCPEndpoint)
	fmt.Fprintf(os.Stderr, "  Health endpoints: /healthz, /readyz\n")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		sc.Logger().Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	sc.Logger().Info("HTTP server gracefully stopped")
	return nil
}
