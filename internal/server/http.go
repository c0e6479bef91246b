package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aura-assistant/aura/internal/instrumentation"
)

// MCPEndpoint is the path of the streamable-http transport.
const MCPEndpoint = "/mcp"

// HTTPServer serves the MCP streamable-http transport and the health probes.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	health     *HealthChecker
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
	httpServer *http.Server
}

// NewHTTPServer creates an HTTP server for mcpServer. sc provides the health
// checks and the metrics recorder.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext) *HTTPServer {
	return &HTTPServer{
		mcpServer: mcpServer,
		health:    NewHealthChecker(sc),
		metrics:   sc.Metrics(),
		logger:    sc.Logger(),
	}
}

// Health returns the health checker backing /healthz and /readyz.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Handler returns the routed handler with request metrics applied.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(MCPEndpoint),
	)
	mux.Handle(MCPEndpoint, streamable)
	s.health.RegisterHealthEndpoints(mux)

	return s.recordRequests(mux)
}

// Start starts the server in a blocking manner.
func (s *HTTPServer) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("starting MCP HTTP server", "addr", addr, "endpoint", MCPEndpoint)
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server not ready and drains open connections.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// recordRequests records each request as http_requests_total and its duration.
// Unknown paths share one label value.
func (s *HTTPServer) recordRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.metrics.RecordHTTPRequest(r.Context(), r.Method, routeLabel(r.URL.Path), rec.status, time.Since(start))
	})
}

func routeLabel(path string) string {
	switch path {
	case MCPEndpoint, "/healthz", "/readyz", "/healthz/detailed":
		return path
	}
	return "other"
}

// statusRecorder captures the response status. It forwards Flush so that
// streamed MCP responses keep working.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
