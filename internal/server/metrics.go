package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/telegram-mcp/telegram-mcp/internal/instrumentation"
)

const (
	// DefaultMetricsAddr is the default address for the metrics server.
	DefaultMetricsAddr = ":9090"

	defaultMetricsReadTimeout  = 10 * time.Second
	defaultMetricsWriteTimeout = 10 * time.Second
	defaultMetricsIdleTimeout  = 60 * time.Second
)

// MetricsServerConfig holds configuration for the metrics server.
type MetricsServerConfig struct {
	// Addr is the address to bind the metrics server to (e.g., ":9090").
	Addr string

	// InstrumentationProvider provides the Prometheus metrics handler.
	InstrumentationProvider *instrumentation.Provider

	// HealthChecker serves /healthz and /readyz alongside /metrics. When
	// nil, a checker without server context is created, so readiness never
	// reflects shutdown state.
	HealthChecker *HealthChecker
}

// MetricsServer serves Prometheus metrics on a dedicated port, keeping
// operational metrics away from the MCP transport.
type MetricsServer struct {
	httpServer *http.Server
	health     *HealthChecker
	addr       string
	boundAddr  string
}

// NewMetricsServer creates a new metrics server with the given configuration.
// The server exposes a /metrics endpoint for Prometheus scraping plus the
// health endpoints of the configured HealthChecker.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.Addr == "" {
		config.Addr = DefaultMetricsAddr
	}

	if config.InstrumentationProvider == nil || !config.InstrumentationProvider.Enabled() {
		return nil, fmt.Errorf("metrics server requires an enabled instrumentation provider")
	}

	health := config.HealthChecker
	if health == nil {
		health = NewHealthChecker(nil)
	}

	return &MetricsServer{
		health: health,
		addr:   config.Addr,
	}, nil
}

// Start starts the metrics server in a blocking manner. The ready channel,
// if non-nil, is closed once the listener is bound.
func (s *MetricsServer) Start(ready chan<- struct{}) error {
	mux := http.NewServeMux()

	// The OpenTelemetry prometheus exporter registers metrics in the global
	// Prometheus registry, which promhttp.Handler() exposes.
	mux.Handle("/metrics", promhttp.Handler())

	s.health.RegisterHealthEndpoints(mux)

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: defaultMetricsReadTimeout,
		WriteTimeout:      defaultMetricsWriteTimeout,
		IdleTimeout:       defaultMetricsIdleTimeout,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.boundAddr = listener.Addr().String()

	slog.Info("starting metrics server", "addr", s.boundAddr)
	if ready != nil {
		close(ready)
	}
	return s.httpServer.Serve(listener)
}

// Shutdown gracefully shuts down the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		slog.Info("shutting down metrics server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the address the metrics server is bound to. Before Start it
// returns the configured address.
func (s *MetricsServer) Addr() string {
	if s.boundAddr != "" {
		return s.boundAddr
	}
	return s.addr
}
