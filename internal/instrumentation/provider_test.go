package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNewProvider_Disabled(t *testing.T) {
	config := Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	}

	provider, err := NewProvider(context.Background(), config)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if provider == nil {
		t.Fatal("expected provider to be non-nil")
	}

	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}

	if provider.Metrics() == nil {
		t.Error("expected metrics to be non-nil even when disabled")
	}

	// Shutdown should not error for disabled provider
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("expected no error on shutdown, got %v", err)
	}
}

func TestNewProvider_PrometheusExporter(t *testing.T) {
	config := Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	}

	provider, err := NewProvider(context.Background(), config)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(ctx)
	}()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}

	if provider.Metrics() == nil {
		t.Error("expected metrics recorder")
	}

	if provider.PrometheusHandler() == nil {
		t.Error("expected prometheus exporter to be available")
	}

	if provider.Tracer("test") == nil {
		t.Error("expected tracer to be non-nil")
	}
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	config := Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: "graphite",
		TracingExporter: ExporterNone,
	}

	if _, err := NewProvider(context.Background(), config); err == nil {
		t.Error("expected error for unsupported metrics exporter")
	}
}

func TestMetrics_NoOpWhenUninitialized(t *testing.T) {
	// A zero-value Metrics is returned by disabled providers; all record
	// methods must be safe to call.
	m := &Metrics{}
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "GET", "/metrics", 200, time.Millisecond)
	m.RecordAPIOperation(ctx, ServiceTelegram, OperationList, StatusSuccess, time.Millisecond)
	m.RecordConnectAttempt(ctx, ConnectResultSuccess)
	m.RecordToolInvocation(ctx, "tg_dialogs", StatusSuccess, time.Millisecond)
	m.RecordToolInvocationWithUser(ctx, "tg_dialogs", StatusSuccess, "user:abc", time.Millisecond)
	m.IncrementActiveConnections(ctx)
	m.DecrementActiveConnections(ctx)
}
