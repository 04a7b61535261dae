// Package telemetry records OpenTelemetry spans for commands and gateway
// calls. Finished spans are written through the structured logger; there is
// no collector to export to.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/sakura-poetry/poetryctl/internal/log"
)

// Provider owns the tracer provider for one invocation.
type Provider struct {
	tp  trace.TracerProvider
	sdk *sdktrace.TracerProvider
}

// NewProvider builds a provider for cfg. Spans end up in logger at info
// level.
func NewProvider(cfg Config, logger *log.Logger) *Provider {
	if !cfg.Enabled {
		return &Provider{tp: noop.NewTracerProvider()}
	}
	if logger == nil {
		logger = log.DefaultLogger()
	}

	rate := cfg.SampleRate
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	// Spans are flushed as they end so nothing is lost when the process exits.
	sdk := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(NewLogExporter(logger))),
	)
	return &Provider{tp: sdk, sdk: sdk}
}

// FromTracerProvider wraps an existing provider, e.g. one backed by an
// in-memory exporter in tests.
func FromTracerProvider(tp trace.TracerProvider) *Provider {
	p := &Provider{tp: tp}
	if sdk, ok := tp.(*sdktrace.TracerProvider); ok {
		p.sdk = sdk
	}
	return p
}

// TracerProvider returns the underlying provider.
func (p *Provider) TracerProvider() trace.TracerProvider {
	return p.tp
}

// Enabled reports whether spans are recorded.
func (p *Provider) Enabled() bool {
	return p.sdk != nil
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	return p.sdk.Shutdown(ctx)
}
