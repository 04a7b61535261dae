package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Instrumentation scope names.
const (
	ScopeCommands = "github.com/sakura-poetry/poetryctl/internal/cmd"
	ScopeGateway  = "github.com/sakura-poetry/poetryctl/internal/gateway"
)

// StartCommandSpan starts the root span of one CLI command, named after its
// path, e.g. "command.poem.list".
//
//	ctx, span := telemetry.StartCommandSpan(ctx, tp, "poetryctl poem list")
//	defer telemetry.EndSpan(span, err)
func StartCommandSpan(ctx context.Context, tp trace.TracerProvider, commandPath string) (context.Context, trace.Span) {
	fields := strings.Fields(commandPath)
	if len(fields) > 1 {
		fields = fields[1:]
	}
	name := strings.Join(fields, ".")

	ctx, span := tp.Tracer(ScopeCommands).Start(ctx, "command."+name)
	span.SetAttributes(
		attribute.String("command", name),
		attribute.String("component", "cli"),
	)
	return ctx, span
}

// StartCallSpan starts a client span for one gateway call.
func StartCallSpan(ctx context.Context, tracer trace.Tracer, method, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "gateway."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
			attribute.String("component", "gateway"),
		),
	)
}

// RecordCall annotates a gateway span with what came back. status is zero
// when no response arrived.
func RecordCall(span trace.Span, requestID string, status int, outcome string, err error) {
	attrs := []attribute.KeyValue{attribute.String("outcome", outcome)}
	if requestID != "" {
		attrs = append(attrs, attribute.String("request_id", requestID))
	}
	if status > 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", status))
	}
	span.SetAttributes(attrs...)
	EndStatus(span, err)
}

// EndStatus sets the span status from err without ending the span.
func EndStatus(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// EndSpan sets the status from err and ends span.
func EndSpan(span trace.Span, err error) {
	EndStatus(span, err)
	span.End()
}
