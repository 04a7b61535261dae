package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/sakura-poetry/poetryctl/internal/log"
)

// LogExporter writes each finished span as one log record.
type LogExporter struct {
	logger *log.Logger
}

// NewLogExporter creates an exporter writing to logger.
func NewLogExporter(logger *log.Logger) *LogExporter {
	return &LogExporter{logger: logger.With("component", "trace")}
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		args := []any{
			"span", s.Name(),
			"trace_id", s.SpanContext().TraceID().String(),
			"span_id", s.SpanContext().SpanID().String(),
			"duration", s.EndTime().Sub(s.StartTime()),
		}
		if s.Parent().IsValid() {
			args = append(args, "parent_id", s.Parent().SpanID().String())
		}
		for _, kv := range s.Attributes() {
			args = append(args, string(kv.Key), kv.Value.Emit())
		}
		if st := s.Status(); st.Code == codes.Error {
			args = append(args, "status", "error", "error", st.Description)
		}
		e.logger.InfoContext(ctx, "span finished", args...)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *LogExporter) Shutdown(context.Context) error {
	return nil
}

var _ sdktrace.SpanExporter = (*LogExporter)(nil)
