package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTracedClient(t *testing.T, baseURL string) (*Client, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return newTestClient(t, baseURL, &recorder{token: "T1"}, WithTracerProvider(tp)), exporter
}

func spanAttrs(s tracetest.SpanStub) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestCallSpanOnSuccess(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"code":200,"data":{"id":1}}`))
	defer srv.Close()
	c, exporter := newTracedClient(t, srv.URL)

	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/poetry/list"})
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "gateway.POST", s.Name)
	assert.Equal(t, trace.SpanKindClient, s.SpanKind)
	assert.Equal(t, codes.Ok, s.Status.Code)

	attrs := spanAttrs(s)
	assert.Equal(t, "/api/poetry/list", attrs["url.path"].AsString())
	assert.Equal(t, "success", attrs["outcome"].AsString())
	assert.Equal(t, int64(200), attrs["http.response.status_code"].AsInt64())
	assert.NotEmpty(t, attrs["request_id"].AsString())
}

func TestCallSpanOnBusinessError(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"code":4001,"message":"title taken"}`))
	defer srv.Close()
	c, exporter := newTracedClient(t, srv.URL)

	_, err := c.Do(context.Background(), Request{Path: "/api/poetry/1"})
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "gateway.GET", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "business_error", spanAttrs(spans[0])["outcome"].AsString())
}

func TestCallSpanIsChildOfCaller(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, `{"code":200,"data":null}`))
	defer srv.Close()
	c, exporter := newTracedClient(t, srv.URL)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, parent := tp.Tracer("test").Start(context.Background(), "command.poem.list")

	_, err := c.Do(ctx, Request{Path: "/api/poetry/hot"})
	require.NoError(t, err)
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, parent.SpanContext().SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, parent.SpanContext().TraceID(), spans[0].SpanContext.TraceID())
}
