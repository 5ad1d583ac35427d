package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/usefold/pkg/observability"
)

const scrapeOp = "metrics.scrape"

func newTestTracer(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	return exporter, tp
}

func serve(handler http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	return rec
}

func TestHTTPMiddleware_SpanAndMetrics(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracer(t)
	red, reader := setupTestMeter(t)

	handler := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write([]byte("ok"))
	})

	rec := serve(observability.HTTPMiddleware(tp.Tracer("test"), red, scrapeOp, handler))
	assert.Equal(t, http.StatusOK, rec.Code)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, scrapeOp, spans[0].Name)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)

	rm := collectMetrics(t, reader)

	total := findMetric(rm, "usefold.requests.total")
	require.NotNil(t, total)
	assert.Equal(t, int64(1), sumOf(t, total))
}

func TestHTTPMiddleware_ServerErrorMarksSpan(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracer(t)
	red, reader := setupTestMeter(t)

	handler := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
	})

	rec := serve(observability.HTTPMiddleware(tp.Tracer("test"), red, scrapeOp, handler))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)

	errorsTotal := findMetric(collectMetrics(t, reader), "usefold.errors.total")
	require.NotNil(t, errorsTotal)
	assert.Equal(t, int64(1), sumOf(t, errorsTotal))
}

func TestHTTPMiddleware_NilMetrics(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracer(t)

	handler := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusNoContent)
	})

	rec := serve(observability.HTTPMiddleware(tp.Tracer("test"), nil, scrapeOp, handler))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, exporter.GetSpans(), 1)
}

// Mutates the global propagator, so it does not run in parallel.
func TestHTTPMiddleware_ExtractsTraceParent(t *testing.T) {
	exporter, tp := newTestTracer(t)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	parentTraceID := "0af7651916cd43dd8448eb211c80319c"
	parentSpanID := "00f067aa0ba902b7"

	handler := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	req.Header.Set("Traceparent", "00-"+parentTraceID+"-"+parentSpanID+"-01")

	observability.HTTPMiddleware(tp.Tracer("test"), nil, scrapeOp, handler).ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, parentTraceID, spans[0].SpanContext.TraceID().String())
	assert.Equal(t, parentSpanID, spans[0].Parent.SpanID().String())
}
