package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/usefold/pkg/observability"
)

func filteredProvider(logger *slog.Logger) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	filter := observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter), logger)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(filter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	return tp, exporter
}

func TestAttributeFilter_AllowsKnownKeys(t *testing.T) {
	t.Parallel()

	tp, exporter := filteredProvider(nil)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(
		attribute.String("fold.language", "php"),
		attribute.Int("fold.ranges", 2),
		attribute.String("lsp.method", "textDocument/foldingRange"),
		attribute.String("mcp.tool", "usefold_ranges"),
		attribute.String("error.type", "timeout"),
	)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	attrs := spanAttrMap(spans[0])
	assert.Equal(t, "php", attrs["fold.language"])
	assert.Equal(t, int64(2), attrs["fold.ranges"])
	assert.Equal(t, "textDocument/foldingRange", attrs["lsp.method"])
	assert.Equal(t, "usefold_ranges", attrs["mcp.tool"])
	assert.Equal(t, "timeout", attrs["error.type"])
}

func TestAttributeFilter_BlocksDocumentData(t *testing.T) {
	t.Parallel()

	tp, exporter := filteredProvider(nil)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(
		attribute.String("document.uri", "file:///home/alice/project/index.php"),
		attribute.String("document.text", "<?php\nuse A;\n"),
		attribute.String("code", "<?php"),
		attribute.String("path", "/home/alice"),
		attribute.String("user.id", "12345"),
		attribute.String("http.method", "GET"),
		attribute.String("fold.language", "php"),
	)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	attrs := spanAttrMap(spans[0])

	assert.NotContains(t, attrs, "document.uri")
	assert.NotContains(t, attrs, "document.text")
	assert.NotContains(t, attrs, "code")
	assert.NotContains(t, attrs, "path")
	assert.NotContains(t, attrs, "user.id")
	assert.NotContains(t, attrs, "http.method")

	assert.Equal(t, "php", attrs["fold.language"])
}

func TestAttributeFilter_WarnsWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	tp, _ := filteredProvider(logger)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(attribute.String("document.text", "secret"))
	span.End()

	assert.Contains(t, buf.String(), "document.text")
	assert.Contains(t, buf.String(), "blocked")
}

// spanAttrMap converts a span's attributes into a map for easy assertion.
func spanAttrMap(s tracetest.SpanStub) map[string]any {
	m := make(map[string]any, len(s.Attributes))
	for _, a := range s.Attributes {
		m[string(a.Key)] = a.Value.AsInterface()
	}

	return m
}
