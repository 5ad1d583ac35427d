package mcp_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/usefold/pkg/folding"
	"github.com/Sumatoshi-tech/usefold/pkg/language"
	"github.com/Sumatoshi-tech/usefold/pkg/mcp"
	"github.com/Sumatoshi-tech/usefold/pkg/observability"
)

// connect starts srv on an in-memory transport and returns a client session.
func connect(t *testing.T, srv *mcp.Server) *mcpsdk.ClientSession {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return session
}

func callRanges(t *testing.T, session *mcpsdk.ClientSession, code, lang string) *mcpsdk.CallToolResult {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name: mcp.ToolNameRanges,
		Arguments: map[string]any{
			"code":     code,
			"language": lang,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	return result
}

func firstText(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])

	return text.Text
}

func TestMCPServer_ListTools(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})
	assert.Equal(t, []string{mcp.ToolNameRanges}, srv.ListToolNames())

	session := connect(t, srv)

	toolsResult, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, toolsResult.Tools, 1)

	tool := toolsResult.Tools[0]
	assert.Equal(t, "usefold_ranges", tool.Name)
	assert.NotEmpty(t, tool.Description)
	assert.NotNil(t, tool.InputSchema)
}

func TestMCPServer_CallRanges(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	code := "<?php\n\nuse A;\nuse B;\n\nclass X {}\n\nuse C;\nuse D;\n"
	result := callRanges(t, session, code, "PHP")
	require.False(t, result.IsError, firstText(t, result))

	var body mcp.RangesResult
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &body))

	assert.Equal(t, []folding.Range{
		{StartLine: 2, EndLine: 3, Kind: folding.KindImports},
		{StartLine: 7, EndLine: 8, Kind: folding.KindImports},
	}, body.Ranges)
}

func TestMCPServer_CallRanges_NoImports(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callRanges(t, session, "<?php\nuse A;\necho 1;\n", "php")
	require.False(t, result.IsError)
	assert.JSONEq(t, `{"ranges": []}`, firstText(t, result))
}

func TestMCPServer_CallRanges_Rejections(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{Languages: language.NewSet("php")}))

	tests := []struct {
		name    string
		code    string
		lang    string
		message string
	}{
		{"empty code", "", "php", mcp.ErrEmptyCode.Error()},
		{"empty language", "use A;", "", mcp.ErrEmptyLanguage.Error()},
		{"code too large", strings.Repeat("x", mcp.MaxCodeInputBytes+1), "php", mcp.ErrCodeTooLarge.Error()},
		{"language not folded", "use A;\nuse B;", "go", mcp.ErrLanguageNotFolded.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := callRanges(t, session, tt.code, tt.lang)
			assert.True(t, result.IsError)
			assert.Contains(t, firstText(t, result), tt.message)
		})
	}
}

func TestMCPServer_Telemetry(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	session := connect(t, mcp.NewServer(mcp.ServerDeps{
		Tracer:  tp.Tracer("test"),
		Metrics: red,
	}))

	result := callRanges(t, session, "use A;\nuse B;\n", "php")
	require.False(t, result.IsError)

	var sawTraceID bool

	for _, content := range result.Content {
		if text, ok := content.(*mcpsdk.TextContent); ok && strings.HasPrefix(text.Text, "trace_id=") {
			sawTraceID = true
		}
	}

	assert.True(t, sawTraceID)

	spanNames := make([]string, 0)
	for _, span := range exporter.GetSpans() {
		spanNames = append(spanNames, span.Name)
	}

	assert.Contains(t, spanNames, "mcp.usefold_ranges")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.NotEmpty(t, rm.ScopeMetrics)
}
