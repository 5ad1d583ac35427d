package observability

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// ProbeBuildResource exposes buildResource for tests.
var ProbeBuildResource = buildResource

// ProbeSamplerSpan starts a root span on a provider configured like Init
// would configure it and reports whether the span was sampled.
func ProbeSamplerSpan(cfg Config) bool {
	opts := append([]sdktrace.TracerProviderOption{
		sdktrace.WithSyncer(tracetest.NewInMemoryExporter()),
	}, samplerOptions(cfg)...)

	tp := sdktrace.NewTracerProvider(opts...)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("probe").Start(context.Background(), "probe")
	defer span.End()

	return span.SpanContext().IsSampled()
}
