package observability

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(NewLogger),
	fx.Provide(NewMetrics),
	fx.Provide(NewTracerProvider),
	// The tracer provider is only reached through otel's global, so force construction.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
