// Package telemetry configures the OpenTelemetry tracer provider used by the
// HTTP middleware.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Shutdown flushes pending spans and releases the exporter.
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// Setup registers a global tracer provider exporting spans over OTLP/HTTP to
// endpoint. An empty endpoint leaves tracing off and returns a no-op
// Shutdown.
func Setup(ctx context.Context, serviceName, endpoint string) (Shutdown, error) {
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noop, fmt.Errorf("otlp exporter: %w", err)
	}

	tp, err := newProvider(ctx, serviceName, sdktrace.WithBatcher(exporter))
	if err != nil {
		return noop, err
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

func newProvider(ctx context.Context, serviceName string, opts ...sdktrace.TracerProviderOption) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}
	opts = append(opts,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return sdktrace.NewTracerProvider(opts...), nil
}
