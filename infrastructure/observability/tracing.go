package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// TracingConfig holds tracing configuration
type TracingConfig struct {
	ServiceName string
	Environment string
	Endpoint    string
	SampleRate  float64
}

// TracerProvider wraps the OpenTelemetry provider so callers get a single
// handle for setup and shutdown.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
}

// InitTracing initializes distributed tracing with an OTLP/gRPC exporter
// and registers the global provider and propagator.
func InitTracing(ctx context.Context, config TracingConfig) (*TracerProvider, error) {
	if config.ServiceName == "" {
		config.ServiceName = "graphnav-backend"
	}
	if config.SampleRate == 0 {
		config.SampleRate = sampleRateFor(config.Environment)
	}

	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(config.Endpoint),
		otlptracegrpc.WithInsecure(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.DeploymentEnvironmentName(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.SampleRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{provider: tp}, nil
}

// Shutdown flushes pending spans and stops the provider.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return tp.provider.Shutdown(ctx)
}

// sampleRateFor keeps production traces affordable while sampling
// everything elsewhere.
func sampleRateFor(environment string) float64 {
	if environment == "production" {
		return 0.1
	}
	return 1.0
}
