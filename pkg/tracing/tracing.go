// Package tracing instruments the core's long-running operations — DEM
// tile loads and background job runs — with OpenTelemetry spans. The
// tracer stays a no-op unless the embedder points OTLP_ENDPOINT at a
// collector, so a plain desktop session pays nothing.
package tracing

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	// ServiceName identifies this core in exported traces.
	ServiceName = "slavgps"
	// TracerName is the instrumentation scope name.
	TracerName = "github.com/acerion/slavgps-core"
)

// shutdownTimeout bounds the final flush on application exit.
const shutdownTimeout = 5 * time.Second

var tracer trace.Tracer = noop.NewTracerProvider().Tracer(TracerName)

// Init installs an OTLP gRPC exporter when OTLP_ENDPOINT is set and
// returns the flush function the application root calls on shutdown.
// Without an endpoint the no-op tracer stays in place and the returned
// function does nothing.
func Init(ctx context.Context, version string) (func(context.Context) error, error) {
	endpoint := os.Getenv("OTLP_ENDPOINT")
	if endpoint == "" {
		tracer = noop.NewTracerProvider().Tracer(TracerName)
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	))
	if err != nil {
		return nil, fmt.Errorf("creating OTLP trace exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("building trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tracer = tp.Tracer(TracerName)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}

// StartTileLoad opens the span around one DEM tile load, keyed by the
// normalized cache path. The caller adds the hit/miss and source
// attributes as it learns them.
func StartTileLoad(ctx context.Context, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "dem.load",
		trace.WithAttributes(attribute.String(AttrDemPath, path)))
}

// StartJob opens the span around one background job run.
func StartJob(ctx context.Context, id, pool, description string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "job.run",
		trace.WithAttributes(JobAttributes(id, pool, description)...))
}

// EndJob stamps the job outcome on its span and ends it. err is the
// job failure, nil for success and cancellation.
func EndJob(span trace.Span, status string, err error) {
	span.SetAttributes(attribute.String(AttrJobStatus, status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
