package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// errCollectorUnreachable is returned when the OTLP collector cannot be dialed.
var errCollectorUnreachable = errors.New("opentelemetry collector is not reachable")

type telemetryProviders struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	loggerProvider *sdklog.LoggerProvider
}

// isCollectorReachable checks if the OTLP collector port is reachable
func isCollectorReachable(endpoint string) bool {
	conn, err := net.DialTimeout("tcp", endpoint, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// initTelemetry registers the global OpenTelemetry providers
// exporting to the collector at the given endpoint.
func initTelemetry(ctx context.Context, endpoint string, traceRatio float64) (*telemetryProviders, error) {
	if !isCollectorReachable(endpoint) {
		return nil, fmt.Errorf("%w: %s", errCollectorUnreachable, endpoint)
	}

	grpcConn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}

	res, err := newResource("lfmq")
	if err != nil {
		return nil, err
	}

	// Trace
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(grpcConn))
	if err != nil {
		return nil, err
	}
	tracerProvider := newTraceProvider(res, traceExporter, traceRatio)
	otel.SetTracerProvider(tracerProvider)

	// Trace propagator
	otel.SetTextMapPropagator(propagation.TraceContext{})

	// Meter
	meterExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(grpcConn))
	if err != nil {
		return nil, err
	}
	meterProvider := newMeterProvider(res, meterExporter)
	otel.SetMeterProvider(meterProvider)

	// Logger
	logExporter, err := otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(grpcConn))
	if err != nil {
		return nil, err
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
	)
	global.SetLoggerProvider(loggerProvider)

	// Runtime
	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		return nil, err
	}

	return &telemetryProviders{
		tracerProvider: tracerProvider,
		meterProvider:  meterProvider,
		loggerProvider: loggerProvider,
	}, nil
}

// shutdown flushes and shuts down the providers.
func (tp *telemetryProviders) shutdown(ctx context.Context) error {
	return errors.Join(
		tp.tracerProvider.Shutdown(ctx),
		tp.meterProvider.Shutdown(ctx),
		tp.loggerProvider.Shutdown(ctx),
	)
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
}

func newTraceProvider(res *resource.Resource, exporter *otlptrace.Exporter, traceRatio float64) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(traceRatio)),
	)
}

func newMeterProvider(res *resource.Resource, exporter sdkmetric.Exporter) *sdkmetric.MeterProvider {
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(time.Second)),
		),
	)
}
