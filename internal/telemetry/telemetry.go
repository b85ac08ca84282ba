package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DefaultExportTimeout bounds each OTLP export, including the final flush
// on shutdown.
const DefaultExportTimeout = 10 * time.Second

// Settings selects where telemetry goes. An empty Endpoint keeps the
// global OpenTelemetry providers as no-ops.
type Settings struct {
	ServiceName   string
	Endpoint      string
	ExportTimeout time.Duration
}

type Telemetry struct {
	Logger *slog.Logger

	shutdownFuncs []func(context.Context) error
}

// Setup builds the logger and, when an OTLP endpoint is configured, the
// trace, metric and log providers, registering them globally.
func Setup(ctx context.Context, s Settings) (*Telemetry, error) {
	if s.Endpoint == "" {
		return &Telemetry{
			Logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
		}, nil
	}

	timeout := s.ExportTimeout
	if timeout <= 0 {
		timeout = DefaultExportTimeout
	}

	t := &Telemetry{}
	fail := func(err error) (*Telemetry, error) {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(attribute.String("service.name", s.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpointURL(s.Endpoint),
		otlptracegrpc.WithTimeout(timeout),
	)
	if err != nil {
		return fail(fmt.Errorf("telemetry: trace exporter: %w", err))
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	t.shutdownFuncs = append(t.shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpointURL(s.Endpoint),
		otlpmetricgrpc.WithTimeout(timeout),
	)
	if err != nil {
		return fail(fmt.Errorf("telemetry: metric exporter: %w", err))
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	t.shutdownFuncs = append(t.shutdownFuncs, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	logExporter, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpointURL(s.Endpoint),
		otlploggrpc.WithTimeout(timeout),
	)
	if err != nil {
		return fail(fmt.Errorf("telemetry: log exporter: %w", err))
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	t.shutdownFuncs = append(t.shutdownFuncs, loggerProvider.Shutdown)
	global.SetLoggerProvider(loggerProvider)

	t.Logger = otelslog.NewLogger(s.ServiceName, otelslog.WithLoggerProvider(loggerProvider))
	return t, nil
}

// Shutdown flushes every provider Setup created.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var err error
	for _, fn := range t.shutdownFuncs {
		err = errors.Join(err, fn(ctx))
	}
	t.shutdownFuncs = nil
	return err
}
