// Package telemetry wires the OTel SDK providers that internal/scylla's
// package-scoped meter and tracer forward to once Init has run, following
// the teacher's own telemetry.Init() story referenced from
// internal/storage/dolt/store.go ("the global provider ... is a no-op
// until telemetry.Init() has been called").
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Init installs a metric provider and a trace provider that both export to
// stdout. It returns a shutdown function the caller must run on exit to
// flush any pending readings/spans. Safe to call at most once per process;
// calling it twice installs a second pair of providers, which
// otel.SetMeterProvider/otel.SetTracerProvider allow but which would export
// everything twice.
func Init(ctx context.Context) (shutdown func(context.Context) error, err error) {
	metricExporter, err := stdoutmetric.New()
	if err != nil {
		return nil, fmt.Errorf("telemetry: create stdout metric exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
	)
	otel.SetMeterProvider(meterProvider)

	traceExporter, err := stdouttrace.New()
	if err != nil {
		return nil, fmt.Errorf("telemetry: create stdout trace exporter: %w", err)
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
	)
	otel.SetTracerProvider(tracerProvider)

	return func(ctx context.Context) error {
		if err := meterProvider.Shutdown(ctx); err != nil {
			return err
		}
		return tracerProvider.Shutdown(ctx)
	}, nil
}
