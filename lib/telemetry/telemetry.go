package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var shutdownFuncs []func(context.Context) error

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Shutdown flushes and stops the providers installed by Setup.
func Shutdown(ctx context.Context) error {
	var errlist []error
	for _, f := range shutdownFuncs {
		if err := f(ctx); err != nil {
			errlist = append(errlist, err)
		}
	}
	shutdownFuncs = nil
	return errors.Join(errlist...)
}

// SetupFromEnv searches up the filesystem from the cwd for a
// telemetry.json5 config and installs global otel providers from it.
// A missing config is not an error; telemetry just stays on no-op
// providers.
func SetupFromEnv(ctx context.Context, serviceName string) error {
	config, err := readEnvConfig()
	if err != nil {
		return err
	}
	if config == nil {
		return nil
	}
	return Setup(ctx, serviceName, *config)
}

// Setup installs OTLP-backed trace and metric providers globally.
func Setup(ctx context.Context, serviceName string, config Config) error {
	r, err := newResource(serviceName)
	if err != nil {
		return err
	}

	tracerProvider, err := newTraceProvider(ctx, r, config)
	if err != nil {
		return err
	}
	otel.SetTracerProvider(tracerProvider)
	shutdownFuncs = append(shutdownFuncs, func(ctx context.Context) error {
		return tracerProvider.Shutdown(ctx)
	})

	meterProvider, err := newMetricProvider(ctx, r, config)
	if err != nil {
		return err
	}
	otel.SetMeterProvider(meterProvider)
	shutdownFuncs = append(shutdownFuncs, func(ctx context.Context) error {
		return meterProvider.Shutdown(ctx)
	})

	return nil
}
