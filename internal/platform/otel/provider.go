// Package otel wires OpenTelemetry tracing for empiregen commands.
package otel

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName scopes every tracer created by this module.
const InstrumentationName = "github.com/louisbranch/empiregen"

// DefaultServiceName is reported when Setup is given no service name.
const DefaultServiceName = "empiregen"

// Environment variables read by ConfigFromEnv.
const (
	EnvEnabled     = "EMPIREGEN_OTEL_ENABLED"
	EnvEndpoint    = "EMPIREGEN_OTEL_ENDPOINT"
	EnvSampleRatio = "EMPIREGEN_OTEL_SAMPLE_RATIO"
)

// Config selects where spans are exported and how many are kept.
type Config struct {
	Endpoint    string
	ServiceName string
	// SampleRatio is the fraction of root traces kept, in [0, 1].
	SampleRatio float64
}

// ConfigFromEnv reads the tracing settings for serviceName. Tracing is
// opt-in: ok is false when no endpoint is set or EMPIREGEN_OTEL_ENABLED is
// "false".
func ConfigFromEnv(serviceName string) (cfg Config, ok bool, err error) {
	if strings.EqualFold(strings.TrimSpace(os.Getenv(EnvEnabled)), "false") {
		return Config{}, false, nil
	}
	endpoint := strings.TrimSpace(os.Getenv(EnvEndpoint))
	if endpoint == "" {
		return Config{}, false, nil
	}
	if strings.TrimSpace(serviceName) == "" {
		serviceName = DefaultServiceName
	}
	cfg = Config{Endpoint: endpoint, ServiceName: serviceName, SampleRatio: 1}
	if raw := strings.TrimSpace(os.Getenv(EnvSampleRatio)); raw != "" {
		ratio, err := strconv.ParseFloat(raw, 64)
		if err != nil || ratio < 0 || ratio > 1 {
			return Config{}, false, fmt.Errorf("%s must be between 0 and 1, got %q", EnvSampleRatio, raw)
		}
		cfg.SampleRatio = ratio
	}
	return cfg, true, nil
}

// Setup registers a global tracer provider exporting to the OTLP/HTTP
// endpoint from the environment. When tracing is off it registers nothing.
// The returned shutdown function flushes pending spans and should be
// deferred by the caller.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	cfg, ok, err := ConfigFromEnv(serviceName)
	if err != nil || !ok {
		return noop, err
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return noop, err
	}
	tp, err := newProvider(ctx, cfg, sdktrace.NewBatchSpanProcessor(exporter))
	if err != nil {
		return noop, err
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

func newProvider(ctx context.Context, cfg Config, processor sdktrace.SpanProcessor) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	), nil
}

func sampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// Tracer returns the module tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
