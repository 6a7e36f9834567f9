package apm

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/bridge-screener/internal/logger"
)

type Provider string

const (
	ZipkinProvider   Provider = "zipkin"
	OTLPGRPCProvider Provider = "otlp-grpc"
	OTLPHTTPProvider Provider = "otlp-http"
	ConsoleProvider  Provider = "console"
	EmptyProvider    Provider = "none"
)

// TraceProvider is what main keeps to flush spans on exit.
type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type emptyTraceProvider struct{}

func (emptyTraceProvider) Stop() error { return nil }

type TracerOptions struct {
	exporter     sdktrace.SpanExporter
	providerName string
	serviceName  string
	useEmpty     bool
	err          error
}

type TracerOption func(*TracerOptions)

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) TracerOption {
	return func(o *TracerOptions) {
		o.serviceName = name
	}
}

// WithProvider selects an exporter. endpoint is the collector URL; it is
// ignored by the console and empty providers. Unknown providers fall back
// to no tracing.
func WithProvider(provider Provider, endpoint string, log logger.LoggerInterface) TracerOption {
	switch provider {
	case ZipkinProvider:
		return useExporter(provider, func() (sdktrace.SpanExporter, error) {
			return zipkin.New(endpoint)
		})
	case OTLPGRPCProvider:
		return useExporter(provider, func() (sdktrace.SpanExporter, error) {
			return otlptracegrpc.New(context.Background(), otlptracegrpc.WithEndpointURL(endpoint))
		})
	case OTLPHTTPProvider:
		return useExporter(provider, func() (sdktrace.SpanExporter, error) {
			return otlptracehttp.New(context.Background(), otlptracehttp.WithEndpointURL(endpoint))
		})
	case ConsoleProvider:
		return useExporter(provider, func() (sdktrace.SpanExporter, error) {
			return stdouttrace.New(stdouttrace.WithPrettyPrint())
		})
	case EmptyProvider:
		return useEmpty()
	}

	log.Warn(context.Background(), "unknown trace provider, tracing disabled", "provider", provider)
	return useEmpty()
}

// WithWriterExporter exports spans as JSON to w.
func WithWriterExporter(w io.Writer) TracerOption {
	return useExporter(ConsoleProvider, func() (sdktrace.SpanExporter, error) {
		return stdouttrace.New(stdouttrace.WithWriter(w))
	})
}

func useEmpty() TracerOption {
	return func(o *TracerOptions) {
		o.useEmpty = true
		o.providerName = string(EmptyProvider)
	}
}

func useExporter(provider Provider, build func() (sdktrace.SpanExporter, error)) TracerOption {
	return func(o *TracerOptions) {
		exp, err := build()
		if err != nil {
			o.err = fmt.Errorf("%s exporter: %w", provider, err)
			return
		}
		o.exporter = exp
		o.providerName = string(provider)
	}
}

// NewTraceProvider installs a global tracer provider and propagator.
func NewTraceProvider(options ...TracerOption) (TraceProvider, error) {
	opts := &TracerOptions{}
	for _, opt := range options {
		opt(opts)
	}

	if opts.err != nil {
		return nil, opts.err
	}
	if opts.useEmpty || opts.exporter == nil {
		return emptyTraceProvider{}, nil
	}

	rsrc, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceNameKey.String(opts.serviceName),
			attribute.String("otel.provider", opts.providerName),
		))
	if err != nil {
		return nil, fmt.Errorf("trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(opts.exporter),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &traceProvider{tp}, nil
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return o.tp.Shutdown(ctx)
}
