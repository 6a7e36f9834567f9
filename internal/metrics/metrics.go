// Package metrics sets up the OTEL meter provider and the Prometheus scrape
// endpoint.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/bridge-screener/internal/logger"
)

// MetricProvider is the meter provider handed back to main.
type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

func getReaders(ctx context.Context, cfg Config) ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	for _, exp := range cfg.Exporters {
		switch exp.Exporter {
		case PrometheusExporter:
			promExporter, err := prometheus.New()
			if err != nil {
				return nil, fmt.Errorf("prometheus exporter: %w", err)
			}
			readers = append(readers, promExporter)

		case CollectorExporter:
			opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpointURL(exp.Endpoint)}
			if exp.Insecure {
				opts = append(opts, otlpmetricgrpc.WithInsecure())
			}

			pusher, err := otlpmetricgrpc.New(ctx, opts...)
			if err != nil {
				return nil, fmt.Errorf("otlp metric exporter: %w", err)
			}
			interval := exp.Interval
			if interval <= 0 {
				interval = defaultPushInterval
			}
			readers = append(readers, sdkmetric.NewPeriodicReader(pusher, sdkmetric.WithInterval(interval)))
		}
	}

	if len(readers) == 0 {
		return nil, errors.New("no metric provider configured")
	}
	return readers, nil
}

// NewMetricProvider builds a meter provider with the configured readers and
// installs it globally.
func NewMetricProvider(options ...OptionFn) (MetricProvider, error) {
	var cfg Config
	for _, opt := range options {
		opt(&cfg)
	}

	readers, err := getReaders(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	var opts []sdkmetric.Option
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	opts = append(opts, sdkmetric.WithResource(
		resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.ServiceName)),
	))

	meterProvider := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(meterProvider)

	return meterProvider, nil
}

// PrometheusServer exposes /metrics for scraping.
type PrometheusServer struct {
	server *http.Server
	log    logger.LoggerInterface
}

// NewPrometheusServer builds the scrape server; call Start to serve.
func NewPrometheusServer(log logger.LoggerInterface, opt ...PromOptionFn) *PrometheusServer {
	cfg := promServerConfig{port: 9090}
	for _, o := range opt {
		o(&cfg)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &PrometheusServer{
		server: &http.Server{
			Addr:              ":" + strconv.Itoa(cfg.port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Handler returns the scrape handler.
func (p *PrometheusServer) Handler() http.Handler {
	return p.server.Handler
}

// Start serves in the background.
func (p *PrometheusServer) Start() {
	go func() {
		p.log.Info(context.Background(), "serving metrics", "addr", p.server.Addr+"/metrics")
		if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.log.Warn(context.Background(), "metrics server stopped", "error", err)
		}
	}()
}

// Stop shuts the server down.
func (p *PrometheusServer) Stop(ctx context.Context) error {
	return p.server.Shutdown(ctx)
}
