package metrics

import (
	"strings"
	"time"
)

// Exporter names a metric reader backend.
type Exporter string

const (
	// PrometheusExporter serves metrics for scraping through PrometheusServer.
	PrometheusExporter Exporter = "prometheus"
	// CollectorExporter pushes metrics to an OTLP/gRPC collector.
	CollectorExporter Exporter = "otlp"
)

// defaultPushInterval is how often the collector exporter pushes; a loop
// iteration rarely finishes faster.
const defaultPushInterval = 30 * time.Second

// ExporterConfig describes one reader.
type ExporterConfig struct {
	Exporter Exporter
	// Endpoint, Insecure and Interval apply to CollectorExporter only.
	Endpoint string
	Insecure bool
	Interval time.Duration
}

// NewPrometheusConfig selects the pull exporter.
func NewPrometheusConfig() ExporterConfig {
	return ExporterConfig{Exporter: PrometheusExporter}
}

// NewCollectorConfig selects the OTLP push exporter. An http:// endpoint
// implies an insecure connection.
func NewCollectorConfig(endpoint string) ExporterConfig {
	return ExporterConfig{
		Exporter: CollectorExporter,
		Endpoint: endpoint,
		Insecure: strings.HasPrefix(endpoint, "http://"),
		Interval: defaultPushInterval,
	}
}

// Config holds the meter provider settings.
type Config struct {
	ServiceName string
	Exporters   []ExporterConfig
}

// OptionFn configures NewMetricProvider.
type OptionFn func(*Config)

// WithProviderConfig adds a reader.
func WithProviderConfig(exp ExporterConfig) OptionFn {
	return func(c *Config) { c.Exporters = append(c.Exporters, exp) }
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) OptionFn {
	return func(c *Config) { c.ServiceName = name }
}

type promServerConfig struct {
	port int
}

// PromOptionFn configures NewPrometheusServer.
type PromOptionFn func(*promServerConfig)

// WithPort sets the scrape port. Zero picks a free port.
func WithPort(port int) PromOptionFn {
	return func(c *promServerConfig) { c.port = port }
}
