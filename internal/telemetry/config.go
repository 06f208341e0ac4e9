// Package telemetry wires OpenTelemetry tracing and metrics for the app store server.
// Traces and metrics are pushed over OTLP/HTTP; metrics can additionally be
// scraped from a Prometheus endpoint.
package telemetry

import (
	"errors"
	"fmt"
)

const (
	// DefaultServiceName is reported as service.name when none is configured
	DefaultServiceName = "appstore-api"

	// DefaultEndpoint is the OTLP/HTTP collector address
	DefaultEndpoint = "localhost:4318"

	// DefaultSampling is the trace sampling ratio used when none is configured
	DefaultSampling = 0.05
)

// Config is the telemetry section of the server configuration
type Config struct {
	// Enabled turns telemetry on. When false every provider is a no-op.
	Enabled bool `yaml:"enabled"`

	ServiceName    string `yaml:"serviceName,omitempty"`
	ServiceVersion string `yaml:"serviceVersion,omitempty"`

	// Endpoint is the OTLP collector as "host:port"
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure sends OTLP data over plain HTTP. Development only.
	Insecure bool `yaml:"insecure,omitempty"`

	Tracing *TracingConfig `yaml:"tracing,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// TracingConfig configures span export
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Sampling is the ratio of traces kept, between 0.0 and 1.0
	Sampling float64 `yaml:"sampling,omitempty"`
}

// MetricsConfig configures metric export
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// OTLP pushes metrics to the collector. Defaults to true when Prometheus is off.
	OTLP *bool `yaml:"otlp,omitempty"`

	// Prometheus exposes a scrape endpoint at /metrics on the API server
	Prometheus bool `yaml:"prometheus,omitempty"`
}

// GetServiceName returns the configured service name or DefaultServiceName
func (c *Config) GetServiceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// GetServiceVersion returns the configured service version or "unknown"
func (c *Config) GetServiceVersion() string {
	if c.ServiceVersion == "" {
		return "unknown"
	}
	return c.ServiceVersion
}

// GetEndpoint returns the configured collector endpoint or DefaultEndpoint
func (c *Config) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

// GetSampling returns the sampling ratio. Zero is read as "unset".
func (c *TracingConfig) GetSampling() float64 {
	if c.Sampling == 0.0 {
		return DefaultSampling
	}
	return c.Sampling
}

// PushOTLP reports whether metrics should be exported to the collector
func (c *MetricsConfig) PushOTLP() bool {
	if c.OTLP != nil {
		return *c.OTLP
	}
	return !c.Prometheus
}

// Validate checks the telemetry configuration. A nil or disabled config is valid.
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	var errs []error
	if c.Tracing != nil && c.Tracing.Enabled {
		if c.Tracing.Sampling < 0 || c.Tracing.Sampling > 1.0 {
			errs = append(errs, fmt.Errorf("tracing: sampling must be between 0.0 and 1.0, got %f", c.Tracing.Sampling))
		}
	}
	if c.Metrics != nil && c.Metrics.Enabled {
		if !c.Metrics.PushOTLP() && !c.Metrics.Prometheus {
			errs = append(errs, errors.New("metrics: enabled but neither otlp nor prometheus export is on"))
		}
	}

	return errors.Join(errs...)
}
