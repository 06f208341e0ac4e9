package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{name: "nil config", config: nil},
		{name: "disabled ignores bad values", config: &Config{
			Tracing: &TracingConfig{Enabled: true, Sampling: 7},
		}},
		{name: "valid tracing", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: true, Sampling: 0.5},
		}},
		{name: "sampling above one", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: true, Sampling: 1.5},
		}, wantErr: "sampling must be between"},
		{name: "negative sampling", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: true, Sampling: -0.1},
		}, wantErr: "sampling must be between"},
		{name: "prometheus only", config: &Config{
			Enabled: true,
			Metrics: &MetricsConfig{Enabled: true, Prometheus: true},
		}},
		{name: "metrics with no exporter", config: &Config{
			Enabled: true,
			Metrics: &MetricsConfig{Enabled: true, OTLP: boolPtr(false)},
		}, wantErr: "neither otlp nor prometheus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	assert.Equal(t, DefaultServiceName, cfg.GetServiceName())
	assert.Equal(t, "unknown", cfg.GetServiceVersion())
	assert.Equal(t, DefaultEndpoint, cfg.GetEndpoint())
	assert.InDelta(t, DefaultSampling, (&TracingConfig{}).GetSampling(), 0.0001)

	cfg = &Config{ServiceName: "svc", ServiceVersion: "1.2.3", Endpoint: "otel:4318"}
	assert.Equal(t, "svc", cfg.GetServiceName())
	assert.Equal(t, "1.2.3", cfg.GetServiceVersion())
	assert.Equal(t, "otel:4318", cfg.GetEndpoint())
}

func TestMetricsConfig_PushOTLP(t *testing.T) {
	t.Parallel()

	assert.True(t, (&MetricsConfig{}).PushOTLP())
	assert.False(t, (&MetricsConfig{Prometheus: true}).PushOTLP())
	assert.True(t, (&MetricsConfig{Prometheus: true, OTLP: boolPtr(true)}).PushOTLP())
	assert.False(t, (&MetricsConfig{OTLP: boolPtr(false)}).PushOTLP())
}
