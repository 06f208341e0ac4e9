package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	t.Parallel()

	for _, cfg := range []*Config{nil, {Enabled: false}} {
		tel, err := New(context.Background(), cfg)
		require.NoError(t, err)
		assert.NotNil(t, tel.TracerProvider())
		assert.NotNil(t, tel.MeterProvider())
		assert.Nil(t, tel.MetricsHandler())
		require.NoError(t, tel.Shutdown(context.Background()))
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), &Config{
		Enabled: true,
		Tracing: &TracingConfig{Enabled: true, Sampling: 3},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid telemetry configuration")
}

func TestNew_PrometheusHandler(t *testing.T) {
	t.Parallel()

	tel, err := New(context.Background(), &Config{
		Enabled: true,
		Metrics: &MetricsConfig{Enabled: true, Prometheus: true},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	dm, err := NewDownloadMetrics(tel.MeterProvider())
	require.NoError(t, err)
	dm.RecordOutcome(context.Background(), "success")

	handler := tel.MetricsHandler()
	require.NotNil(t, handler)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "appstore_downloads_total")
}
