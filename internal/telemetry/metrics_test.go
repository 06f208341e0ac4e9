package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMeterProvider(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collectMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Metrics, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func sumInt64(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNilMetricsAreNoOps(t *testing.T) {
	t.Parallel()

	rm, err := NewResolverMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, rm)
	rm.RecordCall(context.Background(), "custom", "metadata", "success", time.Second)

	dm, err := NewDownloadMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, dm)
	dm.StreamStarted(context.Background())
	dm.StreamFinished(context.Background(), 10)
	dm.RecordOutcome(context.Background(), "success")
}

func TestResolverMetrics_RecordCall(t *testing.T) {
	t.Parallel()

	mp, reader := newTestMeterProvider(t)
	m, err := NewResolverMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCall(ctx, "apkmirror", "metadata", "not_found", 200*time.Millisecond)
	m.RecordCall(ctx, "custom", "metadata", "success", 50*time.Millisecond)

	calls, ok := collectMetric(t, reader, "appstore_source_calls_total")
	require.True(t, ok)
	assert.Equal(t, int64(2), sumInt64(t, calls))

	duration, ok := collectMetric(t, reader, "appstore_source_call_duration_seconds")
	require.True(t, ok)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2)
}

func TestDownloadMetrics(t *testing.T) {
	t.Parallel()

	mp, reader := newTestMeterProvider(t)
	m, err := NewDownloadMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.StreamStarted(ctx)
	m.StreamStarted(ctx)
	m.StreamFinished(ctx, 1024)
	m.RecordOutcome(ctx, "success")
	m.RecordOutcome(ctx, "not_found")

	active, ok := collectMetric(t, reader, "appstore_downloads_active")
	require.True(t, ok)
	assert.Equal(t, int64(1), sumInt64(t, active))

	bytes, ok := collectMetric(t, reader, "appstore_download_bytes_total")
	require.True(t, ok)
	assert.Equal(t, int64(1024), sumInt64(t, bytes))

	completed, ok := collectMetric(t, reader, "appstore_downloads_total")
	require.True(t, ok)
	assert.Equal(t, int64(2), sumInt64(t, completed))
}
