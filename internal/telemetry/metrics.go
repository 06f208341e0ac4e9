package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// ResolverMeterName names the meter for source resolution metrics
	ResolverMeterName = "github.com/kosher-appstore/appstore-server/resolver"

	// DownloadMeterName names the meter for download proxy metrics
	DownloadMeterName = "github.com/kosher-appstore/appstore-server/download"
)

// ResolverMetrics records one observation per provider call made by the resolution pipeline
type ResolverMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewResolverMetrics creates the resolver instruments. A nil provider yields nil metrics.
func NewResolverMetrics(provider metric.MeterProvider) (*ResolverMetrics, error) {
	if provider == nil {
		return nil, nil
	}
	meter := provider.Meter(ResolverMeterName)

	calls, err := meter.Int64Counter(
		"appstore_source_calls_total",
		metric.WithDescription("Provider calls by source kind, operation and outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"appstore_source_call_duration_seconds",
		metric.WithDescription("Duration of provider calls in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	return &ResolverMetrics{calls: calls, duration: duration}, nil
}

// RecordCall records a single provider call. outcome is "success", "not_found" or "error".
func (m *ResolverMetrics) RecordCall(ctx context.Context, kind, operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.calls.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// DownloadMetrics records proxied download outcomes and throughput
type DownloadMetrics struct {
	completed metric.Int64Counter
	bytes     metric.Int64Counter
	active    metric.Int64UpDownCounter
}

// NewDownloadMetrics creates the download instruments. A nil provider yields nil metrics.
func NewDownloadMetrics(provider metric.MeterProvider) (*DownloadMetrics, error) {
	if provider == nil {
		return nil, nil
	}
	meter := provider.Meter(DownloadMeterName)

	completed, err := meter.Int64Counter(
		"appstore_downloads_total",
		metric.WithDescription("Finished download requests by outcome"),
		metric.WithUnit("{download}"),
	)
	if err != nil {
		return nil, err
	}
	bytes, err := meter.Int64Counter(
		"appstore_download_bytes_total",
		metric.WithDescription("Bytes streamed to clients"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}
	active, err := meter.Int64UpDownCounter(
		"appstore_downloads_active",
		metric.WithDescription("Streams currently in progress"),
		metric.WithUnit("{download}"),
	)
	if err != nil {
		return nil, err
	}

	return &DownloadMetrics{completed: completed, bytes: bytes, active: active}, nil
}

// StreamStarted increments the active stream gauge
func (m *DownloadMetrics) StreamStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.active.Add(ctx, 1)
}

// StreamFinished decrements the active stream gauge and adds the bytes sent
func (m *DownloadMetrics) StreamFinished(ctx context.Context, written int64) {
	if m == nil {
		return
	}
	m.active.Add(ctx, -1)
	m.bytes.Add(ctx, written)
}

// RecordOutcome counts a finished request by outcome (e.g. "success", "not_found")
func (m *DownloadMetrics) RecordOutcome(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.completed.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
