package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, trace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func TestStartSpan(t *testing.T) {
	t.Parallel()

	t.Run("nil tracer returns no-op span", func(t *testing.T) {
		t.Parallel()

		ctx, span := StartSpan(context.Background(), nil, "store.GetApp")
		require.NotNil(t, ctx)
		assert.False(t, span.SpanContext().IsValid())
		assert.NotPanics(t, func() { span.End() })
	})

	t.Run("nil tracer leaves the parent span open", func(t *testing.T) {
		t.Parallel()

		exporter, tp := newTestTracerProvider(t)
		ctx, parent := tp.Tracer("test").Start(context.Background(), "GET /api/apps")

		_, span := StartSpan(ctx, nil, "catalog.ListApps")
		span.End()
		assert.Empty(t, exporter.GetSpans())

		parent.End()
		assert.Len(t, exporter.GetSpans(), 1)
	})

	t.Run("records name and attributes", func(t *testing.T) {
		t.Parallel()

		exporter, tp := newTestTracerProvider(t)
		_, span := StartSpan(context.Background(), tp.Tracer("test"), "resolver.ResolveMetadata",
			trace.WithAttributes(AttrPackageName.String("org.example.app")),
		)
		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "resolver.ResolveMetadata", spans[0].Name)
		require.Len(t, spans[0].Attributes, 1)
		assert.Equal(t, AttrPackageName, spans[0].Attributes[0].Key)
		assert.Equal(t, "org.example.app", spans[0].Attributes[0].Value.AsString())
	})
}

func TestRecordError(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracerProvider(t)

	_, span := tp.Tracer("test").Start(context.Background(), "with-error")
	RecordError(span, errors.New("select * from apps failed"))
	span.End()

	_, span = tp.Tracer("test").Start(context.Background(), "without-error")
	RecordError(span, nil)
	span.End()

	assert.NotPanics(t, func() { RecordError(nil, errors.New("x")) })

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "operation failed", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, codes.Unset, spans[1].Status.Code)
	assert.Empty(t, spans[1].Events)
}
