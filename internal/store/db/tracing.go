package db

import (
	"context"

	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the name used for the database store tracer
const TracerName = "github.com/kosher-appstore/appstore-server/store/db"

// startSpan starts a span tagged with db.system, or returns the span already
// in ctx when no tracer is configured
func (s *dbStore) startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	opts = append([]trace.SpanStartOption{trace.WithAttributes(semconv.DBSystemPostgreSQL)}, opts...)
	return s.tracer.Start(ctx, name, opts...)
}
