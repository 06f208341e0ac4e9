// Package otel holds tracing helpers shared by the store, resolver and download packages.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span attribute keys used across packages
const (
	AttrAppID        = attribute.Key("app.id")
	AttrPackageName  = attribute.Key("app.package_name")
	AttrSourceID     = attribute.Key("source.id")
	AttrSourceKind   = attribute.Key("source.kind")
	AttrDeviceID     = attribute.Key("device.id")
	AttrDownloadHost = attribute.Key("download.host")
	AttrResultCount  = attribute.Key("result.count")
)

// StartSpan starts a span on tracer. A nil tracer yields a no-op span and leaves ctx unchanged.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, noop.Span{}
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks it failed. The status text stays
// generic; queries and URLs only appear in the recorded error event.
func RecordError(span trace.Span, err error) {
	if err == nil || span == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "operation failed")
}
