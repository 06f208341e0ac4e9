// Package resolver consults configured sources in priority order to find a
// package's metadata or binary URL, and runs diagnostic sweeps over them.
package resolver

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kosher-appstore/appstore-server/internal/otel"
	"github.com/kosher-appstore/appstore-server/internal/sources"
	"github.com/kosher-appstore/appstore-server/internal/telemetry"
)

// ErrNoResult is returned when no enabled source produced a result.
// It wraps sources.ErrNotFound.
var ErrNoResult = fmt.Errorf("no source produced a result: %w", sources.ErrNotFound)

// Status is the outcome of one source in a diagnostic sweep
type Status string

const (
	// StatusSuccess means the source returned metadata with at least one version
	StatusSuccess Status = "success"
	// StatusFailure means the source returned nothing usable or failed
	StatusFailure Status = "failure"
)

// noVersionsMessage is reported for sources that answer without any version
const noVersionsMessage = "No metadata or versions found"

// MetadataResult is metadata together with the source that produced it
type MetadataResult struct {
	Source   sources.Descriptor
	Metadata *sources.AppMetadata
}

// DownloadURLResult is a binary URL together with the source that produced it
type DownloadURLResult struct {
	Source sources.Descriptor
	URL    string
}

// Outcome is one source's diagnostic record from TestAll
type Outcome struct {
	SourceID   string    `json:"source_id"`
	SourceName string    `json:"source_name"`
	Status     Status    `json:"status"`
	URL        string    `json:"url,omitempty"`
	Error      string    `json:"error,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Resolver runs provider calls sequentially; it holds no per-request state
// and is safe for concurrent use.
type Resolver struct {
	factory sources.Factory
	metrics *telemetry.ResolverMetrics
	tracer  trace.Tracer
	now     func() time.Time
}

// Option configures a Resolver
type Option func(*Resolver)

// WithMetrics records one observation per provider call
func WithMetrics(m *telemetry.ResolverMetrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithTracer wraps each resolution in a span
func WithTracer(t trace.Tracer) Option {
	return func(r *Resolver) {
		r.tracer = t
	}
}

// WithClock replaces time.Now for outcome timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// New creates a Resolver that builds providers with factory
func New(factory sources.Factory, opts ...Option) *Resolver {
	r := &Resolver{
		factory: factory,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ordered returns the enabled sources sorted by ascending priority.
// Sources with equal priority keep their input order.
func Ordered(all []sources.Descriptor) []sources.Descriptor {
	enabled := make([]sources.Descriptor, 0, len(all))
	for _, s := range all {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	slices.SortStableFunc(enabled, func(a, b sources.Descriptor) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return enabled
}

// ResolveMetadata returns the first metadata produced by the enabled sources
// in priority order. Later sources are not consulted once one succeeds.
func (r *Resolver) ResolveMetadata(
	ctx context.Context, packageName string, all []sources.Descriptor,
) (*MetadataResult, error) {
	ctx, span := otel.StartSpan(ctx, r.tracer, "resolver.ResolveMetadata",
		trace.WithAttributes(otel.AttrPackageName.String(packageName)))
	defer span.End()

	for _, source := range Ordered(all) {
		var meta *sources.AppMetadata
		err := r.call(ctx, source, "metadata", func(p sources.Provider) error {
			var err error
			meta, err = p.FetchMetadata(ctx, packageName)
			if err == nil && meta == nil {
				err = sources.ErrNotFound
			}
			return err
		})
		if err != nil {
			continue
		}

		span.SetAttributes(otel.AttrSourceID.String(source.ID))
		return &MetadataResult{Source: source, Metadata: meta}, nil
	}

	return nil, ErrNoResult
}

// ResolveDownloadURL returns the first binary URL produced by the enabled
// sources in priority order. A zero versionCode asks for the latest version.
func (r *Resolver) ResolveDownloadURL(
	ctx context.Context, packageName string, versionCode int64, all []sources.Descriptor,
) (*DownloadURLResult, error) {
	ctx, span := otel.StartSpan(ctx, r.tracer, "resolver.ResolveDownloadURL",
		trace.WithAttributes(otel.AttrPackageName.String(packageName)))
	defer span.End()

	for _, source := range Ordered(all) {
		var link string
		err := r.call(ctx, source, "download_url", func(p sources.Provider) error {
			var err error
			link, err = p.GetDownloadURL(ctx, packageName, versionCode)
			if err == nil && link == "" {
				err = sources.ErrNotFound
			}
			return err
		})
		if err != nil {
			continue
		}

		span.SetAttributes(otel.AttrSourceID.String(source.ID))
		return &DownloadURLResult{Source: source, URL: link}, nil
	}

	return nil, ErrNoResult
}

// TestAll asks every enabled source for packageName's metadata and returns one
// outcome per source, in priority order. It never stops early.
func (r *Resolver) TestAll(ctx context.Context, packageName string, all []sources.Descriptor) []Outcome {
	ctx, span := otel.StartSpan(ctx, r.tracer, "resolver.TestAll",
		trace.WithAttributes(otel.AttrPackageName.String(packageName)))
	defer span.End()

	ordered := Ordered(all)
	outcomes := make([]Outcome, 0, len(ordered))
	for _, source := range ordered {
		outcome := Outcome{
			SourceID:   source.ID,
			SourceName: source.Name,
			CheckedAt:  r.now(),
		}

		var meta *sources.AppMetadata
		err := r.call(ctx, source, "test", func(p sources.Provider) error {
			var err error
			meta, err = p.FetchMetadata(ctx, packageName)
			return err
		})

		latest, ok := meta.Latest()
		switch {
		case err != nil && !errors.Is(err, sources.ErrNotFound):
			outcome.Status = StatusFailure
			outcome.Error = err.Error()
		case err != nil || !ok:
			outcome.Status = StatusFailure
			outcome.Error = noVersionsMessage
		default:
			outcome.Status = StatusSuccess
			outcome.URL = latest.DownloadURL
		}
		outcomes = append(outcomes, outcome)
	}

	span.SetAttributes(attribute.Int("sources.tested", len(outcomes)))
	return outcomes
}

// call builds the source's provider and runs fn, converting panics to errors
// and recording the outcome
func (r *Resolver) call(
	ctx context.Context, source sources.Descriptor, operation string, fn func(sources.Provider) error,
) (err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("provider panicked: %v", rec)
		}
		r.record(ctx, source, operation, err, time.Since(start))
	}()

	provider, err := r.factory.CreateProvider(source)
	if err != nil {
		return err
	}
	return fn(provider)
}

func (r *Resolver) record(ctx context.Context, source sources.Descriptor, operation string, err error, elapsed time.Duration) {
	outcome := "success"
	switch {
	case errors.Is(err, sources.ErrNotFound):
		outcome = "not_found"
		slog.DebugContext(ctx, "Source had no result",
			"source_id", source.ID, "kind", source.Kind, "operation", operation)
	case err != nil:
		outcome = "error"
		slog.WarnContext(ctx, "Source call failed",
			"source_id", source.ID, "kind", source.Kind, "operation", operation, "error", err)
	}
	r.metrics.RecordCall(ctx, string(source.Kind), operation, outcome, elapsed)
}
