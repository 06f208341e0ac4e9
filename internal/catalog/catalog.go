// Package catalog implements the client and administrative use-cases of the
// app store: device registration, catalog listing, download link issuance,
// adding apps through source resolution and source administration.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kosher-appstore/appstore-server/internal/resolver"
	"github.com/kosher-appstore/appstore-server/internal/sources"
	"github.com/kosher-appstore/appstore-server/internal/store"
)

var (
	// ErrInvalidDeviceID is returned when a device id is not a v4 UUID
	ErrInvalidDeviceID = errors.New("invalid device ID")
	// ErrDeviceNotRegistered is returned when a device must exist but does not
	ErrDeviceNotRegistered = errors.New("device not registered")
	// ErrAppNotFound is returned for an unknown app id
	ErrAppNotFound = errors.New("app not found")
	// ErrNoVersions is returned when an app has no stored version
	ErrNoVersions = errors.New("no versions available for this app")
	// ErrNoDownloadSource is returned when no enabled source links the latest version
	ErrNoDownloadSource = errors.New("no download sources available for this app")
	// ErrInvalidApp is returned when an add-app request names no valid package
	ErrInvalidApp = errors.New("invalid app request")
	// ErrAppExists is returned when the package is already in the catalog
	ErrAppExists = errors.New("app already exists")
	// ErrNoSources is returned when resolution is asked for with every source disabled
	ErrNoSources = errors.New("no enabled sources available")
	// ErrMetadataNotFound is returned when no source yields metadata
	ErrMetadataNotFound = errors.New("could not fetch app metadata from any source")
	// ErrSourceNotFound is returned for an unknown source id
	ErrSourceNotFound = errors.New("source not found")
	// ErrInvalidSourceUpdate is returned when a source patch breaks a field rule
	ErrInvalidSourceUpdate = errors.New("invalid source update")
)

// RecentEventsLimit is how many download events an app detail carries
const RecentEventsLimit = 50

// TokenIssuer mints download capability tokens
type TokenIssuer interface {
	Issue(deviceID, appID, appVersionID, appSourceID string) (string, error)
}

// Resolver runs the source resolution pipeline
type Resolver interface {
	ResolveMetadata(ctx context.Context, packageName string, all []sources.Descriptor) (*resolver.MetadataResult, error)
	ResolveDownloadURL(ctx context.Context, packageName string, versionCode int64,
		all []sources.Descriptor) (*resolver.DownloadURLResult, error)
	TestAll(ctx context.Context, packageName string, all []sources.Descriptor) []resolver.Outcome
}

//go:generate mockgen -destination=mocks/mock_catalog.go -package=mocks -source=catalog.go Catalog

// Catalog is the set of use-cases served over HTTP
type Catalog interface {
	// Ping reports whether the backing store is reachable
	Ping(ctx context.Context) error

	// RegisterDevice creates the device or refreshes its last-seen time and IP
	RegisterDevice(ctx context.Context, deviceID, clientIP string) (*store.Device, error)
	// ListApps returns the client-facing catalog
	ListApps(ctx context.Context, deviceID string) ([]store.App, error)
	// RequestDownload hands a device a tokenized link to the latest version of an app
	RequestDownload(ctx context.Context, appID, deviceID string) (*DownloadLink, error)

	// ListAppStats returns every app with its version count
	ListAppStats(ctx context.Context) ([]store.AppStats, error)
	// GetAppDetail returns an app with versions, links and recent events
	GetAppDetail(ctx context.Context, appID string) (*AppDetail, error)
	// AddApp resolves and stores a new app
	AddApp(ctx context.Context, req AddAppRequest) (*store.App, error)
	// TestFetch runs the diagnostic sweep over every enabled source
	TestFetch(ctx context.Context, appID string) ([]resolver.Outcome, error)

	// ListSources returns every source ordered by priority
	ListSources(ctx context.Context) ([]store.Source, error)
	// GetSource returns a source with its link statistics
	GetSource(ctx context.Context, id string) (*SourceDetail, error)
	// UpdateSource applies an administrative patch to a source
	UpdateSource(ctx context.Context, id string, patch SourcePatch) (*store.Source, error)
}

var _ Catalog = (*Service)(nil)

// Service implements Catalog on top of a store.Store
type Service struct {
	store         store.Store
	tokens        TokenIssuer
	resolver      Resolver
	publicBaseURL string
	now           func() time.Time
	tracer        trace.Tracer
}

// Option configures a Service
type Option func(*Service)

// WithPublicBaseURL sets the origin prefixed to /api/downloads/{token}
func WithPublicBaseURL(u string) Option {
	return func(s *Service) {
		s.publicBaseURL = strings.TrimRight(u, "/")
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTracer wraps use-cases in spans
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New creates a Service
func New(st store.Store, tokens TokenIssuer, res Resolver, opts ...Option) *Service {
	s := &Service{
		store:    st,
		tokens:   tokens,
		resolver: res,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping reports whether the store is reachable
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// enabledSources returns the enabled source descriptors
func (s *Service) enabledSources(ctx context.Context) ([]sources.Descriptor, error) {
	all, err := s.store.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return resolver.Ordered(store.Descriptors(all)), nil
}

// notFoundAs maps store.ErrNotFound to target and leaves other errors wrapped with msg
func notFoundAs(err, target error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return target
	}
	return fmt.Errorf("%s: %w", msg, err)
}
