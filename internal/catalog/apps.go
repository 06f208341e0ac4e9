package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/kosher-appstore/appstore-server/internal/domains"
	"github.com/kosher-appstore/appstore-server/internal/otel"
	"github.com/kosher-appstore/appstore-server/internal/resolver"
	"github.com/kosher-appstore/appstore-server/internal/sources"
	"github.com/kosher-appstore/appstore-server/internal/store"
)

// AddAppRequest names the package to add, either directly or through its
// Play Store details URL. PlayURL wins when both are set.
type AddAppRequest struct {
	PlayURL     string `json:"play_url,omitempty"`
	PackageName string `json:"package_name,omitempty"`
}

// AppDetail is an app with its versions, their links and recent download events
type AppDetail struct {
	store.App
	Versions     []VersionDetail       `json:"app_versions"`
	RecentEvents []store.DownloadEvent `json:"recent_events"`
}

// VersionDetail is a version with the links sources yielded for it
type VersionDetail struct {
	store.AppVersion
	Links []LinkDetail `json:"app_source_versions"`
}

// LinkDetail is a source-version link with its source
type LinkDetail struct {
	store.SourceVersion
	Source *store.Source `json:"app_source,omitempty"`
}

// packageName validates req and returns the package it names
func (req AddAppRequest) packageName() (string, error) {
	switch {
	case strings.TrimSpace(req.PlayURL) != "":
		name, ok := domains.PackageNameFromPlayURL(req.PlayURL)
		if !ok {
			return "", fmt.Errorf("%w: invalid Play Store URL", ErrInvalidApp)
		}
		return name, nil
	case strings.TrimSpace(req.PackageName) != "":
		if !domains.ValidPackageName(req.PackageName) {
			return "", fmt.Errorf("%w: invalid package name format", ErrInvalidApp)
		}
		return req.PackageName, nil
	default:
		return "", fmt.Errorf("%w: either play_url or package_name must be provided", ErrInvalidApp)
	}
}

// ListAppStats returns every app with its version count, most recently updated first
func (s *Service) ListAppStats(ctx context.Context) ([]store.AppStats, error) {
	apps, err := s.store.ListAppStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	return apps, nil
}

// GetAppDetail returns an app with its versions, links and the most recent download events
func (s *Service) GetAppDetail(ctx context.Context, appID string) (*AppDetail, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "catalog.GetAppDetail",
		trace.WithAttributes(otel.AttrAppID.String(appID)))
	defer span.End()

	app, err := s.store.GetApp(ctx, appID)
	if err != nil {
		return nil, notFoundAs(err, ErrAppNotFound, "failed to get app")
	}
	versions, err := s.store.ListVersions(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	links, err := s.store.ListSourceVersions(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to list source links: %w", err)
	}
	all, err := s.store.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	events, err := s.store.ListDownloadEvents(ctx, appID, RecentEventsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list download events: %w", err)
	}

	byID := make(map[string]*store.Source, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}
	linksByVersion := make(map[string][]LinkDetail)
	for _, l := range links {
		linksByVersion[l.AppVersionID] = append(linksByVersion[l.AppVersionID],
			LinkDetail{SourceVersion: l, Source: byID[l.AppSourceID]})
	}

	detail := &AppDetail{
		App:          *app,
		Versions:     make([]VersionDetail, 0, len(versions)),
		RecentEvents: events,
	}
	for _, v := range versions {
		vl := linksByVersion[v.ID]
		if vl == nil {
			vl = []LinkDetail{}
		}
		detail.Versions = append(detail.Versions, VersionDetail{AppVersion: v, Links: vl})
	}
	if detail.RecentEvents == nil {
		detail.RecentEvents = []store.DownloadEvent{}
	}
	return detail, nil
}

// AddApp resolves metadata for the requested package over the enabled
// sources and stores the app, its versions and the links the winning source
// produced. When that source yields no binary URL, a download-URL pass over
// the enabled sources links the latest version. An existing package returns
// the stored app together with ErrAppExists.
func (s *Service) AddApp(ctx context.Context, req AddAppRequest) (*store.App, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "catalog.AddApp")
	defer span.End()

	packageName, err := req.packageName()
	if err != nil {
		return nil, err
	}
	span.SetAttributes(otel.AttrPackageName.String(packageName))

	existing, err := s.store.GetAppByPackage(ctx, packageName)
	switch {
	case err == nil:
		return existing, ErrAppExists
	case !errors.Is(err, store.ErrNotFound):
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to look up package: %w", err)
	}

	enabled, err := s.enabledSources(ctx)
	if err != nil {
		return nil, err
	}
	if len(enabled) == 0 {
		return nil, ErrNoSources
	}

	found, err := s.resolver.ResolveMetadata(ctx, packageName, enabled)
	if err != nil {
		if errors.Is(err, resolver.ErrNoResult) {
			return nil, ErrMetadataNotFound
		}
		return nil, fmt.Errorf("failed to resolve metadata: %w", err)
	}

	params := s.newAppParams(packageName, req.PlayURL, found)
	if !found.Metadata.HasDownloadURL() && len(params.Versions) > 0 {
		s.enhanceDownloadURL(ctx, packageName, enabled, &params.Versions[0])
	}

	app, err := s.store.CreateApp(ctx, params)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent add of the same package.
			existing, getErr := s.store.GetAppByPackage(ctx, packageName)
			if getErr != nil {
				return nil, fmt.Errorf("failed to create app: %w", err)
			}
			return existing, ErrAppExists
		}
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to create app: %w", err)
	}

	slog.InfoContext(ctx, "App added",
		"app_id", app.ID, "package", packageName, "source_id", found.Source.ID, "versions", len(params.Versions))
	return app, nil
}

// newAppParams converts resolved metadata into the rows to insert. The
// latest version comes first.
func (s *Service) newAppParams(packageName, playURL string, found *resolver.MetadataResult) store.CreateAppParams {
	meta := found.Metadata
	if playURL == "" {
		playURL = meta.PlayURL
	}

	app := store.App{
		PackageName:      packageName,
		PlayURL:          playURL,
		DisplayName:      meta.DisplayName,
		ShortDescription: meta.ShortDescription,
		FullDescription:  meta.FullDescription,
		IconURL:          meta.IconURL,
	}
	if app.DisplayName == "" {
		app.DisplayName = packageName
	}

	var versions []store.NewVersion
	latest, ok := meta.Latest()
	if ok {
		app.CurrentVersionName = latest.Name
		app.CurrentVersionCode = latest.Code
		versions = append(versions, newVersion(latest, found.Source.ID))
	}
	for _, v := range meta.Versions {
		if ok && v.Code == latest.Code {
			continue
		}
		versions = append(versions, newVersion(v, found.Source.ID))
	}

	return store.CreateAppParams{App: app, Versions: versions, CheckedAt: s.now()}
}

func newVersion(v sources.Version, sourceID string) store.NewVersion {
	nv := store.NewVersion{VersionName: v.Name, VersionCode: v.Code}
	if v.DownloadURL != "" {
		nv.Links = []store.NewLink{{AppSourceID: sourceID, DownloadURL: v.DownloadURL}}
	}
	return nv
}

// enhanceDownloadURL asks the enabled sources for the latest binary and
// links it to version. Failure leaves the version without links.
func (s *Service) enhanceDownloadURL(
	ctx context.Context, packageName string, enabled []sources.Descriptor, version *store.NewVersion,
) {
	found, err := s.resolver.ResolveDownloadURL(ctx, packageName, 0, enabled)
	if err != nil {
		slog.InfoContext(ctx, "No source yielded a download URL", "package", packageName, "error", err)
		return
	}
	version.Links = append(version.Links, store.NewLink{AppSourceID: found.Source.ID, DownloadURL: found.URL})
}

// TestFetch runs the diagnostic sweep over every enabled source for an app
// and records each outcome as the status of the latest version's existing
// links. Links and their download URLs are left as they are.
func (s *Service) TestFetch(ctx context.Context, appID string) ([]resolver.Outcome, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "catalog.TestFetch",
		trace.WithAttributes(otel.AttrAppID.String(appID)))
	defer span.End()

	app, err := s.store.GetApp(ctx, appID)
	if err != nil {
		return nil, notFoundAs(err, ErrAppNotFound, "failed to get app")
	}
	enabled, err := s.enabledSources(ctx)
	if err != nil {
		return nil, err
	}

	outcomes := s.resolver.TestAll(ctx, app.PackageName, enabled)

	latest, err := s.store.LatestVersion(ctx, appID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "Failed to load latest version for link checks", "app_id", appID, "error", err)
		}
		return outcomes, nil
	}

	for _, o := range outcomes {
		check := store.LinkCheck{
			AppVersionID: latest.ID,
			AppSourceID:  o.SourceID,
			Status:       store.LinkStatusFailed,
			CheckedAt:    o.CheckedAt,
		}
		if o.Status == resolver.StatusSuccess {
			check.Status = store.LinkStatusOK
		}
		if err := s.store.RecordLinkCheck(ctx, check); err != nil {
			slog.WarnContext(ctx, "Failed to record link check",
				"app_id", appID, "source_id", o.SourceID, "error", err)
		}
	}
	return outcomes, nil
}
