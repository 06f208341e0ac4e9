package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/kosher-appstore/appstore-server/internal/domains"
	"github.com/kosher-appstore/appstore-server/internal/otel"
	"github.com/kosher-appstore/appstore-server/internal/store"
)

// DownloadLink is handed to a client that asked to install an app
type DownloadLink struct {
	DownloadURL string `json:"download_url"`
}

// RequestDownload picks the latest version of appID and its best enabled
// source, records the start of the download and returns a link to the
// download proxy carrying a fresh capability token.
func (s *Service) RequestDownload(ctx context.Context, appID, deviceID string) (*DownloadLink, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "catalog.RequestDownload")
	defer span.End()

	if !domains.ValidDeviceID(deviceID) {
		return nil, ErrInvalidDeviceID
	}
	span.SetAttributes(otel.AttrDeviceID.String(deviceID), otel.AttrAppID.String(appID))

	if _, err := s.store.GetDevice(ctx, deviceID); err != nil {
		return nil, notFoundAs(err, ErrDeviceNotRegistered, "failed to get device")
	}
	if _, err := s.store.GetApp(ctx, appID); err != nil {
		return nil, notFoundAs(err, ErrAppNotFound, "failed to get app")
	}

	version, err := s.store.LatestVersion(ctx, appID)
	if err != nil {
		return nil, notFoundAs(err, ErrNoVersions, "failed to get latest version")
	}
	link, err := s.store.BestSourceVersion(ctx, version.ID)
	if err != nil {
		return nil, notFoundAs(err, ErrNoDownloadSource, "failed to pick a download source")
	}
	span.SetAttributes(otel.AttrSourceID.String(link.AppSourceID))

	if err := s.store.AppendDownloadEvent(ctx, &store.DownloadEvent{
		DeviceID:     deviceID,
		AppID:        appID,
		AppVersionID: version.ID,
		AppSourceID:  link.AppSourceID,
		Type:         store.EventStart,
	}); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to record download start: %w", err)
	}

	if err := s.store.CreateInstall(ctx, &store.Install{
		DeviceID:     deviceID,
		AppID:        appID,
		AppVersionID: version.ID,
		Status:       store.InstallDownloadStarted,
	}); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to record install: %w", err)
	}

	tok, err := s.tokens.Issue(deviceID, appID, version.ID, link.AppSourceID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to issue download token: %w", err)
	}

	slog.InfoContext(ctx, "Download requested",
		"device_id", deviceID, "app_id", appID, "version_code", version.VersionCode, "source_id", link.AppSourceID)

	return &DownloadLink{DownloadURL: s.publicBaseURL + "/api/downloads/" + url.PathEscape(tok)}, nil
}
