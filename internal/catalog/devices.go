package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kosher-appstore/appstore-server/internal/domains"
	"github.com/kosher-appstore/appstore-server/internal/otel"
	"github.com/kosher-appstore/appstore-server/internal/store"
)

// RegisterDevice creates the device or refreshes its last-seen time and IP
func (s *Service) RegisterDevice(ctx context.Context, deviceID, clientIP string) (*store.Device, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "catalog.RegisterDevice")
	defer span.End()

	if !domains.ValidDeviceID(deviceID) {
		return nil, ErrInvalidDeviceID
	}
	span.SetAttributes(otel.AttrDeviceID.String(deviceID))

	device, err := s.store.UpsertDevice(ctx, deviceID, clientIP, s.now())
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to register device: %w", err)
	}
	slog.DebugContext(ctx, "Device registered", "device_id", deviceID)
	return device, nil
}

// ListApps returns the catalog ordered by display name. A valid deviceID has
// its last-seen time refreshed; an invalid or empty one is ignored.
func (s *Service) ListApps(ctx context.Context, deviceID string) ([]store.App, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "catalog.ListApps")
	defer span.End()

	if domains.ValidDeviceID(deviceID) {
		if err := s.store.TouchDevice(ctx, deviceID, s.now()); err != nil {
			slog.WarnContext(ctx, "Failed to refresh device last-seen", "device_id", deviceID, "error", err)
		}
	}

	apps, err := s.store.ListApps(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(apps)))
	return apps, nil
}
