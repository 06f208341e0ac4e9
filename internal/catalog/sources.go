package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/kosher-appstore/appstore-server/internal/store"
)

// SourceDetail is a source with a summary of the links it produced
type SourceDetail struct {
	store.Source
	Stats store.SourceStats `json:"stats"`
}

// SourcePatch is an administrative change to a source; nil fields are left alone
type SourcePatch struct {
	Enabled  *bool   `json:"enabled,omitempty"`
	Priority *int    `json:"priority,omitempty"`
	BaseURL  *string `json:"base_url,omitempty"`
}

func (p SourcePatch) validate() error {
	if p.Priority != nil && *p.Priority < 0 {
		return fmt.Errorf("%w: priority must be zero or greater", ErrInvalidSourceUpdate)
	}
	if p.BaseURL != nil {
		u, err := url.Parse(*p.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: base_url must be an absolute URL", ErrInvalidSourceUpdate)
		}
	}
	return nil
}

// ListSources returns every source ordered by priority
func (s *Service) ListSources(ctx context.Context) ([]store.Source, error) {
	all, err := s.store.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return all, nil
}

// GetSource returns a source with its link statistics
func (s *Service) GetSource(ctx context.Context, id string) (*SourceDetail, error) {
	source, err := s.store.GetSource(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrSourceNotFound, "failed to get source")
	}
	stats, err := s.store.GetSourceStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get source stats: %w", err)
	}
	return &SourceDetail{Source: *source, Stats: *stats}, nil
}

// UpdateSource applies patch to a source. Changes take effect on the next
// resolution; downloads already handed out keep their source.
func (s *Service) UpdateSource(ctx context.Context, id string, patch SourcePatch) (*store.Source, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	source, err := s.store.UpdateSource(ctx, id, store.SourceUpdate{
		Enabled:  patch.Enabled,
		Priority: patch.Priority,
		BaseURL:  patch.BaseURL,
	})
	if err != nil {
		return nil, notFoundAs(err, ErrSourceNotFound, "failed to update source")
	}

	slog.InfoContext(ctx, "Source updated",
		"source_id", id, "enabled", source.Enabled, "priority", source.Priority)
	return source, nil
}
