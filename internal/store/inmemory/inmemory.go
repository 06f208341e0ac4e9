// Package inmemory provides a mutex-guarded, process-local implementation of store.Store
package inmemory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kosher-appstore/appstore-server/internal/store"
)

// memStore implements store.Store. Every method takes mu for its whole body
// and copies values in and out, so callers never share memory with the store.
type memStore struct {
	mu  sync.RWMutex
	now func() time.Time

	devices  map[string]store.Device
	apps     map[string]store.App
	versions map[string]store.AppVersion
	sources  map[string]store.Source
	links    map[string]store.SourceVersion
	installs []store.Install
	events   []store.DownloadEvent
}

var _ store.Store = (*memStore)(nil)

// Option is a functional option for configuring the in-memory store
type Option func(*memStore)

// WithSources seeds the store with the given sources instead of store.DefaultSources
func WithSources(srcs ...store.Source) Option {
	return func(s *memStore) {
		s.sources = make(map[string]store.Source, len(srcs))
		for _, src := range srcs {
			s.sources[src.ID] = src
		}
	}
}

// WithClock replaces time.Now for generated timestamps
func WithClock(now func() time.Time) Option {
	return func(s *memStore) {
		s.now = now
	}
}

// New creates an empty store seeded with the default sources
func New(opts ...Option) store.Store {
	s := &memStore{
		now:      time.Now,
		devices:  make(map[string]store.Device),
		apps:     make(map[string]store.App),
		versions: make(map[string]store.AppVersion),
		links:    make(map[string]store.SourceVersion),
	}
	WithSources(store.DefaultSources()...)(s)
	for _, opt := range opts {
		opt(s)
	}

	created := s.now()
	for id, src := range s.sources {
		if src.CreatedAt.IsZero() {
			src.CreatedAt = created
			src.UpdatedAt = created
			s.sources[id] = src
		}
	}
	return s
}

func (*memStore) Ping(context.Context) error {
	return nil
}

func (s *memStore) UpsertDevice(_ context.Context, id, lastIP string, seenAt time.Time) (*store.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[id]
	if !ok {
		d = store.Device{ID: id, FirstSeenAt: seenAt}
	}
	d.LastSeenAt = seenAt
	d.LastIP = lastIP
	s.devices[id] = d
	return &d, nil
}

func (s *memStore) GetDevice(_ context.Context, id string) (*store.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.devices[id]
	if !ok {
		return nil, fmt.Errorf("device %s: %w", id, store.ErrNotFound)
	}
	return &d, nil
}

func (s *memStore) TouchDevice(_ context.Context, id string, seenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.devices[id]; ok {
		d.LastSeenAt = seenAt
		s.devices[id] = d
	}
	return nil
}

func (s *memStore) ListApps(context.Context) ([]store.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]store.App, 0, len(s.apps))
	for _, a := range s.apps {
		apps = append(apps, a)
	}
	slices.SortFunc(apps, func(a, b store.App) int {
		return cmp.Or(cmp.Compare(a.DisplayName, b.DisplayName), cmp.Compare(a.ID, b.ID))
	})
	return apps, nil
}

func (s *memStore) ListAppStats(context.Context) ([]store.AppStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, v := range s.versions {
		counts[v.AppID]++
	}

	stats := make([]store.AppStats, 0, len(s.apps))
	for _, a := range s.apps {
		stats = append(stats, store.AppStats{App: a, VersionCount: counts[a.ID]})
	}
	slices.SortFunc(stats, func(a, b store.AppStats) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(a.ID, b.ID))
	})
	return stats, nil
}

func (s *memStore) GetApp(_ context.Context, id string) (*store.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.apps[id]
	if !ok {
		return nil, fmt.Errorf("app %s: %w", id, store.ErrNotFound)
	}
	return &a, nil
}

func (s *memStore) GetAppByPackage(_ context.Context, packageName string) (*store.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.appByPackageLocked(packageName); ok {
		return &a, nil
	}
	return nil, fmt.Errorf("app %s: %w", packageName, store.ErrNotFound)
}

func (s *memStore) appByPackageLocked(packageName string) (store.App, bool) {
	for _, a := range s.apps {
		if a.PackageName == packageName {
			return a, true
		}
	}
	return store.App{}, false
}

func (s *memStore) CreateApp(_ context.Context, params store.CreateAppParams) (*store.App, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appByPackageLocked(params.App.PackageName); ok {
		return nil, fmt.Errorf("app %s: %w", params.App.PackageName, store.ErrAlreadyExists)
	}

	now := s.now()
	app := params.App
	app.ID = uuid.NewString()
	app.CreatedAt = now
	app.UpdatedAt = now
	s.apps[app.ID] = app

	checked := params.CheckedAt
	byCode := make(map[int64]string)
	for _, nv := range params.Versions {
		id, ok := byCode[nv.VersionCode]
		if !ok {
			id = uuid.NewString()
			byCode[nv.VersionCode] = id
		}
		s.versions[id] = store.AppVersion{
			ID:          id,
			AppID:       app.ID,
			VersionName: nv.VersionName,
			VersionCode: nv.VersionCode,
			CreatedAt:   now,
		}

		for _, nl := range nv.Links {
			key := linkKey(id, nl.AppSourceID)
			link, ok := s.links[key]
			if !ok {
				link = store.SourceVersion{
					ID:           uuid.NewString(),
					AppVersionID: id,
					AppSourceID:  nl.AppSourceID,
					CreatedAt:    now,
				}
			}
			link.DownloadURL = nl.DownloadURL
			link.LastCheckedAt = &checked
			link.LastStatus = store.LinkStatusOK
			s.links[key] = link
		}
	}

	return &app, nil
}

func (s *memStore) ListVersions(_ context.Context, appID string) ([]store.AppVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versionsLocked(appID), nil
}

func (s *memStore) versionsLocked(appID string) []store.AppVersion {
	var out []store.AppVersion
	for _, v := range s.versions {
		if v.AppID == appID {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b store.AppVersion) int {
		return cmp.Or(cmp.Compare(b.VersionCode, a.VersionCode), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func (s *memStore) LatestVersion(_ context.Context, appID string) (*store.AppVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vs := s.versionsLocked(appID)
	if len(vs) == 0 {
		return nil, fmt.Errorf("versions of app %s: %w", appID, store.ErrNotFound)
	}
	return &vs[0], nil
}

func (s *memStore) ListSources(context.Context) ([]store.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Source, 0, len(s.sources))
	for _, src := range s.sources {
		out = append(out, src)
	}
	slices.SortFunc(out, func(a, b store.Source) int {
		return cmp.Or(cmp.Compare(a.Priority, b.Priority), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *memStore) GetSource(_ context.Context, id string) (*store.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src, ok := s.sources[id]
	if !ok {
		return nil, fmt.Errorf("source %s: %w", id, store.ErrNotFound)
	}
	return &src, nil
}

func (s *memStore) UpdateSource(_ context.Context, id string, update store.SourceUpdate) (*store.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sources[id]
	if !ok {
		return nil, fmt.Errorf("source %s: %w", id, store.ErrNotFound)
	}
	if update.Enabled != nil {
		src.Enabled = *update.Enabled
	}
	if update.Priority != nil {
		src.Priority = *update.Priority
	}
	if update.BaseURL != nil {
		src.BaseURL = *update.BaseURL
	}
	src.UpdatedAt = s.now()
	s.sources[id] = src
	return &src, nil
}

func (s *memStore) GetSourceStats(_ context.Context, id string) (*store.SourceStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sources[id]; !ok {
		return nil, fmt.Errorf("source %s: %w", id, store.ErrNotFound)
	}

	stats := &store.SourceStats{}
	for _, l := range s.links {
		if l.AppSourceID != id {
			continue
		}
		stats.LinkCount++
		if l.LastCheckedAt != nil && (stats.LastCheckedAt == nil || l.LastCheckedAt.After(*stats.LastCheckedAt)) {
			checked := *l.LastCheckedAt
			stats.LastCheckedAt = &checked
		}
	}
	return stats, nil
}

func (s *memStore) GetSourceVersion(_ context.Context, appVersionID, appSourceID string) (*store.SourceVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.links[linkKey(appVersionID, appSourceID)]
	if !ok {
		return nil, fmt.Errorf("link %s/%s: %w", appVersionID, appSourceID, store.ErrNotFound)
	}
	return &l, nil
}

func (s *memStore) BestSourceVersion(_ context.Context, appVersionID string) (*store.SourceVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best     *store.SourceVersion
		bestPrio int
	)
	for _, l := range s.links {
		if l.AppVersionID != appVersionID {
			continue
		}
		src, ok := s.sources[l.AppSourceID]
		if !ok || !src.Enabled {
			continue
		}
		if best == nil || src.Priority < bestPrio || (src.Priority == bestPrio && l.AppSourceID < best.AppSourceID) {
			best, bestPrio = &l, src.Priority
		}
	}
	if best == nil {
		return nil, fmt.Errorf("enabled link for version %s: %w", appVersionID, store.ErrNotFound)
	}
	return best, nil
}

func (s *memStore) ListSourceVersions(_ context.Context, appID string) ([]store.SourceVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.SourceVersion
	for _, l := range s.links {
		if v, ok := s.versions[l.AppVersionID]; ok && v.AppID == appID {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b store.SourceVersion) int {
		return cmp.Or(strings.Compare(a.AppVersionID, b.AppVersionID), strings.Compare(a.AppSourceID, b.AppSourceID))
	})
	return out, nil
}

func (s *memStore) RecordLinkCheck(_ context.Context, check store.LinkCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := linkKey(check.AppVersionID, check.AppSourceID)
	l, ok := s.links[key]
	if !ok {
		return nil
	}
	checked := check.CheckedAt
	l.LastCheckedAt = &checked
	l.LastStatus = check.Status
	s.links[key] = l
	return nil
}

func (s *memStore) CreateInstall(_ context.Context, install *store.Install) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	in := *install
	in.ID = uuid.NewString()
	in.CreatedAt = now
	in.UpdatedAt = now
	s.installs = append(s.installs, in)
	*install = in
	return nil
}

func (s *memStore) UpdateInstallStatus(_ context.Context, deviceID, appID, appVersionID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for i := range s.installs {
		in := &s.installs[i]
		if in.DeviceID == deviceID && in.AppID == appID && in.AppVersionID == appVersionID {
			in.Status = status
			in.UpdatedAt = now
		}
	}
	return nil
}

func (s *memStore) AppendDownloadEvent(_ context.Context, event *store.DownloadEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *event
	e.ID = uuid.NewString()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	s.events = append(s.events, e)
	*event = e
	return nil
}

func (s *memStore) ListDownloadEvents(_ context.Context, appID string, limit int) ([]store.DownloadEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.DownloadEvent
	for i := len(s.events) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if s.events[i].AppID == appID {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

func (s *memStore) GetInstall(_ context.Context, deviceID, appID, appVersionID string) (*store.Install, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.installs) - 1; i >= 0; i-- {
		in := s.installs[i]
		if in.DeviceID == deviceID && in.AppID == appID && in.AppVersionID == appVersionID {
			return &in, nil
		}
	}
	return nil, fmt.Errorf("install %s/%s/%s: %w", deviceID, appID, appVersionID, store.ErrNotFound)
}

func linkKey(appVersionID, appSourceID string) string {
	return appVersionID + "/" + appSourceID
}
