// Package store defines the persisted catalog model and the Store interface
// implemented by the PostgreSQL and in-memory backends.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/kosher-appstore/appstore-server/internal/sources"
)

var (
	// ErrNotFound is returned when a keyed read matches no row
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique key is already taken
	ErrAlreadyExists = errors.New("already exists")
)

// EventType is the milestone a DownloadEvent records
type EventType string

const (
	// EventStart is recorded when a client is handed a download link
	EventStart EventType = "start"
	// EventSuccess is recorded when the proxy finished streaming
	EventSuccess EventType = "success"
	// EventFailure is recorded when the proxy reached a resource but could not deliver it
	EventFailure EventType = "failure"
)

// Install statuses
const (
	InstallDownloadStarted = "download_started"
	InstallDelivered       = "delivered"
)

// Link statuses
const (
	LinkStatusOK     = "ok"
	LinkStatusFailed = "failed"
)

// App is a catalog entry
type App struct {
	ID                 string    `json:"id"`
	PackageName        string    `json:"package_name"`
	PlayURL            string    `json:"play_url,omitempty"`
	DisplayName        string    `json:"display_name"`
	ShortDescription   string    `json:"short_description,omitempty"`
	FullDescription    string    `json:"full_description,omitempty"`
	IconURL            string    `json:"icon_url,omitempty"`
	CurrentVersionName string    `json:"current_version_name,omitempty"`
	CurrentVersionCode int64     `json:"current_version_code,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// AppStats is an App with its version count, as listed to administrators
type AppStats struct {
	App
	VersionCount int `json:"version_count"`
}

// AppVersion is one known build of an App
type AppVersion struct {
	ID             string    `json:"id"`
	AppID          string    `json:"app_id"`
	VersionName    string    `json:"version_name"`
	VersionCode    int64     `json:"version_code"`
	ChecksumSHA256 string    `json:"checksum_sha256,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Source is a persisted source descriptor
type Source struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Kind      sources.Kind `json:"type"`
	BaseURL   string       `json:"base_url"`
	Enabled   bool         `json:"enabled"`
	Priority  int          `json:"priority"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Descriptor returns the provider-facing view of s
func (s *Source) Descriptor() sources.Descriptor {
	return sources.Descriptor{
		ID:       s.ID,
		Name:     s.Name,
		Kind:     s.Kind,
		BaseURL:  s.BaseURL,
		Enabled:  s.Enabled,
		Priority: s.Priority,
	}
}

// Descriptors converts a slice of sources
func Descriptors(all []Source) []sources.Descriptor {
	out := make([]sources.Descriptor, len(all))
	for i := range all {
		out[i] = all[i].Descriptor()
	}
	return out
}

// SourceUpdate carries the administrative changes to a Source; nil fields are left alone
type SourceUpdate struct {
	Enabled  *bool
	Priority *int
	BaseURL  *string
}

// SourceStats summarizes the links a Source has produced
type SourceStats struct {
	LinkCount     int        `json:"link_count"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
}

// SourceVersion links an AppVersion to the URL a Source yielded for it
type SourceVersion struct {
	ID            string     `json:"id"`
	AppVersionID  string     `json:"app_version_id"`
	AppSourceID   string     `json:"app_source_id"`
	DownloadURL   string     `json:"download_url"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	LastStatus    string     `json:"last_status"`
	CreatedAt     time.Time  `json:"created_at"`
}

// LinkCheck is the outcome of re-testing a Source for an AppVersion.
// It only touches the status of a link that already exists.
type LinkCheck struct {
	AppVersionID string
	AppSourceID  string
	Status       string
	CheckedAt    time.Time
}

// Device is a registered client device
type Device struct {
	ID           string    `json:"id"`
	FriendlyName string    `json:"friendly_name,omitempty"`
	FirstSeenAt  time.Time `json:"first_seen_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	LastIP       string    `json:"last_ip,omitempty"`
}

// Install tracks a device's progress towards installing an app version
type Install struct {
	ID           string    `json:"id"`
	DeviceID     string    `json:"device_id"`
	AppID        string    `json:"app_id"`
	AppVersionID string    `json:"app_version_id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DownloadEvent is an append-only audit record
type DownloadEvent struct {
	ID           string    `json:"id"`
	DeviceID     string    `json:"device_id"`
	AppID        string    `json:"app_id"`
	AppVersionID string    `json:"app_version_id,omitempty"`
	AppSourceID  string    `json:"app_source_id,omitempty"`
	Type         EventType `json:"event_type"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewVersion is a version to persist together with a new App
type NewVersion struct {
	VersionName string
	VersionCode int64
	Links       []NewLink
}

// NewLink is a source-version link to persist together with a new App
type NewLink struct {
	AppSourceID string
	DownloadURL string
}

// CreateAppParams describes an App and its versions to insert in one unit
type CreateAppParams struct {
	App       App
	Versions  []NewVersion
	CheckedAt time.Time
}

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store

// Store is the persisted catalog. Implementations serialize their own writes;
// callers hold no locks across calls.
type Store interface {
	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error

	// UpsertDevice creates the device or refreshes its last-seen time and IP
	UpsertDevice(ctx context.Context, id, lastIP string, seenAt time.Time) (*Device, error)
	// GetDevice returns a device or ErrNotFound
	GetDevice(ctx context.Context, id string) (*Device, error)
	// TouchDevice refreshes last-seen for an existing device; unknown ids are ignored
	TouchDevice(ctx context.Context, id string, seenAt time.Time) error

	// ListApps returns all apps ordered by display name
	ListApps(ctx context.Context) ([]App, error)
	// ListAppStats returns all apps with version counts, most recently updated first
	ListAppStats(ctx context.Context) ([]AppStats, error)
	// GetApp returns an app or ErrNotFound
	GetApp(ctx context.Context, id string) (*App, error)
	// GetAppByPackage returns the app with the given package name or ErrNotFound
	GetAppByPackage(ctx context.Context, packageName string) (*App, error)
	// CreateApp inserts an app with its versions and links. It returns
	// ErrAlreadyExists when the package name is taken.
	CreateApp(ctx context.Context, params CreateAppParams) (*App, error)

	// ListVersions returns an app's versions, highest version code first
	ListVersions(ctx context.Context, appID string) ([]AppVersion, error)
	// LatestVersion returns the app's version with the highest code or ErrNotFound
	LatestVersion(ctx context.Context, appID string) (*AppVersion, error)

	// ListSources returns all sources ordered by priority
	ListSources(ctx context.Context) ([]Source, error)
	// GetSource returns a source or ErrNotFound
	GetSource(ctx context.Context, id string) (*Source, error)
	// UpdateSource applies update and returns the new state, or ErrNotFound
	UpdateSource(ctx context.Context, id string, update SourceUpdate) (*Source, error)
	// GetSourceStats summarizes the links produced by a source
	GetSourceStats(ctx context.Context, id string) (*SourceStats, error)

	// GetSourceVersion returns the link for (appVersionID, appSourceID) or ErrNotFound
	GetSourceVersion(ctx context.Context, appVersionID, appSourceID string) (*SourceVersion, error)
	// BestSourceVersion returns the version's link whose source is enabled and
	// has the lowest priority, or ErrNotFound
	BestSourceVersion(ctx context.Context, appVersionID string) (*SourceVersion, error)
	// ListSourceVersions returns every link of every version of an app
	ListSourceVersions(ctx context.Context, appID string) ([]SourceVersion, error)
	// RecordLinkCheck stores the outcome of re-testing a source for a version.
	// A missing link is left missing; the download URL is never changed.
	RecordLinkCheck(ctx context.Context, check LinkCheck) error

	// CreateInstall records that a device started downloading an app version
	CreateInstall(ctx context.Context, install *Install) error
	// GetInstall returns the most recent install matching the key or ErrNotFound
	GetInstall(ctx context.Context, deviceID, appID, appVersionID string) (*Install, error)
	// UpdateInstallStatus sets the status of every install matching the key.
	// Concurrent writers race; the last write wins.
	UpdateInstallStatus(ctx context.Context, deviceID, appID, appVersionID, status string) error

	// AppendDownloadEvent appends an audit record
	AppendDownloadEvent(ctx context.Context, event *DownloadEvent) error
	// ListDownloadEvents returns an app's most recent events, newest first
	ListDownloadEvents(ctx context.Context, appID string, limit int) ([]DownloadEvent, error)
}

// DefaultSources are the sources seeded into a fresh store
func DefaultSources() []Source {
	return []Source{
		{ID: "00000000-0000-4000-8000-000000000001", Name: "Google Play", Kind: sources.KindPlayStore,
			BaseURL: "https://play.google.com", Enabled: true, Priority: 0},
		{ID: "00000000-0000-4000-8000-000000000002", Name: "APKMirror", Kind: sources.KindAPKMirror,
			BaseURL: "https://www.apkmirror.com", Enabled: true, Priority: 1},
		{ID: "00000000-0000-4000-8000-000000000003", Name: "APKPure", Kind: sources.KindAPKPure,
			BaseURL: "https://apkpure.com", Enabled: true, Priority: 2},
		{ID: "00000000-0000-4000-8000-000000000004", Name: "Custom Mirror", Kind: sources.KindCustom,
			BaseURL: "https://mirror.example.com", Enabled: false, Priority: 10},
	}
}
