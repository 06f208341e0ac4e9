package sources

import (
	"context"
	"errors"

	"github.com/kosher-appstore/appstore-server/internal/versions"
)

// ErrNotFound is returned when a source has no usable result for a package.
// It is an expected outcome, not a fault.
var ErrNotFound = errors.New("not found in source")

// Kind identifies a provider implementation
type Kind string

const (
	// KindPlayStore scrapes a store catalog page for metadata only
	KindPlayStore Kind = "playstore"
	// KindAPKMirror scrapes an APKMirror-style mirror
	KindAPKMirror Kind = "apkmirror"
	// KindAPKPure scrapes an APKPure-style mirror
	KindAPKPure Kind = "apkpure"
	// KindCustom calls an operator-controlled JSON mirror
	KindCustom Kind = "custom"
)

// Valid reports whether k names a known provider implementation
func (k Kind) Valid() bool {
	switch k {
	case KindPlayStore, KindAPKMirror, KindAPKPure, KindCustom:
		return true
	}
	return false
}

// Descriptor is the stored description of one configured source.
// Lower Priority values are consulted first.
type Descriptor struct {
	ID       string
	Name     string
	Kind     Kind
	BaseURL  string
	Enabled  bool
	Priority int
}

// Version is one downloadable build listed by a source
type Version struct {
	Name        string
	Code        int64
	DownloadURL string
}

// AppMetadata is what a source knows about a package
type AppMetadata struct {
	PackageName      string
	DisplayName      string
	ShortDescription string
	FullDescription  string
	IconURL          string
	PlayURL          string
	Versions         []Version
}

// Latest returns the version with the highest version code, or false when
// there are none
func (m *AppMetadata) Latest() (Version, bool) {
	if m == nil || len(m.Versions) == 0 {
		return Version{}, false
	}
	latest := m.Versions[0]
	for _, v := range m.Versions[1:] {
		if versions.Newer(v.Code, v.Name, latest.Code, latest.Name) {
			latest = v
		}
	}
	return latest, true
}

// HasDownloadURL reports whether any version carries a download URL
func (m *AppMetadata) HasDownloadURL() bool {
	if m == nil {
		return false
	}
	for _, v := range m.Versions {
		if v.DownloadURL != "" {
			return true
		}
	}
	return false
}

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks -source=types.go Provider,Factory

// Provider fetches package information from one external source
type Provider interface {
	// FetchMetadata returns the package's metadata or ErrNotFound
	FetchMetadata(ctx context.Context, packageName string) (*AppMetadata, error)

	// GetDownloadURL returns a direct binary URL or ErrNotFound. A zero
	// versionCode asks for the latest version.
	GetDownloadURL(ctx context.Context, packageName string, versionCode int64) (string, error)

	// VerifyURL reports whether an allow-listed URL answers a HEAD request with 2xx
	VerifyURL(ctx context.Context, rawURL string) bool
}

// Factory creates the Provider for a Descriptor
type Factory interface {
	CreateProvider(source Descriptor) (Provider, error)
}
