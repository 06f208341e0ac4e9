package sources

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/kosher-appstore/appstore-server/internal/httpclient"
)

const (
	placeholderVersionName = "1.0.0"
	placeholderVersionCode = 1
)

// PlayStoreProvider reads a store catalog page. It supplies descriptive
// fields only and never knows a binary URL.
type PlayStoreProvider struct {
	*remote
}

var _ Provider = (*PlayStoreProvider)(nil)

func newPlayStoreProvider(baseURL string, client *httpclient.Client, opts *factoryOptions) (*PlayStoreProvider, error) {
	r, err := newRemote(KindPlayStore, baseURL, client, opts)
	if err != nil {
		return nil, err
	}
	return &PlayStoreProvider{remote: r}, nil
}

func (p *PlayStoreProvider) detailsURL(packageName string, localized bool) string {
	q := url.Values{"id": []string{packageName}}
	if localized {
		q.Set("hl", "en")
		q.Set("gl", "US")
	}
	return p.endpoint("/store/apps/details", q)
}

// FetchMetadata scrapes the details page for packageName
func (p *PlayStoreProvider) FetchMetadata(ctx context.Context, packageName string) (*AppMetadata, error) {
	doc, err := p.document(ctx, p.detailsURL(packageName, true))
	if err != nil {
		return nil, err
	}
	page := doc.Selection

	displayName := firstText(page, `h1[itemprop="name"]`, "h1.Fd93Bb")
	if displayName == "" {
		return nil, p.drift(ctx, "app name", nil)
	}

	iconURL := firstAttr(page, "src", `img[itemprop="image"]`, "img.T75of")
	if strings.HasPrefix(iconURL, "//") {
		iconURL = "https:" + iconURL
	}

	fullDescription := strings.TrimSpace(page.Find(`div[itemprop="description"]`).Text())
	shortDescription := firstAttr(page, "content", `meta[name="description"]`)
	if shortDescription == "" {
		shortDescription = fullDescription
	}
	if fullDescription == "" {
		fullDescription = shortDescription
	}

	versionName := strings.TrimSpace(page.Find(`div:contains("Current Version")`).First().Next().Text())
	if versionName == "" {
		versionName = placeholderVersionName
	}

	slog.DebugContext(ctx, "Fetched catalog page metadata", "package", packageName)

	return &AppMetadata{
		PackageName:      packageName,
		DisplayName:      displayName,
		ShortDescription: truncate(shortDescription, shortDescriptionLimit),
		FullDescription:  fullDescription,
		IconURL:          iconURL,
		PlayURL:          p.detailsURL(packageName, false),
		Versions: []Version{{
			Name: versionName,
			Code: placeholderVersionCode,
		}},
	}, nil
}

// GetDownloadURL always returns ErrNotFound
func (*PlayStoreProvider) GetDownloadURL(_ context.Context, _ string, _ int64) (string, error) {
	return "", ErrNotFound
}
