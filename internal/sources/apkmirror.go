package sources

import (
	"context"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/kosher-appstore/appstore-server/internal/httpclient"
)

// APKMirrorProvider scrapes an APKMirror-style site: a search page leads to an
// app page, whose newest release leads to a version page with the binary link.
type APKMirrorProvider struct {
	*remote
}

var _ Provider = (*APKMirrorProvider)(nil)

func newAPKMirrorProvider(baseURL string, client *httpclient.Client, opts *factoryOptions) (*APKMirrorProvider, error) {
	r, err := newRemote(KindAPKMirror, baseURL, client, opts)
	if err != nil {
		return nil, err
	}
	return &APKMirrorProvider{remote: r}, nil
}

// appPage runs the search and loads the first result's app page
func (p *APKMirrorProvider) appPage(ctx context.Context, packageName string) (*goquery.Document, string, error) {
	searchURL := p.endpoint("/", url.Values{
		"s":          []string{packageName},
		"post_type":  []string{"app_release"},
		"searchtype": []string{"apk"},
	})
	search, err := p.document(ctx, searchURL)
	if err != nil {
		return nil, "", err
	}

	result := search.Find(".listWidget .appRow").First()
	if result.Length() == 0 {
		return nil, "", p.drift(ctx, "search results", nil)
	}
	href, _ := result.Find(".appRowTitle a").First().Attr("href")
	appURL, ok := p.resolve(searchURL, href)
	if !ok {
		return nil, "", p.drift(ctx, "app link", nil)
	}

	page, err := p.document(ctx, appURL)
	if err != nil {
		return nil, "", err
	}
	return page, appURL, nil
}

// directLink follows the newest release on an app page to its binary link
func (p *APKMirrorProvider) directLink(ctx context.Context, page *goquery.Document, pageURL string) (string, error) {
	href, _ := page.Find(".table-cell .downloadButton").First().Attr("href")
	versionURL, ok := p.resolve(pageURL, href)
	if !ok {
		return "", p.drift(ctx, "release link", nil)
	}

	versionPage, err := p.document(ctx, versionURL)
	if err != nil {
		return "", err
	}

	href, _ = versionPage.Find("a.downloadButton").First().Attr("href")
	link, ok := p.resolve(versionURL, href)
	if !ok {
		return "", p.drift(ctx, "download button", nil)
	}
	return link, nil
}

// FetchMetadata searches for packageName and scrapes its app page. A missing
// binary link leaves the version's DownloadURL empty instead of failing.
func (p *APKMirrorProvider) FetchMetadata(ctx context.Context, packageName string) (*AppMetadata, error) {
	page, pageURL, err := p.appPage(ctx, packageName)
	if err != nil {
		return nil, err
	}

	displayName := firstText(page.Selection, "h1.post-title")
	if displayName == "" {
		displayName = packageName
	}
	description := firstText(page.Selection, ".notes")
	iconURL, _ := p.resolve(pageURL, firstAttr(page.Selection, "src", ".post-thumbnail img"))

	downloadURL, err := p.directLink(ctx, page, pageURL)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	return &AppMetadata{
		PackageName:      packageName,
		DisplayName:      displayName,
		ShortDescription: truncate(description, shortDescriptionLimit),
		FullDescription:  description,
		IconURL:          iconURL,
		Versions: []Version{{
			Name:        placeholderVersionName,
			Code:        placeholderVersionCode,
			DownloadURL: downloadURL,
		}},
	}, nil
}

// GetDownloadURL returns the newest release's binary link. The site lists
// releases by name, so versionCode is not used to select one.
func (p *APKMirrorProvider) GetDownloadURL(ctx context.Context, packageName string, _ int64) (string, error) {
	page, pageURL, err := p.appPage(ctx, packageName)
	if err != nil {
		return "", err
	}
	return p.directLink(ctx, page, pageURL)
}
