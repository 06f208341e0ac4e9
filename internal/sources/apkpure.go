package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kosher-appstore/appstore-server/internal/httpclient"
)

// APKPureProvider scrapes an APKPure-style site: a search page leads to an app
// page carrying the current version, and "<app page>/download" holds the link.
type APKPureProvider struct {
	*remote
}

var _ Provider = (*APKPureProvider)(nil)

func newAPKPureProvider(baseURL string, client *httpclient.Client, opts *factoryOptions) (*APKPureProvider, error) {
	r, err := newRemote(KindAPKPure, baseURL, client, opts)
	if err != nil {
		return nil, err
	}
	return &APKPureProvider{remote: r}, nil
}

func (p *APKPureProvider) appPage(ctx context.Context, packageName string) (*goquery.Document, string, error) {
	searchURL := p.endpoint("/search", url.Values{"q": []string{packageName}})
	search, err := p.document(ctx, searchURL)
	if err != nil {
		return nil, "", err
	}

	// Result links end in the package name; prefer an exact match over the first hit.
	var href string
	search.Find("a.first-info, .search-title a, a.dd").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		h, _ := s.Attr("href")
		if href == "" {
			href = h
		}
		if strings.HasSuffix(strings.TrimSuffix(h, "/"), "/"+packageName) {
			href = h
			return false
		}
		return true
	})
	appURL, ok := p.resolve(searchURL, href)
	if !ok {
		return nil, "", p.drift(ctx, "search results", nil)
	}

	page, err := p.document(ctx, appURL)
	if err != nil {
		return nil, "", err
	}
	return page, appURL, nil
}

func (p *APKPureProvider) downloadLink(ctx context.Context, appURL string) (string, error) {
	downloadPageURL := strings.TrimSuffix(appURL, "/") + "/download"
	page, err := p.document(ctx, downloadPageURL)
	if err != nil {
		return "", err
	}
	link, ok := p.resolve(downloadPageURL, firstAttr(page.Selection, "href", "a#download_link", "a.download-start-btn"))
	if !ok {
		return "", p.drift(ctx, "download link", nil)
	}
	return link, nil
}

// FetchMetadata searches for packageName and scrapes its app page
func (p *APKPureProvider) FetchMetadata(ctx context.Context, packageName string) (*AppMetadata, error) {
	page, appURL, err := p.appPage(ctx, packageName)
	if err != nil {
		return nil, err
	}
	sel := page.Selection

	displayName := firstText(sel, ".title-like h1", ".detail_banner .title_link h1", "h1")
	if displayName == "" {
		return nil, p.drift(ctx, "app name", nil)
	}

	iconURL := firstAttr(sel, "src", ".icon img", "img.icon")
	if iconURL == "" {
		iconURL = firstAttr(sel, "data-src", ".icon img", "img.icon")
	}
	iconURL, _ = p.resolve(appURL, iconURL)

	fullDescription := firstText(sel, ".description .content", "div.description-body")
	shortDescription := firstAttr(sel, "content", `meta[name="description"]`)
	if shortDescription == "" {
		shortDescription = fullDescription
	}

	version := Version{
		Name: firstText(sel, `[itemprop="version"]`, ".details-sdk span", ".version-name"),
		Code: placeholderVersionCode,
	}
	if version.Name == "" {
		version.Name = placeholderVersionName
	}
	if code, err := strconv.ParseInt(firstAttr(sel, "data-dt-version-code", "[data-dt-version-code]"), 10, 64); err == nil && code > 0 {
		version.Code = code
	}

	version.DownloadURL, err = p.downloadLink(ctx, appURL)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	return &AppMetadata{
		PackageName:      packageName,
		DisplayName:      displayName,
		ShortDescription: truncate(shortDescription, shortDescriptionLimit),
		FullDescription:  fullDescription,
		IconURL:          iconURL,
		Versions:         []Version{version},
	}, nil
}

// GetDownloadURL returns the current version's download link
func (p *APKPureProvider) GetDownloadURL(ctx context.Context, packageName string, _ int64) (string, error) {
	_, appURL, err := p.appPage(ctx, packageName)
	if err != nil {
		return "", err
	}
	return p.downloadLink(ctx, appURL)
}
