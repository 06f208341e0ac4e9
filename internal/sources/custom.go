package sources

import (
	"context"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/kosher-appstore/appstore-server/internal/httpclient"
)

// CustomProvider talks to an operator-controlled mirror exposing
//
//	GET /api/apps/{package}                     -> app metadata and versions
//	GET /api/apps/{package}/download?version=N  -> {"download_url": "..."}
type CustomProvider struct {
	*remote
}

var _ Provider = (*CustomProvider)(nil)

func newCustomProvider(baseURL string, client *httpclient.Client, opts *factoryOptions) (*CustomProvider, error) {
	r, err := newRemote(KindCustom, baseURL, client, opts)
	if err != nil {
		return nil, err
	}
	return &CustomProvider{remote: r}, nil
}

func (p *CustomProvider) getJSON(ctx context.Context, rawURL string) (gjson.Result, error) {
	body, err := p.get(ctx, rawURL, "application/json")
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, p.drift(ctx, "invalid JSON", nil)
	}
	return gjson.ParseBytes(body), nil
}

// FetchMetadata reads /api/apps/{package}
func (p *CustomProvider) FetchMetadata(ctx context.Context, packageName string) (*AppMetadata, error) {
	doc, err := p.getJSON(ctx, p.endpoint("/api/apps/"+packageName, nil))
	if err != nil {
		return nil, err
	}

	name := doc.Get("package_name").String()
	if name == "" {
		return nil, p.drift(ctx, "package_name", nil)
	}

	meta := &AppMetadata{
		PackageName:      name,
		DisplayName:      doc.Get("display_name").String(),
		ShortDescription: doc.Get("short_description").String(),
		FullDescription:  doc.Get("full_description").String(),
		IconURL:          doc.Get("icon_url").String(),
		PlayURL:          doc.Get("play_url").String(),
	}
	if meta.DisplayName == "" {
		meta.DisplayName = name
	}

	doc.Get("versions").ForEach(func(_, v gjson.Result) bool {
		meta.Versions = append(meta.Versions, Version{
			Name:        v.Get("version_name").String(),
			Code:        v.Get("version_code").Int(),
			DownloadURL: v.Get("download_url").String(),
		})
		return true
	})

	return meta, nil
}

// GetDownloadURL reads /api/apps/{package}/download, passing versionCode when non-zero
func (p *CustomProvider) GetDownloadURL(ctx context.Context, packageName string, versionCode int64) (string, error) {
	var query url.Values
	if versionCode != 0 {
		query = url.Values{"version": []string{strconv.FormatInt(versionCode, 10)}}
	}

	doc, err := p.getJSON(ctx, p.endpoint("/api/apps/"+packageName+"/download", query))
	if err != nil {
		return "", err
	}

	link := doc.Get("download_url").String()
	if link == "" {
		return "", p.drift(ctx, "download_url", nil)
	}
	return link, nil
}
