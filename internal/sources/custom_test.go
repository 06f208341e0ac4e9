package sources_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosher-appstore/appstore-server/internal/httpclient"
	"github.com/kosher-appstore/appstore-server/internal/sources"
)

func TestCustomProvider_FetchMetadata(t *testing.T) {
	t.Parallel()

	server := newMirror(t, map[string]http.HandlerFunc{
		"/api/apps/org.example.app": jsonBody(`{
			"package_name": "org.example.app",
			"display_name": "Example",
			"short_description": "short",
			"full_description": "full",
			"icon_url": "https://mirror.example.com/icon.png",
			"versions": [
				{"version_name": "1.0.0", "version_code": 100, "download_url": "https://mirror.example.com/100.apk"},
				{"version_name": "1.1.0", "version_code": 110, "download_url": "https://mirror.example.com/110.apk"}
			]
		}`),
		"/api/apps/org.example.broken": jsonBody(`{"package_name": `),
		"/api/apps/org.example.empty":  jsonBody(`{}`),
	})
	provider := newProvider(t, server, sources.KindCustom)

	meta, err := provider.FetchMetadata(context.Background(), "org.example.app")
	require.NoError(t, err)
	assert.Equal(t, "org.example.app", meta.PackageName)
	assert.Equal(t, "Example", meta.DisplayName)
	assert.Equal(t, "short", meta.ShortDescription)
	assert.Equal(t, "full", meta.FullDescription)
	require.Len(t, meta.Versions, 2)
	assert.Equal(t, sources.Version{Name: "1.1.0", Code: 110, DownloadURL: "https://mirror.example.com/110.apk"}, meta.Versions[1])

	for _, pkg := range []string{"org.example.missing", "org.example.broken", "org.example.empty"} {
		_, err := provider.FetchMetadata(context.Background(), pkg)
		assert.ErrorIs(t, err, sources.ErrNotFound, pkg)
	}
}

func TestCustomProvider_GetDownloadURL(t *testing.T) {
	t.Parallel()

	server := newMirror(t, map[string]http.HandlerFunc{
		"/api/apps/org.example.app/download": func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("version") {
			case "":
				jsonBody(`{"download_url": "https://mirror.example.com/latest.apk"}`)(w, r)
			case "100":
				jsonBody(`{"download_url": "https://mirror.example.com/100.apk"}`)(w, r)
			default:
				jsonBody(`{"download_url": ""}`)(w, r)
			}
		},
	})
	provider := newProvider(t, server, sources.KindCustom)

	link, err := provider.GetDownloadURL(context.Background(), "org.example.app", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.com/latest.apk", link)

	link, err = provider.GetDownloadURL(context.Background(), "org.example.app", 100)
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.com/100.apk", link)

	_, err = provider.GetDownloadURL(context.Background(), "org.example.app", 999)
	assert.ErrorIs(t, err, sources.ErrNotFound)

	_, err = provider.GetDownloadURL(context.Background(), "org.example.other", 0)
	assert.ErrorIs(t, err, sources.ErrNotFound)
}

func TestCustomProvider_TransportFaultIsAnError(t *testing.T) {
	t.Parallel()

	server := newMirror(t, nil)
	provider := newProvider(t, server, sources.KindCustom)
	server.Close()

	_, err := provider.FetchMetadata(context.Background(), "org.example.app")
	require.Error(t, err)
	assert.NotErrorIs(t, err, sources.ErrNotFound)
}

func TestCustomProvider_BaseOutsideAllowList(t *testing.T) {
	t.Parallel()

	server := newMirror(t, nil)
	client := httpclient.NewClient(allowOnly("mirror.example.com"), httpclient.WithHTTPClient(server.Client()))
	provider, err := sources.NewFactory(client).CreateProvider(sources.Descriptor{Kind: sources.KindCustom, BaseURL: server.URL})
	require.NoError(t, err)

	_, err = provider.FetchMetadata(context.Background(), "org.example.app")
	assert.ErrorIs(t, err, httpclient.ErrHostNotAllowed)
}

func TestProvider_VerifyURL(t *testing.T) {
	t.Parallel()

	server := newMirror(t, map[string]http.HandlerFunc{
		"/ok.apk": func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) },
		"/gone.apk": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusGone)
		},
	})
	provider := newProvider(t, server, sources.KindCustom)

	assert.True(t, provider.VerifyURL(context.Background(), server.URL+"/ok.apk"))
	assert.False(t, provider.VerifyURL(context.Background(), server.URL+"/gone.apk"))
	assert.False(t, provider.VerifyURL(context.Background(), "https://attacker.example/ok.apk"))
	assert.False(t, provider.VerifyURL(context.Background(), "http://127.0.0.1/ok.apk"))
}
