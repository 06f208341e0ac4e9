package sources_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kosher-appstore/appstore-server/internal/domains"
	"github.com/kosher-appstore/appstore-server/internal/httpclient"
	"github.com/kosher-appstore/appstore-server/internal/sources"
)

// newMirror starts an https mirror double. Its host (127.0.0.1) is the only
// allow-listed domain for providers built with newProvider.
func newMirror(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	server := httptest.NewTLSServer(mux)
	server.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(server.Close)
	return server
}

func newProvider(t *testing.T, server *httptest.Server, kind sources.Kind) sources.Provider {
	t.Helper()
	client := httpclient.NewClient(
		domains.NewValidator([]string{"127.0.0.1"}),
		httpclient.WithHTTPClient(server.Client()),
	)
	provider, err := sources.NewFactory(client).CreateProvider(sources.Descriptor{
		ID:      "src-1",
		Kind:    kind,
		BaseURL: server.URL,
		Enabled: true,
	})
	require.NoError(t, err)
	return provider
}

func html(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>" + body + "</body></html>"))
	}
}

func jsonBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func allowOnly(hosts ...string) *domains.Validator {
	return domains.NewValidator(hosts)
}
