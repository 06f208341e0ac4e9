package download

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kosher-appstore/appstore-server/internal/domains"
	"github.com/kosher-appstore/appstore-server/internal/httpclient"
	"github.com/kosher-appstore/appstore-server/internal/store"
	"github.com/kosher-appstore/appstore-server/internal/store/inmemory"
	"github.com/kosher-appstore/appstore-server/internal/store/mocks"
	"github.com/kosher-appstore/appstore-server/internal/token"
)

var (
	testSecret = []byte("test-signing-secret")
	sourceID   = store.DefaultSources()[1].ID
	apkBody    = "PK\x03\x04" + strings.Repeat("apk-bytes-", 10_000)
)

// fixture is a proxy in front of an https origin double. Only 127.0.0.1 is
// allow-listed, so the origin is reachable and anything else is not.
type fixture struct {
	st        store.Store
	tokens    *token.Service
	proxy     *httptest.Server
	origin    *httptest.Server
	deviceID  string
	appID     string
	versionID string
}

func newFixture(t *testing.T, downloadURL string, originHandler http.Handler, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{st: inmemory.New(), deviceID: uuid.NewString()}
	f.origin = httptest.NewTLSServer(originHandler)
	f.origin.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(f.origin.Close)

	if downloadURL == "" {
		downloadURL = f.origin.URL + "/app.apk"
	}

	ctx := context.Background()
	app, err := f.st.CreateApp(ctx, store.CreateAppParams{
		App: store.App{PackageName: "com.example.notes", DisplayName: "Notes"},
		Versions: []store.NewVersion{{VersionName: "1.0", VersionCode: 1, Links: []store.NewLink{
			{AppSourceID: sourceID, DownloadURL: downloadURL},
		}}},
		CheckedAt: time.Now(),
	})
	require.NoError(t, err)
	version, err := f.st.LatestVersion(ctx, app.ID)
	require.NoError(t, err)
	f.appID, f.versionID = app.ID, version.ID

	require.NoError(t, f.st.CreateInstall(ctx, &store.Install{
		DeviceID: f.deviceID, AppID: f.appID, AppVersionID: f.versionID, Status: store.InstallDownloadStarted,
	}))

	f.tokens, err = token.NewService(testSecret)
	require.NoError(t, err)

	validator := domains.NewValidator([]string{"127.0.0.1"})
	client := httpclient.NewClient(validator, httpclient.WithHTTPClient(f.origin.Client()))
	f.proxy = newProxyServer(t, NewProxy(f.tokens, f.st, validator, client, opts...))
	return f
}

func newProxyServer(t *testing.T, p *Proxy) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/downloads/{token}", p.ServeHTTP)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func (f *fixture) token(t *testing.T) string {
	t.Helper()
	tok, err := f.tokens.Issue(f.deviceID, f.appID, f.versionID, sourceID)
	require.NoError(t, err)
	return tok
}

func (f *fixture) get(t *testing.T, tok string) *http.Response {
	t.Helper()
	resp, err := http.Get(f.proxy.URL + "/api/downloads/" + tok)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (f *fixture) events(t *testing.T) []store.DownloadEvent {
	t.Helper()
	events, err := f.st.ListDownloadEvents(context.Background(), f.appID, 0)
	require.NoError(t, err)
	return events
}

func (f *fixture) installStatus(t *testing.T) string {
	t.Helper()
	in, err := f.st.GetInstall(context.Background(), f.deviceID, f.appID, f.versionID)
	require.NoError(t, err)
	return in.Status
}

func serveAPK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.WriteString(w, apkBody)
}

func TestProxy_HealthyOrigin(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "", http.HandlerFunc(serveAPK))
	resp := f.get(t, f.token(t))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ContentTypeAPK, resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="app.apk"`, resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, apkBody, string(body))

	events := f.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, store.EventSuccess, events[0].Type)
	assert.Equal(t, f.deviceID, events[0].DeviceID)
	assert.Equal(t, sourceID, events[0].AppSourceID)
	assert.Equal(t, store.InstallDelivered, f.installStatus(t))
}

func TestProxy_ForwardsContentLengthOnlyWhenKnown(t *testing.T) {
	t.Parallel()

	t.Run("known", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Length", "4")
			_, _ = io.WriteString(w, "PK\x03\x04")
		}))
		resp := f.get(t, f.token(t))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(4), resp.ContentLength)
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			half := len(apkBody) / 2
			_, _ = io.WriteString(w, apkBody[:half])
			w.(http.Flusher).Flush()
			_, _ = io.WriteString(w, apkBody[half:])
		}))
		resp := f.get(t, f.token(t))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(-1), resp.ContentLength)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, apkBody, string(body))
	})
}

func TestProxy_ExpiredTokenWritesNothing(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl) // no expectations: any store call fails the test

	issuedAt := time.Now().Add(-time.Hour)
	issuer, err := token.NewService(testSecret, token.WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)
	verifier, err := token.NewService(testSecret)
	require.NoError(t, err)

	tok, err := issuer.Issue(uuid.NewString(), uuid.NewString(), uuid.NewString(), sourceID)
	require.NoError(t, err)

	validator := domains.NewValidator([]string{"127.0.0.1"})
	server := newProxyServer(t, NewProxy(verifier, st, validator, httpclient.NewClient(validator)))

	for _, bad := range []string{tok, "garbage", tok + "x", "a.b"} {
		resp, err := http.Get(server.URL + "/api/downloads/" + bad)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, bad)
	}
}

func TestProxy_StoredURLOffAllowList(t *testing.T) {
	t.Parallel()

	originHit := make(chan struct{}, 1)
	f := newFixture(t, "https://attacker.example/payload.apk", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		originHit <- struct{}{}
	}))

	resp := f.get(t, f.token(t))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	events := f.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, store.EventFailure, events[0].Type)
	assert.Contains(t, events[0].ErrorMessage, "whitelist")
	assert.Equal(t, store.InstallDownloadStarted, f.installStatus(t))
	assert.Empty(t, originHit)
}

func TestProxy_RedirectOffAllowList(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://attacker.example/payload.apk", http.StatusFound)
	}))

	resp := f.get(t, f.token(t))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	events := f.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, store.EventFailure, events[0].Type)
	assert.Contains(t, events[0].ErrorMessage, "whitelist")
}

func TestProxy_MissingLink(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "", http.HandlerFunc(serveAPK))
	tok, err := f.tokens.Issue(f.deviceID, f.appID, f.versionID, store.DefaultSources()[2].ID)
	require.NoError(t, err)

	resp := f.get(t, tok)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	events := f.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, store.EventFailure, events[0].Type)
	assert.Equal(t, "Source version not found", events[0].ErrorMessage)
}

func TestProxy_OriginError(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))

	resp := f.get(t, f.token(t))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	events := f.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, store.EventFailure, events[0].Type)
	assert.Equal(t, "Source returned 502", events[0].ErrorMessage)
	assert.Equal(t, store.InstallDownloadStarted, f.installStatus(t))
}

func TestProxy_OriginStallsBeforeHeaders(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	f := newFixture(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}), WithOriginTimeout(100*time.Millisecond))
	t.Cleanup(func() { close(release) })

	resp := f.get(t, f.token(t))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	events := f.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, store.EventFailure, events[0].Type)
}

func TestProxy_MidStreamFailureAbortsResponse(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = io.WriteString(w, "PK\x03\x04partial")
		w.(http.Flusher).Flush()
		panic(http.ErrAbortHandler)
	}))

	resp := f.get(t, f.token(t))
	require.Equal(t, http.StatusOK, resp.StatusCode, "headers were committed before the fault")

	_, err := io.ReadAll(resp.Body)
	require.Error(t, err, "a truncated stream must not look complete")

	events := f.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, store.EventFailure, events[0].Type)
	assert.Contains(t, events[0].ErrorMessage, "origin stream interrupted")
	assert.Equal(t, store.InstallDownloadStarted, f.installStatus(t))
}

func TestProxy_TokenIsReplayable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "", http.HandlerFunc(serveAPK), WithMaxConcurrent(1), WithBufferSize(512))
	tok := f.token(t)

	for range 2 {
		resp := f.get(t, tok)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Len(t, body, len(apkBody))
	}

	events := f.events(t)
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, store.EventSuccess, e.Type)
	}
}

// trickleAPK sends the APK magic, then keeps the stream alive with one byte
// per tick until release is closed
func trickleAPK(release <-chan struct{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "PK\x03\x04")
		w.(http.Flusher).Flush()
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-release:
				return
			case <-r.Context().Done():
				return
			case <-ticker.C:
				_, _ = io.WriteString(w, "x")
				w.(http.Flusher).Flush()
			}
		}
	}
}

// openStream starts a download and returns once its first bytes arrived
func (f *fixture) openStream(t *testing.T, tok string) *http.Response {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(f.proxy.URL + "/api/downloads/" + tok)
	require.NoError(t, err, "headers must reach the client while the origin is still sending")
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	magic := make([]byte, 4)
	_, err = io.ReadFull(resp.Body, magic)
	require.NoError(t, err)
	assert.Equal(t, "PK\x03\x04", string(magic))
	return resp
}

func TestProxy_FlushesWhileOriginIsSending(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	f := newFixture(t, "", trickleAPK(release))

	resp := f.openStream(t, f.token(t))
	close(release)

	rest, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(rest), "PK")
	require.Eventually(t, func() bool {
		return f.installStatus(t) == store.InstallDelivered
	}, 5*time.Second, 10*time.Millisecond)
}

func TestProxy_SlotWaitIsBounded(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	f := newFixture(t, "", trickleAPK(release),
		WithMaxConcurrent(1), WithOriginTimeout(200*time.Millisecond))

	first := f.openStream(t, f.token(t))

	start := time.Now()
	busy := f.get(t, f.token(t))
	assert.Equal(t, http.StatusServiceUnavailable, busy.StatusCode)
	assert.Less(t, time.Since(start), 3*time.Second)

	events := f.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, store.EventFailure, events[0].Type)
	assert.Contains(t, events[0].ErrorMessage, "waiting for a download slot")

	close(release)
	_, err := io.ReadAll(first.Body)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(f.events(t)) == 2
	}, 5*time.Second, 10*time.Millisecond)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Source returned 404", describe(httpclient.NewHTTPError(404, "https://x", "404 Not Found")))
	assert.Equal(t, assert.AnError.Error(), describe(assert.AnError))
}
