package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosher-appstore/appstore-server/internal/store"
	"github.com/kosher-appstore/appstore-server/internal/store/inmemory"
)

const apkPayload = "PK\x03\x04fake-apk-contents"

// TestEndToEndDownload registers a device, requests a link and streams the
// binary from an https origin through the running server.
func TestEndToEndDownload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	origin := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.android.package-archive")
		_, _ = io.WriteString(w, apkPayload)
	}))
	t.Cleanup(origin.Close)

	st := inmemory.New()
	created, err := st.CreateApp(ctx, store.CreateAppParams{
		App: store.App{PackageName: "com.example.notes", DisplayName: "Notes"},
		Versions: []store.NewVersion{{VersionName: "2.0", VersionCode: 20, Links: []store.NewLink{
			{AppSourceID: store.DefaultSources()[1].ID, DownloadURL: origin.URL + "/notes.apk"},
		}}},
		CheckedAt: time.Now(),
	})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	baseURL := "http://" + ln.Addr().String()

	cfg := createValidTestConfig(t)
	cfg.Download.PublicBaseURL = baseURL

	app, err := NewAppStore(ctx, WithConfig(cfg), WithStore(st), WithHTTPClient(origin.Client()))
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- app.Serve(ln) }()
	t.Cleanup(func() {
		require.NoError(t, app.Stop(5*time.Second))
		require.NoError(t, <-served)
	})

	deviceID := uuid.NewString()
	resp, err := http.Post(baseURL+"/api/devices/register", "application/json",
		strings.NewReader(`{"device_id":"`+deviceID+`"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(baseURL+"/api/apps/"+created.ID+"/download", "application/json",
		strings.NewReader(`{"device_id":"`+deviceID+`"}`))
	require.NoError(t, err)
	var link struct {
		DownloadURL string `json:"download_url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&link))
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, strings.HasPrefix(link.DownloadURL, baseURL+"/api/downloads/"), link.DownloadURL)

	resp, err = http.Get(link.DownloadURL)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, apkPayload, string(body))

	// The success event is written after the last byte is flushed.
	require.Eventually(t, func() bool {
		events, err := st.ListDownloadEvents(ctx, created.ID, 0)
		if err != nil || len(events) != 2 {
			return false
		}
		return events[0].Type == store.EventSuccess && events[1].Type == store.EventStart
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandlerServesAdminAndHealth(t *testing.T) {
	t.Parallel()

	app, err := NewAppStore(context.Background(),
		WithConfig(createValidTestConfig(t)),
		WithStore(inmemory.New()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { app.cancelFunc() })
	handler := app.GetHTTPServer().Handler

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readiness", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/sources", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var got []store.Source
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, len(store.DefaultSources()))

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/downloads/not-a-token", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestStopWithoutStart(t *testing.T) {
	t.Parallel()

	app, err := NewAppStore(context.Background(),
		WithConfig(createValidTestConfig(t)),
		WithStore(inmemory.New()),
	)
	require.NoError(t, err)
	require.NoError(t, app.Stop(time.Second))

	select {
	case <-app.ctx.Done():
		assert.True(t, errors.Is(app.ctx.Err(), context.Canceled))
	default:
		t.Fatal("application context not cancelled")
	}
}
