// Package storetest holds behavioural tests shared by every store.Store implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosher-appstore/appstore-server/internal/store"
)

// IDs of the seeded default sources
var (
	PlayStoreID = store.DefaultSources()[0].ID
	MirrorID    = store.DefaultSources()[1].ID
	PureID      = store.DefaultSources()[2].ID
	CustomID    = store.DefaultSources()[3].ID
)

// Run exercises st, which must be empty apart from the default sources
func Run(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, st.Ping(ctx))

	deviceID := uuid.NewString()

	t.Run("devices", func(t *testing.T) {
		_, err := st.GetDevice(ctx, deviceID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		d, err := st.UpsertDevice(ctx, deviceID, "10.0.0.1", now)
		require.NoError(t, err)
		assert.Equal(t, deviceID, d.ID)
		assert.Equal(t, "10.0.0.1", d.LastIP)

		later := now.Add(time.Minute)
		d, err = st.UpsertDevice(ctx, deviceID, "10.0.0.2", later)
		require.NoError(t, err)
		assert.True(t, d.FirstSeenAt.Equal(now), "first seen must not move")
		assert.True(t, d.LastSeenAt.Equal(later))
		assert.Equal(t, "10.0.0.2", d.LastIP)

		require.NoError(t, st.TouchDevice(ctx, deviceID, later.Add(time.Minute)))
		require.NoError(t, st.TouchDevice(ctx, uuid.NewString(), later))
		d, err = st.GetDevice(ctx, deviceID)
		require.NoError(t, err)
		assert.True(t, d.LastSeenAt.Equal(later.Add(time.Minute)))
	})

	t.Run("sources", func(t *testing.T) {
		srcs, err := st.ListSources(ctx)
		require.NoError(t, err)
		require.Len(t, srcs, 4)
		assert.Equal(t, PlayStoreID, srcs[0].ID)
		assert.Equal(t, CustomID, srcs[3].ID)
		assert.False(t, srcs[3].Enabled)

		enabled, priority, base := true, 5, "https://mirror.example.com/v2"
		updated, err := st.UpdateSource(ctx, CustomID, store.SourceUpdate{Enabled: &enabled, Priority: &priority, BaseURL: &base})
		require.NoError(t, err)
		assert.True(t, updated.Enabled)
		assert.Equal(t, 5, updated.Priority)
		assert.Equal(t, base, updated.BaseURL)

		// Only the given fields change.
		disabled := false
		updated, err = st.UpdateSource(ctx, CustomID, store.SourceUpdate{Enabled: &disabled})
		require.NoError(t, err)
		assert.False(t, updated.Enabled)
		assert.Equal(t, 5, updated.Priority)

		_, err = st.UpdateSource(ctx, uuid.NewString(), store.SourceUpdate{Enabled: &enabled})
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = st.GetSource(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	var app *store.App
	t.Run("create app", func(t *testing.T) {
		var err error
		app, err = st.CreateApp(ctx, store.CreateAppParams{
			App: store.App{
				PackageName:        "com.example.notes",
				DisplayName:        "Notes",
				ShortDescription:   "Take notes",
				CurrentVersionName: "2.0",
				CurrentVersionCode: 20,
			},
			Versions: []store.NewVersion{
				{VersionName: "2.0", VersionCode: 20, Links: []store.NewLink{
					{AppSourceID: MirrorID, DownloadURL: "https://www.apkmirror.com/notes-20.apk"},
					{AppSourceID: PureID, DownloadURL: "https://apkpure.com/notes-20.apk"},
				}},
				{VersionName: "1.0", VersionCode: 10},
			},
			CheckedAt: now,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, app.ID)
		assert.Equal(t, "Notes", app.DisplayName)
		assert.Equal(t, int64(20), app.CurrentVersionCode)

		_, err = st.CreateApp(ctx, store.CreateAppParams{App: store.App{PackageName: "com.example.notes", DisplayName: "Dup"}})
		assert.ErrorIs(t, err, store.ErrAlreadyExists)

		_, err = st.CreateApp(ctx, store.CreateAppParams{App: store.App{PackageName: "com.example.alarm", DisplayName: "Alarm"}})
		require.NoError(t, err)

		got, err := st.GetAppByPackage(ctx, "com.example.notes")
		require.NoError(t, err)
		assert.Equal(t, app.ID, got.ID)
		_, err = st.GetApp(ctx, uuid.NewString())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("list apps", func(t *testing.T) {
		apps, err := st.ListApps(ctx)
		require.NoError(t, err)
		require.Len(t, apps, 2)
		assert.Equal(t, "Alarm", apps[0].DisplayName)
		assert.Equal(t, "Notes", apps[1].DisplayName)

		stats, err := st.ListAppStats(ctx)
		require.NoError(t, err)
		require.Len(t, stats, 2)
		counts := map[string]int{}
		for _, s := range stats {
			counts[s.PackageName] = s.VersionCount
		}
		assert.Equal(t, map[string]int{"com.example.notes": 2, "com.example.alarm": 0}, counts)
	})

	var latest *store.AppVersion
	t.Run("versions and links", func(t *testing.T) {
		versions, err := st.ListVersions(ctx, app.ID)
		require.NoError(t, err)
		require.Len(t, versions, 2)
		assert.Equal(t, int64(20), versions[0].VersionCode)

		latest, err = st.LatestVersion(ctx, app.ID)
		require.NoError(t, err)
		assert.Equal(t, versions[0].ID, latest.ID)

		link, err := st.GetSourceVersion(ctx, latest.ID, PureID)
		require.NoError(t, err)
		assert.Equal(t, "https://apkpure.com/notes-20.apk", link.DownloadURL)
		assert.Equal(t, store.LinkStatusOK, link.LastStatus)

		best, err := st.BestSourceVersion(ctx, latest.ID)
		require.NoError(t, err)
		assert.Equal(t, MirrorID, best.AppSourceID)

		off := false
		_, err = st.UpdateSource(ctx, MirrorID, store.SourceUpdate{Enabled: &off})
		require.NoError(t, err)
		best, err = st.BestSourceVersion(ctx, latest.ID)
		require.NoError(t, err)
		assert.Equal(t, PureID, best.AppSourceID)
		on := true
		_, err = st.UpdateSource(ctx, MirrorID, store.SourceUpdate{Enabled: &on})
		require.NoError(t, err)

		_, err = st.BestSourceVersion(ctx, versions[1].ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = st.GetSourceVersion(ctx, versions[1].ID, MirrorID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		links, err := st.ListSourceVersions(ctx, app.ID)
		require.NoError(t, err)
		assert.Len(t, links, 2)

		stats, err := st.GetSourceStats(ctx, MirrorID)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.LinkCount)
		require.NotNil(t, stats.LastCheckedAt)
	})

	t.Run("link checks", func(t *testing.T) {
		checked := now.Add(time.Hour)
		require.NoError(t, st.RecordLinkCheck(ctx, store.LinkCheck{
			AppVersionID: latest.ID, AppSourceID: MirrorID, Status: store.LinkStatusFailed, CheckedAt: checked,
		}))
		link, err := st.GetSourceVersion(ctx, latest.ID, MirrorID)
		require.NoError(t, err)
		assert.Equal(t, store.LinkStatusFailed, link.LastStatus)
		assert.Equal(t, "https://www.apkmirror.com/notes-20.apk", link.DownloadURL)

		require.NotNil(t, link.LastCheckedAt)
		assert.True(t, link.LastCheckedAt.Equal(checked))

		// A check never creates a link.
		for _, status := range []string{store.LinkStatusFailed, store.LinkStatusOK} {
			require.NoError(t, st.RecordLinkCheck(ctx, store.LinkCheck{
				AppVersionID: latest.ID, AppSourceID: CustomID, Status: status, CheckedAt: checked,
			}))
			_, err = st.GetSourceVersion(ctx, latest.ID, CustomID)
			assert.ErrorIs(t, err, store.ErrNotFound)
		}

		require.NoError(t, st.RecordLinkCheck(ctx, store.LinkCheck{
			AppVersionID: latest.ID, AppSourceID: MirrorID, Status: store.LinkStatusOK, CheckedAt: checked,
		}))
		link, err = st.GetSourceVersion(ctx, latest.ID, MirrorID)
		require.NoError(t, err)
		assert.Equal(t, store.LinkStatusOK, link.LastStatus)
		assert.Equal(t, "https://www.apkmirror.com/notes-20.apk", link.DownloadURL)
	})

	t.Run("installs", func(t *testing.T) {
		in := &store.Install{DeviceID: deviceID, AppID: app.ID, AppVersionID: latest.ID, Status: store.InstallDownloadStarted}
		require.NoError(t, st.CreateInstall(ctx, in))
		assert.NotEmpty(t, in.ID)

		require.NoError(t, st.UpdateInstallStatus(ctx, deviceID, app.ID, latest.ID, store.InstallDelivered))
		got, err := st.GetInstall(ctx, deviceID, app.ID, latest.ID)
		require.NoError(t, err)
		assert.Equal(t, store.InstallDelivered, got.Status)

		_, err = st.GetInstall(ctx, uuid.NewString(), app.ID, latest.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("download events", func(t *testing.T) {
		for _, typ := range []store.EventType{store.EventStart, store.EventFailure, store.EventSuccess} {
			e := &store.DownloadEvent{
				DeviceID: deviceID, AppID: app.ID, AppVersionID: latest.ID, AppSourceID: MirrorID, Type: typ,
			}
			if typ == store.EventFailure {
				e.ErrorMessage = "Source returned 502"
			}
			require.NoError(t, st.AppendDownloadEvent(ctx, e))
			assert.NotEmpty(t, e.ID)
			time.Sleep(2 * time.Millisecond)
		}

		events, err := st.ListDownloadEvents(ctx, app.ID, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, store.EventSuccess, events[0].Type)
		assert.Equal(t, store.EventFailure, events[1].Type)
		assert.Equal(t, "Source returned 502", events[1].ErrorMessage)

		all, err := st.ListDownloadEvents(ctx, app.ID, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}
