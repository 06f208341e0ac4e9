package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kosher-appstore/appstore-server/internal/sources"
	"github.com/kosher-appstore/appstore-server/internal/sources/mocks"
)

var (
	srcA = sources.Descriptor{ID: "a", Name: "Alpha", Kind: sources.KindCustom, Enabled: true, Priority: 1}
	srcB = sources.Descriptor{ID: "b", Name: "Bravo", Kind: sources.KindAPKMirror, Enabled: true, Priority: 2}
	srcC = sources.Descriptor{ID: "c", Name: "Charlie", Kind: sources.KindAPKPure, Enabled: true, Priority: 3}
)

// fixture wires one mock provider per source id behind a mock factory
type fixture struct {
	factory   *mocks.MockFactory
	providers map[string]*mocks.MockProvider
}

func newFixture(t *testing.T, ids ...string) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		factory:   mocks.NewMockFactory(ctrl),
		providers: make(map[string]*mocks.MockProvider),
	}
	for _, id := range ids {
		f.providers[id] = mocks.NewMockProvider(ctrl)
	}
	f.factory.EXPECT().CreateProvider(gomock.Any()).DoAndReturn(
		func(d sources.Descriptor) (sources.Provider, error) {
			p, ok := f.providers[d.ID]
			if !ok {
				return nil, errors.New("unsupported source kind: " + string(d.Kind))
			}
			return p, nil
		}).AnyTimes()
	return f
}

func metadata(pkg string, vs ...sources.Version) *sources.AppMetadata {
	return &sources.AppMetadata{PackageName: pkg, DisplayName: pkg, Versions: vs}
}

func TestOrdered(t *testing.T) {
	t.Parallel()

	disabled := sources.Descriptor{ID: "d", Enabled: false, Priority: 0}
	tieFirst := sources.Descriptor{ID: "t1", Enabled: true, Priority: 2}
	tieSecond := sources.Descriptor{ID: "t2", Enabled: true, Priority: 2}

	got := Ordered([]sources.Descriptor{srcC, tieFirst, disabled, srcA, tieSecond})

	ids := make([]string, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"a", "t1", "t2", "c"}, ids)
}

func TestResolveMetadata_StopsAtFirstSuccess(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b", "c")
	ctx := context.Background()
	f.providers["a"].EXPECT().FetchMetadata(gomock.Any(), "com.example").Return(nil, sources.ErrNotFound)
	f.providers["b"].EXPECT().FetchMetadata(gomock.Any(), "com.example").
		Return(metadata("com.example", sources.Version{Name: "2.0", Code: 20}), nil)
	// c has no expectations; any call fails the test.

	r := New(f.factory)
	result, err := r.ResolveMetadata(ctx, "com.example", []sources.Descriptor{srcC, srcB, srcA})
	require.NoError(t, err)
	assert.Equal(t, "b", result.Source.ID)
	assert.Equal(t, "com.example", result.Metadata.PackageName)
}

func TestResolveMetadata_ErrorsDoNotStopTheLoop(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "c")
	f.providers["a"].EXPECT().FetchMetadata(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))
	f.providers["c"].EXPECT().FetchMetadata(gomock.Any(), gomock.Any()).Return(metadata("com.example"), nil)

	// b is not registered with the factory, so its construction fails.
	result, err := New(f.factory).ResolveMetadata(context.Background(), "com.example", []sources.Descriptor{srcA, srcB, srcC})
	require.NoError(t, err)
	assert.Equal(t, "c", result.Source.ID)
}

func TestResolveMetadata_NothingFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b")
	f.providers["a"].EXPECT().FetchMetadata(gomock.Any(), gomock.Any()).Return(nil, sources.ErrNotFound)
	f.providers["b"].EXPECT().FetchMetadata(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := New(f.factory).ResolveMetadata(context.Background(), "com.example", []sources.Descriptor{srcA, srcB})
	require.Error(t, err)
	assert.ErrorIs(t, err, sources.ErrNotFound)
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestResolveMetadata_NoEnabledSources(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	disabled := srcA
	disabled.Enabled = false

	_, err := New(f.factory).ResolveMetadata(context.Background(), "com.example", []sources.Descriptor{disabled})
	assert.ErrorIs(t, err, sources.ErrNotFound)
}

func TestResolveMetadata_ProviderPanicIsSkipped(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b")
	f.providers["a"].EXPECT().FetchMetadata(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) (*sources.AppMetadata, error) {
			panic("selector exploded")
		})
	f.providers["b"].EXPECT().FetchMetadata(gomock.Any(), gomock.Any()).Return(metadata("com.example"), nil)

	result, err := New(f.factory).ResolveMetadata(context.Background(), "com.example", []sources.Descriptor{srcA, srcB})
	require.NoError(t, err)
	assert.Equal(t, "b", result.Source.ID)
}

func TestResolveDownloadURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(f *fixture)
		wantSrc string
		wantURL string
		wantErr bool
	}{
		{
			name: "first source answers",
			setup: func(f *fixture) {
				f.providers["a"].EXPECT().GetDownloadURL(gomock.Any(), "com.example", int64(0)).
					Return("https://cdn.example.com/a.apk", nil)
			},
			wantSrc: "a",
			wantURL: "https://cdn.example.com/a.apk",
		},
		{
			name: "falls through not found and empty url",
			setup: func(f *fixture) {
				f.providers["a"].EXPECT().GetDownloadURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("", sources.ErrNotFound)
				f.providers["b"].EXPECT().GetDownloadURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil)
				f.providers["c"].EXPECT().GetDownloadURL(gomock.Any(), gomock.Any(), gomock.Any()).
					Return("https://cdn.example.com/c.apk", nil)
			},
			wantSrc: "c",
			wantURL: "https://cdn.example.com/c.apk",
		},
		{
			name: "all fail",
			setup: func(f *fixture) {
				f.providers["a"].EXPECT().GetDownloadURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("", sources.ErrNotFound)
				f.providers["b"].EXPECT().GetDownloadURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("timeout"))
				f.providers["c"].EXPECT().GetDownloadURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("", sources.ErrNotFound)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, "a", "b", "c")
			tt.setup(f)

			result, err := New(f.factory).ResolveDownloadURL(context.Background(), "com.example", 0, []sources.Descriptor{srcA, srcB, srcC})
			if tt.wantErr {
				assert.ErrorIs(t, err, sources.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSrc, result.Source.ID)
			assert.Equal(t, tt.wantURL, result.URL)
		})
	}
}

func TestResolveDownloadURL_PassesVersionCode(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a")
	f.providers["a"].EXPECT().GetDownloadURL(gomock.Any(), "com.example", int64(42)).Return("https://cdn.example.com/42.apk", nil)

	result, err := New(f.factory).ResolveDownloadURL(context.Background(), "com.example", 42, []sources.Descriptor{srcA})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/42.apk", result.URL)
}

func TestTestAll(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b", "c")
	f.providers["a"].EXPECT().FetchMetadata(gomock.Any(), "com.example").Return(metadata("com.example",
		sources.Version{Name: "1.0", Code: 10, DownloadURL: "https://cdn.example.com/10.apk"},
		sources.Version{Name: "1.1", Code: 11, DownloadURL: "https://cdn.example.com/11.apk"},
	), nil).Times(1)
	f.providers["b"].EXPECT().FetchMetadata(gomock.Any(), "com.example").Return(metadata("com.example"), nil).Times(1)
	f.providers["c"].EXPECT().FetchMetadata(gomock.Any(), "com.example").Return(nil, errors.New("dial tcp: refused")).Times(1)

	checked := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := New(f.factory, WithClock(func() time.Time { return checked }))

	outcomes := r.TestAll(context.Background(), "com.example", []sources.Descriptor{srcC, srcA, srcB})
	require.Len(t, outcomes, 3)

	assert.Equal(t, Outcome{
		SourceID: "a", SourceName: "Alpha", Status: StatusSuccess,
		URL: "https://cdn.example.com/11.apk", CheckedAt: checked,
	}, outcomes[0])
	assert.Equal(t, Outcome{
		SourceID: "b", SourceName: "Bravo", Status: StatusFailure,
		Error: "No metadata or versions found", CheckedAt: checked,
	}, outcomes[1])
	assert.Equal(t, "c", outcomes[2].SourceID)
	assert.Equal(t, StatusFailure, outcomes[2].Status)
	assert.Equal(t, "dial tcp: refused", outcomes[2].Error)
}

func TestTestAll_NotFoundAndUnknownKind(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a")
	f.providers["a"].EXPECT().FetchMetadata(gomock.Any(), gomock.Any()).Return(nil, sources.ErrNotFound)

	outcomes := New(f.factory).TestAll(context.Background(), "com.example", []sources.Descriptor{srcA, srcB})
	require.Len(t, outcomes, 2)
	assert.Equal(t, "No metadata or versions found", outcomes[0].Error)
	assert.Equal(t, StatusFailure, outcomes[1].Status)
	assert.Contains(t, outcomes[1].Error, "unsupported source kind")
}
