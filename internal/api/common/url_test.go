package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAndValidateURLParam(t *testing.T) {
	t.Parallel()

	routerTests := []struct {
		name       string
		paramValue string
		wantValue  string
		wantErrMsg string
	}{
		{name: "uuid", paramValue: "6f1c1f2e-8d0a-4c52-9a43-2b7b0c9d7e11",
			wantValue: "6f1c1f2e-8d0a-4c52-9a43-2b7b0c9d7e11"},
		{name: "token with dot", paramValue: "eyJkZXZpY2VJZCI6IngifQ.c2ln", wantValue: "eyJkZXZpY2VJZCI6IngifQ.c2ln"},
		{name: "encoded colon", paramValue: "app%3A1", wantValue: "app:1"},
		{name: "double-encoded percent", paramValue: "a%2525b", wantValue: "a%b"},
		{name: "empty", paramValue: "", wantErrMsg: "id cannot be empty"},
		{name: "encoded space only", paramValue: "%20", wantErrMsg: "id cannot be empty"},
		{name: "encoded tab only", paramValue: "%09", wantErrMsg: "id cannot be empty"},
		{name: "space inside", paramValue: "app%201", wantErrMsg: "id cannot contain whitespace"},
		{name: "newline at end", paramValue: "app1%0A", wantErrMsg: "id cannot contain whitespace"},
	}

	for _, tt := range routerTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			router := chi.NewRouter()
			router.Get("/{id}", func(_ http.ResponseWriter, r *http.Request) {
				called = true
				value, err := GetAndValidateURLParam(r, "id")
				if tt.wantErrMsg != "" {
					require.Error(t, err)
					assert.Equal(t, tt.wantErrMsg, err.Error())
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.wantValue, value)
			})

			req, err := http.NewRequest(http.MethodGet, "/"+tt.paramValue, nil)
			require.NoError(t, err)
			router.ServeHTTP(httptest.NewRecorder(), req)
			if tt.paramValue != "" {
				assert.True(t, called)
			}
		})
	}

	// chi never routes these, so the context is built by hand
	for _, raw := range []string{"app%2", "app%ZZ", "app%"} {
		t.Run("invalid encoding "+raw, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", raw)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			_, err := GetAndValidateURLParam(req, "id")
			require.Error(t, err)
			assert.Equal(t, "invalid URL encoding in id", err.Error())
		})
	}
}
