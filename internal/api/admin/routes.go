// Package admin provides the administrative REST API: catalog curation and
// source management.
package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kosher-appstore/appstore-server/internal/api/common"
	"github.com/kosher-appstore/appstore-server/internal/catalog"
	"github.com/kosher-appstore/appstore-server/internal/resolver"
	"github.com/kosher-appstore/appstore-server/internal/store"
)

// AppExistsResponse is returned with 409 when the package is already in the catalog
type AppExistsResponse struct {
	Error string `json:"error"`
	AppID string `json:"app_id"`
}

// TestFetchResponse wraps the per-source diagnostic outcomes
type TestFetchResponse struct {
	Results []resolver.Outcome `json:"results"`
}

// Routes handles the admin API
type Routes struct {
	catalog catalog.Catalog
}

// NewRoutes creates a new Routes instance with the given catalog
func NewRoutes(svc catalog.Catalog) *Routes {
	return &Routes{catalog: svc}
}

// Router creates the admin API router
func Router(svc catalog.Catalog) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Route("/apps", func(r chi.Router) {
		r.Get("/", routes.listApps)
		r.Post("/", routes.addApp)
		r.Get("/{id}", routes.getApp)
		r.Post("/{id}/test-fetch", routes.testFetch)
	})
	r.Route("/sources", func(r chi.Router) {
		r.Get("/", routes.listSources)
		r.Get("/{id}", routes.getSource)
		r.Patch("/{id}", routes.updateSource)
	})

	return r
}

// listApps handles GET /api/admin/apps
func (routes *Routes) listApps(w http.ResponseWriter, r *http.Request) {
	apps, err := routes.catalog.ListAppStats(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list apps", "error", err)
		common.WriteErrorResponse(w, "Failed to fetch apps", http.StatusInternalServerError)
		return
	}
	if apps == nil {
		apps = []store.AppStats{}
	}
	common.WriteJSONResponse(w, apps, http.StatusOK)
}

// getApp handles GET /api/admin/apps/{id}
func (routes *Routes) getApp(w http.ResponseWriter, r *http.Request) {
	id, err := common.GetAndValidateURLParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	app, err := routes.catalog.GetAppDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrAppNotFound) {
			common.WriteErrorResponse(w, "App not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to get app", "app_id", id, "error", err)
		common.WriteErrorResponse(w, "Failed to fetch app", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, app, http.StatusOK)
}

// addApp handles POST /api/admin/apps
func (routes *Routes) addApp(w http.ResponseWriter, r *http.Request) {
	var req catalog.AddAppRequest
	if err := common.DecodeJSONBody(w, r, &req); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	app, err := routes.catalog.AddApp(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidApp):
			common.WriteErrorResponse(w, detail(err), http.StatusBadRequest)
		case errors.Is(err, catalog.ErrAppExists):
			resp := AppExistsResponse{Error: "App already exists"}
			if app != nil {
				resp.AppID = app.ID
			}
			common.WriteJSONResponse(w, resp, http.StatusConflict)
		case errors.Is(err, catalog.ErrNoSources):
			common.WriteErrorResponse(w, "No enabled sources available", http.StatusInternalServerError)
		case errors.Is(err, catalog.ErrMetadataNotFound):
			common.WriteErrorResponse(w, "Could not fetch app metadata from any source", http.StatusNotFound)
		default:
			slog.ErrorContext(r.Context(), "Failed to add app", "error", err)
			common.WriteErrorResponse(w, "Failed to create app", http.StatusInternalServerError)
		}
		return
	}

	common.WriteJSONResponse(w, app, http.StatusCreated)
}

// testFetch handles POST /api/admin/apps/{id}/test-fetch
func (routes *Routes) testFetch(w http.ResponseWriter, r *http.Request) {
	id, err := common.GetAndValidateURLParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcomes, err := routes.catalog.TestFetch(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrAppNotFound) {
			common.WriteErrorResponse(w, "App not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to test sources", "app_id", id, "error", err)
		common.WriteErrorResponse(w, "Failed to fetch sources", http.StatusInternalServerError)
		return
	}
	if outcomes == nil {
		outcomes = []resolver.Outcome{}
	}
	common.WriteJSONResponse(w, TestFetchResponse{Results: outcomes}, http.StatusOK)
}

// listSources handles GET /api/admin/sources
func (routes *Routes) listSources(w http.ResponseWriter, r *http.Request) {
	all, err := routes.catalog.ListSources(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list sources", "error", err)
		common.WriteErrorResponse(w, "Failed to fetch sources", http.StatusInternalServerError)
		return
	}
	if all == nil {
		all = []store.Source{}
	}
	common.WriteJSONResponse(w, all, http.StatusOK)
}

// getSource handles GET /api/admin/sources/{id}
func (routes *Routes) getSource(w http.ResponseWriter, r *http.Request) {
	id, err := common.GetAndValidateURLParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	source, err := routes.catalog.GetSource(r.Context(), id)
	if err != nil {
		routes.writeSourceError(w, r, id, err)
		return
	}
	common.WriteJSONResponse(w, source, http.StatusOK)
}

// updateSource handles PATCH /api/admin/sources/{id}
func (routes *Routes) updateSource(w http.ResponseWriter, r *http.Request) {
	id, err := common.GetAndValidateURLParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var patch catalog.SourcePatch
	if err := common.DecodeJSONBody(w, r, &patch); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	source, err := routes.catalog.UpdateSource(r.Context(), id, patch)
	if err != nil {
		routes.writeSourceError(w, r, id, err)
		return
	}
	common.WriteJSONResponse(w, source, http.StatusOK)
}

func (*Routes) writeSourceError(w http.ResponseWriter, r *http.Request, id string, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidSourceUpdate):
		common.WriteErrorResponse(w, detail(err), http.StatusBadRequest)
	case errors.Is(err, catalog.ErrSourceNotFound):
		common.WriteErrorResponse(w, "Source not found", http.StatusNotFound)
	default:
		slog.ErrorContext(r.Context(), "Source request failed", "source_id", id, "error", err)
		common.WriteErrorResponse(w, "Failed to fetch source", http.StatusInternalServerError)
	}
}

// detail returns the text after the sentinel prefix of a validation error,
// e.g. "priority must be zero or greater"
func detail(err error) string {
	msg := err.Error()
	if _, after, ok := strings.Cut(msg, ": "); ok {
		return after
	}
	return msg
}
