// Package v1 provides the client-facing REST API used by devices.
package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kosher-appstore/appstore-server/internal/api/common"
	"github.com/kosher-appstore/appstore-server/internal/catalog"
	"github.com/kosher-appstore/appstore-server/internal/download"
	"github.com/kosher-appstore/appstore-server/internal/store"
)

// RegisterDeviceRequest is the body of POST /api/devices/register
type RegisterDeviceRequest struct {
	DeviceID   string `json:"device_id"`
	AppVersion string `json:"app_version,omitempty"`
}

// RegisterDeviceResponse acknowledges a registration
type RegisterDeviceResponse struct {
	DeviceID string `json:"device_id"`
	Status   string `json:"status"`
}

// DownloadRequest is the body of POST /api/apps/{appId}/download
type DownloadRequest struct {
	DeviceID string `json:"device_id"`
}

// Routes handles the client API
type Routes struct {
	catalog catalog.Catalog
}

// NewRoutes creates a new Routes instance with the given catalog
func NewRoutes(svc catalog.Catalog) *Routes {
	return &Routes{catalog: svc}
}

// Router creates the client API router. downloads serves GET /downloads/{token}.
func Router(svc catalog.Catalog, downloads http.Handler) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Post("/devices/register", routes.registerDevice)
	r.Get("/apps", routes.listApps)
	r.Post("/apps/{appId}/download", routes.requestDownload)
	r.Method(http.MethodGet, "/downloads/{"+download.TokenParam+"}", downloads)

	return r
}

// registerDevice handles POST /api/devices/register
func (routes *Routes) registerDevice(w http.ResponseWriter, r *http.Request) {
	var req RegisterDeviceRequest
	if err := common.DecodeJSONBody(w, r, &req); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := routes.catalog.RegisterDevice(r.Context(), req.DeviceID, common.ClientIP(r)); err != nil {
		if errors.Is(err, catalog.ErrInvalidDeviceID) {
			common.WriteErrorResponse(w, "Invalid device ID format", http.StatusBadRequest)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to register device", "error", err)
		common.WriteErrorResponse(w, "Failed to register device", http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, RegisterDeviceResponse{DeviceID: req.DeviceID, Status: "ok"}, http.StatusOK)
}

// listApps handles GET /api/apps
func (routes *Routes) listApps(w http.ResponseWriter, r *http.Request) {
	apps, err := routes.catalog.ListApps(r.Context(), r.URL.Query().Get("device_id"))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list apps", "error", err)
		common.WriteErrorResponse(w, "Failed to fetch apps", http.StatusInternalServerError)
		return
	}
	if apps == nil {
		apps = []store.App{}
	}
	common.WriteJSONResponse(w, apps, http.StatusOK)
}

// requestDownload handles POST /api/apps/{appId}/download
func (routes *Routes) requestDownload(w http.ResponseWriter, r *http.Request) {
	appID, err := common.GetAndValidateURLParam(r, "appId")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req DownloadRequest
	if err := common.DecodeJSONBody(w, r, &req); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	link, err := routes.catalog.RequestDownload(r.Context(), appID, req.DeviceID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidDeviceID):
			common.WriteErrorResponse(w, "Invalid device ID", http.StatusBadRequest)
		case errors.Is(err, catalog.ErrDeviceNotRegistered):
			common.WriteErrorResponse(w, "Device not registered", http.StatusNotFound)
		case errors.Is(err, catalog.ErrAppNotFound):
			common.WriteErrorResponse(w, "App not found", http.StatusNotFound)
		case errors.Is(err, catalog.ErrNoVersions):
			common.WriteErrorResponse(w, "No versions available for this app", http.StatusNotFound)
		case errors.Is(err, catalog.ErrNoDownloadSource):
			common.WriteErrorResponse(w, "No download sources available for this app", http.StatusNotFound)
		default:
			slog.ErrorContext(r.Context(), "Failed to issue download link", "app_id", appID, "error", err)
			common.WriteErrorResponse(w, "Failed to prepare download", http.StatusInternalServerError)
		}
		return
	}

	common.WriteJSONResponse(w, link, http.StatusOK)
}
