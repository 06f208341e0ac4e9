// Package api assembles the HTTP surface of the app store: health probes,
// the device-facing API, the admin API and the metrics endpoint.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kosher-appstore/appstore-server/internal/api/admin"
	v1 "github.com/kosher-appstore/appstore-server/internal/api/v1"
	"github.com/kosher-appstore/appstore-server/internal/catalog"
)

// ServerOption configures the API server
type ServerOption func(*serverConfig)

type serverConfig struct {
	middlewares      []func(http.Handler) http.Handler
	adminMiddlewares []func(http.Handler) http.Handler
	metricsHandler   http.Handler
}

// WithMiddlewares adds middleware applied to every route
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithAdminMiddlewares adds middleware applied only to /api/admin, such as authentication
func WithAdminMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.adminMiddlewares = append(cfg.adminMiddlewares, mw...)
	}
}

// WithMetricsHandler serves h at /metrics
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metricsHandler = h
	}
}

// NewServer creates the HTTP router. downloads serves GET /api/downloads/{token}.
func NewServer(svc catalog.Catalog, downloads http.Handler, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	r.Mount("/", v1.HealthRouter(svc))

	if cfg.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(cfg.adminMiddlewares...)
			r.Mount("/admin", admin.Router(svc))
		})
		r.Mount("/", v1.Router(svc, downloads))
	})

	return r
}

// LoggingMiddleware logs each request at debug level. The route pattern is
// logged instead of the path so download tokens stay out of the logs.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		slog.DebugContext(r.Context(), "HTTP request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
