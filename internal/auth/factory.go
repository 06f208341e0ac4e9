package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kosher-appstore/appstore-server/internal/config"
)

// NewAuthMiddleware creates the admin authentication middleware. A nil config
// leaves admin routes open, which is only fit for development.
func NewAuthMiddleware(cfg *config.AuthConfig) (func(http.Handler) http.Handler, error) {
	if cfg == nil {
		slog.Warn("auth: no auth config, admin routes are unauthenticated")
		return anonymousMiddleware, nil
	}

	secret, err := cfg.GetJWTSecret()
	if err != nil {
		return nil, err
	}
	validator, err := newHMACValidator(secret, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin token validator: %w", err)
	}

	slog.Info("auth: admin bearer tokens required", "issuer", cfg.Issuer)
	m := &bearerMiddleware{validator: validator, realm: defaultRealm}
	return m.Middleware, nil
}

// anonymousMiddleware is a no-op middleware that passes requests through without authentication
func anonymousMiddleware(next http.Handler) http.Handler {
	return next
}
