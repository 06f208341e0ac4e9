// Package auth provides bearer-token authentication for the admin API.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// RFC 6750 Section 3 error codes
const (
	errorCodeInvalidRequest = "invalid_request"
	errorCodeInvalidToken   = "invalid_token"
)

const defaultRealm = "appstore-admin"

var errMissingBearer = errors.New("missing or malformed authorization header")

type claimsKey struct{}

// ClaimsFromContext returns the claims of the authenticated admin, if any
func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(jwt.MapClaims)
	return claims, ok
}

// bearerMiddleware rejects requests without a valid admin bearer token
type bearerMiddleware struct {
	validator tokenValidator
	realm     string
}

// Middleware returns an HTTP middleware function that performs authentication
func (m *bearerMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r)
		if err != nil {
			slog.WarnContext(r.Context(), "Admin token missing",
				"remote_addr", r.RemoteAddr, "path", r.URL.Path)
			m.writeError(w, errorCodeInvalidRequest, err.Error())
			return
		}

		claims, err := m.validator.ValidateToken(token)
		if err != nil {
			slog.WarnContext(r.Context(), "Admin token rejected",
				"error", err, "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			m.writeError(w, errorCodeInvalidToken, "token validation failed")
			return
		}

		slog.DebugContext(r.Context(), "Admin authenticated", "subject", claims["sub"], "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errMissingBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMissingBearer
	}
	return token, nil
}

// sanitizeHeaderValue removes characters that could enable header injection attacks
func sanitizeHeaderValue(s string) string {
	if !strings.ContainsAny(s, "\r\n\"") {
		return s
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.ReplaceAll(s, `"`, `\"`)
}

// writeError writes a 401 JSON error with an RFC 6750 WWW-Authenticate header
func (m *bearerMiddleware) writeError(w http.ResponseWriter, errCode, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer realm="%s", error="%s", error_description="%s"`,
		sanitizeHeaderValue(m.realm), errCode, sanitizeHeaderValue(description)))
	w.WriteHeader(http.StatusUnauthorized)

	resp := struct {
		Error string `json:"error"`
	}{Error: description}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
