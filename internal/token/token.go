// Package token issues and verifies HMAC-signed download capability tokens.
//
// A token is base64url(JSON payload) + "." + base64url(HMAC-SHA256(secret, encoded payload)).
// Tokens are stateless: nothing is persisted and a token may be presented
// any number of times until it expires.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTTL is the lifetime of an issued token when none is configured
const DefaultTTL = 300 * time.Second

var (
	// ErrMalformedToken is returned when the token is not two non-empty dot-separated segments
	ErrMalformedToken = errors.New("malformed token")

	// ErrSignatureMismatch is returned when the signature does not match the payload
	ErrSignatureMismatch = errors.New("token signature mismatch")

	// ErrMalformedPayload is returned when a correctly signed payload cannot be decoded
	ErrMalformedPayload = errors.New("malformed token payload")

	// ErrTokenExpired is returned when the token is checked at or after its expiry
	ErrTokenExpired = errors.New("token expired")
)

// Payload is the content of a download token
type Payload struct {
	DeviceID     string `json:"deviceId"`
	AppID        string `json:"appId"`
	AppVersionID string `json:"appVersionId"`
	AppSourceID  string `json:"appSourceId"`

	// ExpiresAt is the expiry as Unix epoch milliseconds
	ExpiresAt int64 `json:"expiresAt"`
}

// Expiry returns ExpiresAt as a time.Time
func (p Payload) Expiry() time.Time {
	return time.UnixMilli(p.ExpiresAt)
}

// Service issues and verifies tokens with a single secret
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithTTL overrides DefaultTTL
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service. The secret must not be empty.
func NewService(secret []byte, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret cannot be empty")
	}

	s := &Service{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the lifetime applied to newly issued tokens
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue returns a signed token for the given download that expires after the TTL
func (s *Service) Issue(deviceID, appID, appVersionID, appSourceID string) (string, error) {
	payload := Payload{
		DeviceID:     deviceID,
		AppID:        appID,
		AppVersionID: appVersionID,
		AppSourceID:  appSourceID,
		ExpiresAt:    s.now().Add(s.ttl).UnixMilli(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode token payload: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + s.sign(encoded), nil
}

// Verify checks the token's signature and expiry and returns its payload.
// Errors are one of ErrMalformedToken, ErrSignatureMismatch, ErrMalformedPayload
// or ErrTokenExpired.
func (s *Service) Verify(token string) (*Payload, error) {
	encoded, signature, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || signature == "" || strings.Contains(signature, ".") {
		return nil, ErrMalformedToken
	}

	if !hmac.Equal([]byte(signature), []byte(s.sign(encoded))) {
		return nil, ErrSignatureMismatch
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if s.now().UnixMilli() >= payload.ExpiresAt {
		return nil, ErrTokenExpired
	}

	return &payload, nil
}

func (s *Service) sign(encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
