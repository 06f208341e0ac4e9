package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLeeway absorbs clock skew between the token issuer and this server
const DefaultLeeway = 30 * time.Second

// tokenValidator checks a bearer token and returns its claims
type tokenValidator interface {
	ValidateToken(token string) (jwt.MapClaims, error)
}

// hmacValidator accepts HS256 tokens signed with a shared secret
type hmacValidator struct {
	secret []byte
	parser *jwt.Parser
}

func newHMACValidator(secret []byte, issuer string) (*hmacValidator, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret must not be empty")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(DefaultLeeway),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &hmacValidator{secret: secret, parser: jwt.NewParser(opts...)}, nil
}

// ValidateToken parses token and verifies its signature, expiry and issuer
func (v *hmacValidator) ValidateToken(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid admin token: %w", err)
	}
	return claims, nil
}
