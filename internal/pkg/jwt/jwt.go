// Package jwt issues and verifies the service's access tokens: a typed
// Claims wrapper, an HS512 implementation, and context helpers for carrying
// authenticated claims through a request.
package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSigningMethod is returned when a token was signed with an
	// unexpected algorithm.
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")

	// ErrSigningKeyTooShort is returned when the HS512 key is under 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrTokenExpired is returned for structurally valid but expired tokens.
	ErrTokenExpired = errors.New("JWT token has expired")

	// ErrInvalidToken is returned when the token fails validation.
	ErrInvalidToken = errors.New("invalid token")
)

// JWT generates and verifies access tokens.
type JWT interface {
	// Generate creates a signed token for the user.
	Generate(uid int64, email string) (string, error)
	// Verify parses and validates the token and returns its claims.
	Verify(token string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config carries the inputs for building a JWT implementation.
type Config struct {
	// Secret is the HMAC signing key.
	Secret []byte
	// Issuer is the token issuer value.
	Issuer string
	// Audiences are the accepted token audiences.
	Audiences []string
	// TTL is the token lifetime.
	TTL time.Duration
	// Clock provides the time source.
	Clock clocker
	// UUID generates token IDs.
	UUID generator
}

// Claims wraps the registered claims with the service payload.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the authenticated user identifier.
	UserID int64 `json:"user_id,string"`
	// UserEmail is the authenticated user email.
	UserEmail string `json:"user_email"`
}

type jwtContextKey struct{}

// GetAuth returns the claims stored in ctx, or nil when unauthenticated.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(jwtContextKey{}).(Claims)
	if !ok {
		return nil
	}
	return &clm
}

// SetAuth stores claims in ctx.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, clm)
}
