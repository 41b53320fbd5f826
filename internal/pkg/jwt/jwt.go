package jwt

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the smallest HS512 key accepted, in bytes.
const MinSecretLength = 64

var (
	// ErrInvalidSigningMethod is returned when the JWT signing method is not supported.
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")

	// ErrSigningKeyTooShort is returned when the HS512 signing key is less than 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrTokenExpired is returned when the JWT token has expired.
	ErrTokenExpired = errors.New("JWT token has expired")

	// ErrInvalidToken is returned when the token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
)

// JWT defines the operations needed by the app: mint and verify a session token.
type JWT interface {
	// Generate creates a signed token for subjectID holding role. It also
	// returns the expiry so the transport can align cookie lifetimes.
	Generate(subjectID int64, role string) (string, time.Time, error)
	// Verify parses and validates the token and returns its claims.
	Verify(tokenStr string) (Claims, error)
	// TTL is the validity window of generated tokens.
	TTL() time.Duration
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type jwtContextKey struct{}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	// Secret is the HMAC signing key.
	Secret []byte
	// Issuer is the token issuer value.
	Issuer string
	// Audiences are the accepted token audiences.
	Audiences []string
	// TTL is the token time-to-live.
	TTL time.Duration
	// Clock provides the current time source.
	Clock clocker
	// UUID generates token IDs.
	UUID generator
}

// Claims is the payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
	// UserID is the authenticated subject identifier.
	UserID int64 `json:"uid,string"`
	// Role is the subject's role at issue time.
	Role string `json:"role"`
}

// HasRole reports whether the claims carry one of roles.
func (c Claims) HasRole(roles ...string) bool {
	return c.Role != "" && slices.Contains(roles, c.Role)
}

// GetAuth returns the JWT claims stored in the context, if any.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(jwtContextKey{}).(Claims)
	if !ok {
		return nil
	}

	return &clm
}

// SetAuth stores JWT claims in the context.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, clm)
}
