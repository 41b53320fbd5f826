package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

var (
	secretOne = []byte(strings.Repeat("s1-", 22))
	secretTwo = []byte(strings.Repeat("s2-", 22))
)

func newSymmetric(t *testing.T, secret []byte, c *clock.Manual) *Symmetric {
	t.Helper()

	s, err := NewHS512(Config{
		Secret:    secret,
		Issuer:    "gomarket",
		Audiences: []string{"gomarket-web"},
		TTL:       time.Hour,
		Clock:     c,
		UUID:      fixedID("0196f2d4-0000-7000-8000-000000000001"),
	})
	require.NoError(t, err)

	return s
}

func TestNewHS512RejectsShortSecret(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("short")})
	assert.ErrorIs(t, err, ErrSigningKeyTooShort)
}

func TestGenerateAndVerify(t *testing.T) {
	// Arrange
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newSymmetric(t, secretOne, clock.NewManual(now))

	// Act
	token, exp, err := s.Generate(42, "SELLER")
	require.NoError(t, err)
	claims, err := s.Verify(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "SELLER", claims.Role)
	assert.True(t, claims.HasRole("ADMIN", "SELLER"))
	assert.False(t, claims.HasRole("ADMIN"))
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	// Arrange
	c := clock.NewManual(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	signer := newSymmetric(t, secretOne, c)
	verifier := newSymmetric(t, secretTwo, c)

	token, _, err := signer.Generate(7, "BUYER")
	require.NoError(t, err)

	// Act
	_, err = verifier.Verify(token)

	// Assert
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	c := clock.NewManual(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	s := newSymmetric(t, secretOne, c)

	token, _, err := s.Generate(7, "BUYER")
	require.NoError(t, err)

	c.Advance(time.Hour + time.Second)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsTamperedClaims(t *testing.T) {
	c := clock.NewManual(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	s := newSymmetric(t, secretOne, c)

	buyer, _, err := s.Generate(7, "BUYER")
	require.NoError(t, err)
	admin, _, err := s.Generate(7, "ADMIN")
	require.NoError(t, err)

	// admin payload with the buyer signature
	b := strings.Split(buyer, ".")
	a := strings.Split(admin, ".")
	forged := strings.Join([]string{b[0], a[1], b[2]}, ".")

	_, err = s.Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	c := clock.NewManual(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	s := newSymmetric(t, secretOne, c)

	other, err := NewHS512(Config{
		Secret:    secretOne,
		Issuer:    "someone-else",
		Audiences: []string{"gomarket-web"},
		TTL:       time.Hour,
		Clock:     c,
		UUID:      fixedID("x"),
	})
	require.NoError(t, err)

	token, _, err := other.Generate(1, "ADMIN")
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFailsClosedWithoutSecret(t *testing.T) {
	s := &Symmetric{clock: clock.New(), uuid: fixedID("x")}

	_, _, err := s.Generate(1, "ADMIN")
	assert.ErrorIs(t, err, ErrSigningKeyTooShort)

	_, err = s.Verify("a.b.c")
	assert.ErrorIs(t, err, ErrSigningKeyTooShort)
}

func TestAuthContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetAuth(ctx))

	ctx = SetAuth(ctx, Claims{UserID: 9, Role: "ADMIN"})
	got := GetAuth(ctx)
	require.NotNil(t, got)
	assert.Equal(t, int64(9), got.UserID)
}
