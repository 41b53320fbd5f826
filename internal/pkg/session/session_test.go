package session

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCookie(t *testing.T) {
	tests := []struct {
		name       string
		cfg        CookieConfig
		wantSecure bool
		wantSite   http.SameSite
		wantErr    error
	}{
		{name: "Defaults", cfg: CookieConfig{}, wantSite: http.SameSiteLaxMode},
		{name: "ProductionForcesSecure", cfg: CookieConfig{Production: true}, wantSecure: true, wantSite: http.SameSiteLaxMode},
		{name: "Strict", cfg: CookieConfig{SameSite: "Strict"}, wantSite: http.SameSiteStrictMode},
		{name: "NoneForcesSecure", cfg: CookieConfig{SameSite: "none"}, wantSecure: true, wantSite: http.SameSiteNoneMode},
		{name: "Invalid", cfg: CookieConfig{SameSite: "sometimes"}, wantErr: ErrInvalidSameSite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCookie(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			ck := c.Issue("tok", time.Unix(0, 0), time.Unix(60, 0))
			assert.Equal(t, tt.wantSecure, ck.Secure)
			assert.Equal(t, tt.wantSite, ck.SameSite)
			assert.True(t, ck.HttpOnly)
			assert.Equal(t, "/", ck.Path)
			assert.Equal(t, "gomarket_session", c.Name())
		})
	}
}

func TestIssueAndClear(t *testing.T) {
	// Arrange
	c, err := NewCookie(CookieConfig{Name: "sid", Domain: "market.example"})
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Act
	issued := c.Issue("signed.jwt.value", now, now.Add(time.Hour))
	cleared := c.Clear()

	// Assert
	assert.Equal(t, "sid", issued.Name)
	assert.Equal(t, "signed.jwt.value", issued.Value)
	assert.Equal(t, 3600, issued.MaxAge)
	assert.Equal(t, "market.example", issued.Domain)

	assert.Equal(t, "sid", cleared.Name)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)
	assert.Equal(t, issued.Path, cleared.Path)
}

func TestIssueAlreadyExpiredClears(t *testing.T) {
	c, err := NewCookie(CookieConfig{})
	require.NoError(t, err)
	now := time.Now()

	ck := c.Issue("tok", now, now.Add(-time.Second))

	assert.Equal(t, -1, ck.MaxAge)
	assert.Empty(t, ck.Value)
}
