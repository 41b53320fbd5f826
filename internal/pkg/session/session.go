// Package session turns a signed session token into the HTTP cookie that
// carries it, and builds the matching expiry cookie for logout.
package session

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidSameSite is returned for a SameSite value other than lax, strict or none.
var ErrInvalidSameSite = errors.New("session: same_site must be one of lax, strict, none")

// CookieConfig describes the session cookie.
type CookieConfig struct {
	// Name is the cookie name.
	Name string
	// Path defaults to "/".
	Path string
	// Domain is optional.
	Domain string
	// Secure marks the cookie HTTPS-only. Production forces it on.
	Secure bool
	// SameSite is lax, strict or none. Empty means lax.
	SameSite string
	// Production forces Secure regardless of the Secure field.
	Production bool
}

// Cookie builds session cookies from CookieConfig.
type Cookie struct {
	name     string
	path     string
	domain   string
	secure   bool
	sameSite http.SameSite
}

// NewCookie validates cfg and returns a Cookie builder.
func NewCookie(cfg CookieConfig) (*Cookie, error) {
	sameSite, err := parseSameSite(cfg.SameSite)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "gomarket_session"
	}

	path := cfg.Path
	if path == "" {
		path = "/"
	}

	secure := cfg.Secure || cfg.Production
	// Browsers drop SameSite=None cookies that are not Secure.
	if sameSite == http.SameSiteNoneMode {
		secure = true
	}

	return &Cookie{
		name:     name,
		path:     path,
		domain:   cfg.Domain,
		secure:   secure,
		sameSite: sameSite,
	}, nil
}

func parseSameSite(v string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteDefaultMode, ErrInvalidSameSite
	}
}

// Name returns the cookie name.
func (c *Cookie) Name() string { return c.name }

// Issue returns the cookie carrying token. It lives until expiresAt as
// measured from now, so it never outlives the token inside it.
func (c *Cookie) Issue(token string, now, expiresAt time.Time) *http.Cookie {
	maxAge := int(expiresAt.Sub(now) / time.Second)
	if maxAge <= 0 {
		return c.Clear()
	}

	ck := c.base()
	ck.Value = token
	ck.MaxAge = maxAge
	ck.Expires = expiresAt.UTC()
	return ck
}

// Clear returns a cookie that makes the browser drop the session.
func (c *Cookie) Clear() *http.Cookie {
	ck := c.base()
	ck.MaxAge = -1
	ck.Expires = time.Unix(0, 0).UTC()
	return ck
}

func (c *Cookie) base() *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Path:     c.path,
		Domain:   c.domain,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	}
}
