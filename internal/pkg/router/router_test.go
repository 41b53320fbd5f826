package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
	"github.com/shandysiswandi/gomarket/internal/pkg/config"
	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
	"github.com/shandysiswandi/gomarket/internal/pkg/jwt"
	"github.com/shandysiswandi/gomarket/internal/pkg/validator"
)

const unauthenticatedBody = `{"success":false,"message":"Authentication required"}`

type staticID string

func (s staticID) Generate() string { return string(s) }

type cookieResponse struct {
	Name string `json:"name"`
}

func (cookieResponse) Message() string { return "signed in" }

func (cookieResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{{Name: DefaultSessionCookie, Value: "abc", Path: "/", HttpOnly: true}}
}

func newVerifier(t *testing.T, secret string, c clock.Clocker) *jwt.Symmetric {
	t.Helper()

	v, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat(secret, 64/len(secret)+1)),
		Issuer: "gomarket",
		TTL:    time.Hour,
		Clock:  c,
		UUID:   staticID("jti"),
	})
	require.NoError(t, err)
	return v
}

func newTestRouter(t *testing.T, cfg config.Config, verifier jwt.JWT) *Router {
	t.Helper()

	r := NewRouter(Config{Config: cfg, UUID: staticID("cid-generated"), JWT: verifier})
	r.POST("/api/v1/identity/login", func(*Request) (any, error) {
		return cookieResponse{Name: "ok"}, nil
	})
	r.GET("/api/v1/identity/session", func(req *Request) (any, error) {
		return map[string]any{"role": jwt.GetAuth(req.Context()).Role}, nil
	})
	r.GET("/api/v1/admin/users", func(*Request) (any, error) {
		return map[string]any{}, nil
	}, RequireRoles("ADMIN"))
	return r
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticationRejectsUniformly(t *testing.T) {
	now := clock.NewManual(time.Now().UTC())
	verifier := newVerifier(t, "s1", now)
	other := newVerifier(t, "s2", now)
	r := newTestRouter(t, nil, verifier)

	foreign, _, err := other.Generate(1, "BUYER")
	require.NoError(t, err)

	expiring := newVerifier(t, "s1", clock.NewManual(now.Now().Add(-2*time.Hour)))
	expired, _, err := expiring.Generate(1, "BUYER")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "Missing", header: ""},
		{name: "Malformed", header: "Bearer not-a-jwt"},
		{name: "WrongScheme", header: "Basic abc"},
		{name: "ForeignSecret", header: "Bearer " + foreign},
		{name: "Expired", header: "Bearer " + expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			req := httptest.NewRequest(http.MethodGet, "/api/v1/identity/session", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			// Act
			rec := serve(r, req)

			// Assert
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, unauthenticatedBody, rec.Body.String())
		})
	}
}

func TestAuthenticationAcceptsCookieAndBearer(t *testing.T) {
	verifier := newVerifier(t, "s1", clock.New())
	r := newTestRouter(t, nil, verifier)

	token, _, err := verifier.Generate(7, "SELLER")
	require.NoError(t, err)

	t.Run("Cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/identity/session", nil)
		req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: token})

		rec := serve(r, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"message":"request has been successfully","data":{"role":"SELLER"}}`, rec.Body.String())
	})

	t.Run("Bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/identity/session", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := serve(r, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("CookieWinsOverBearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/identity/session", nil)
		req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "garbage"})
		req.Header.Set("Authorization", "Bearer "+token)

		rec := serve(r, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	verifier := newVerifier(t, "s1", clock.New())
	r := newTestRouter(t, nil, verifier)

	tests := []struct {
		name string
		role string
		want int
		body string
	}{
		{name: "Buyer", role: "BUYER", want: http.StatusForbidden, body: `{"success":false,"message":"Access forbidden"}`},
		{name: "Seller", role: "SELLER", want: http.StatusForbidden, body: `{"success":false,"message":"Access forbidden"}`},
		{name: "Admin", role: "ADMIN", want: http.StatusOK, body: `{"success":true,"message":"request has been successfully","data":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _, err := verifier.Generate(1, tt.role)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			rec := serve(r, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}

	t.Run("NoClaims", func(t *testing.T) {
		h := RequireRoles("ADMIN")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run")
		}))

		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestPublicEndpointWritesCookies(t *testing.T) {
	r := newTestRouter(t, nil, nil)

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/identity/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"signed in","data":{"name":"ok"}}`, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultSessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "cid-generated", rec.Header().Get("X-Correlation-ID"))
}

func TestErrorEncoding(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		body string
	}{
		{
			name: "Business",
			err:  goerror.NewBusiness("code expired, request a new one", goerror.CodeGone),
			want: http.StatusGone,
			body: `{"success":false,"message":"code expired, request a new one"}`,
		},
		{
			name: "Validation",
			err:  goerror.NewInvalidInput(validator.V10ValidationError{"identifier": "identifier must be an email or phone"}),
			want: http.StatusUnprocessableEntity,
			body: `{"success":false,"message":"Validation error","error":{"identifier":"identifier must be an email or phone"}}`,
		},
		{
			name: "Fields",
			err:  goerror.NewInvalidInput(nil, "channel", "does not match identifier"),
			want: http.StatusUnprocessableEntity,
			body: `{"success":false,"message":"Validation error","error":{"channel":"does not match identifier"}}`,
		},
		{
			name: "Unknown",
			err:  errors.New("db down"),
			want: http.StatusInternalServerError,
			body: `{"success":false,"message":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(Config{})
			r.POST("/api/v1/identity/otp/verify", func(*Request) (any, error) { return nil, tt.err })

			rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/identity/otp/verify", nil))

			assert.Equal(t, tt.want, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestRecovererAndNoContent(t *testing.T) {
	r := NewRouter(Config{})
	r.POST("/api/v1/identity/otp/request", func(*Request) (any, error) { panic("boom") })
	r.POST("/api/v1/identity/logout", func(*Request) (any, error) { return nil, nil })

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/identity/otp/request", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, rec.Body.String())

	rec = serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/identity/logout", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMaintenance(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte(`
app:
  maintenance:
    endpoints: "/api/v1/identity/otp/request"
`))
	require.NoError(t, err)

	r := NewRouter(Config{Config: cfg})
	r.POST("/api/v1/identity/otp/request", func(*Request) (any, error) { return map[string]any{}, nil })
	r.POST("/api/v1/identity/otp/verify", func(*Request) (any, error) { return map[string]any{}, nil })

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/identity/otp/request", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/identity/otp/verify", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	// Arrange
	now := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	limiter := NewRateLimiter(60, 2, now)
	r := NewRouter(Config{})
	r.POST("/api/v1/identity/otp/request", func(*Request) (any, error) { return map[string]any{}, nil }, RateLimit(limiter))

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/identity/otp/request", nil)
		req.RemoteAddr = ip + ":5555"
		return serve(r, req).Code
	}

	// Act & Assert
	assert.Equal(t, http.StatusOK, send("192.0.2.1"))
	assert.Equal(t, http.StatusOK, send("192.0.2.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("192.0.2.1"))
	assert.Equal(t, http.StatusOK, send("192.0.2.2"))

	now.Advance(time.Second)
	assert.Equal(t, http.StatusOK, send("192.0.2.1"))
}

func TestNilRateLimiterAllows(t *testing.T) {
	assert.Nil(t, NewRateLimiter(0, 5, nil))

	var rl *RateLimiter
	assert.True(t, rl.Allow("anything"))
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	assert.Equal(t, "10.0.0.1", realIP(req, false))
	assert.Equal(t, "203.0.113.9", realIP(req, true))

	req.Header.Set("X-Forwarded-For", "not-an-ip")
	assert.Equal(t, "10.0.0.1", realIP(req, true))
}

func TestDecodeBody(t *testing.T) {
	var dst struct {
		Identifier string `json:"identifier"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "Valid", body: `{"identifier":"+919999999999"}`},
		{name: "UnknownField", body: `{"identifier":"x","code":"1"}`, wantErr: true},
		{name: "TrailingDocument", body: `{"identifier":"x"}{}`, wantErr: true},
		{name: "Malformed", body: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))}

			err := req.DecodeBody(&dst)

			if tt.wantErr {
				var gerr *goerror.Error
				require.ErrorAs(t, err, &gerr)
				assert.Equal(t, goerror.CodeInvalidFormat, gerr.Code())
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMaskData(t *testing.T) {
	keys := buildMaskKeys(nil)

	got := maskData(map[string]any{
		"identifier": "+919999999999",
		"code":       "123456",
		"nested":     []any{map[string]any{"Password": "x"}},
	}, keys)

	assert.Equal(t, map[string]any{
		"identifier": "+919999999999",
		"code":       "***",
		"nested":     []any{map[string]any{"Password": "***"}},
	}, got)
}
