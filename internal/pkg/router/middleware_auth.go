package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shandysiswandi/gomarket/internal/pkg/jwt"
)

// msgUnauthenticated is shared by every authentication failure so a caller
// cannot tell a missing token from a forged or expired one.
const msgUnauthenticated = "Authentication required"

func middlewareAuthentication(verifier jwt.JWT, cookieName string, publicEndpoints map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, ok := publicEndpoints[r.Method]; ok {
				if _, skip := s[matchedRoutePath(r)]; skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			token := SessionToken(r, cookieName)
			if token == "" || verifier == nil {
				writeJSON(w, errorResponse{Message: msgUnauthenticated}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				slog.DebugContext(r.Context(), "session rejected", "error", err)
				writeJSON(w, errorResponse{Message: msgUnauthenticated}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}

// SessionToken returns the session cookie value, falling back to a bearer token.
func SessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}

	p := strings.Fields(r.Header.Get("Authorization"))
	if len(p) == 2 && strings.EqualFold(p[0], "Bearer") {
		return p[1]
	}

	return ""
}
