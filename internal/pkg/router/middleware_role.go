package router

import (
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/gomarket/internal/pkg/jwt"
)

// RequireRoles allows the request through only when the verified session
// carries one of roles. It must run after authentication.
func RequireRoles(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clm := jwt.GetAuth(r.Context())
			if clm == nil {
				writeJSON(w, errorResponse{Message: msgUnauthenticated}, http.StatusUnauthorized)
				return
			}

			if !clm.HasRole(roles...) {
				slog.WarnContext(r.Context(), "role not allowed", "user_id", clm.UserID, "role", clm.Role, "path", matchedRoutePath(r))
				writeJSON(w, errorResponse{Message: "Access forbidden"}, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
