package router

import (
	"net/http"

	"github.com/shandysiswandi/gomarket/internal/pkg/config"
)

// middlewareMaintenance answers 503 for the route patterns listed in
// app.maintenance.endpoints, or for every route except /health when
// app.maintenance.enabled is set. Both keys are read per request so a
// config reload takes effect without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			if route != "/health" && underMaintenance(cfg, route) {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func underMaintenance(cfg config.Config, route string) bool {
	if cfg.GetBool("app.maintenance.enabled") {
		return true
	}
	for _, endpoint := range cfg.GetArray("app.maintenance.endpoints") {
		if endpoint == route {
			return true
		}
	}
	return false
}
