package router

import (
	"net"
	"net/http"
	"strings"

	"github.com/shandysiswandi/gomarket/internal/pkg/config"
)

// middlewareIP rewrites RemoteAddr to the client IP. Forwarding headers are
// honored only when app.server.trust_proxy_headers is set, otherwise any
// client could pick its own rate limit bucket.
func middlewareIP(cfg config.Config) Middleware {
	trustProxy := cfg != nil && cfg.GetBool("app.server.trust_proxy_headers")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := realIP(r, trustProxy); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func realIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		var ip string
		if tcip := r.Header.Get("True-Client-IP"); tcip != "" {
			ip = tcip
		} else if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
			ip = xrip
		} else if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			ip, _, _ = strings.Cut(xff, ",")
		}

		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	return clientIP(r)
}

// clientIP returns the IP part of RemoteAddr, which may or may not carry a port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && net.ParseIP(host) != nil {
		return host
	}
	if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}
	return ""
}
