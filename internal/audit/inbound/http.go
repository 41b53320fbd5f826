package inbound

import (
	"github.com/shandysiswandi/gomarket/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Authentication trail (need authenticated & admin)
	r.GET("/api/v1/admin/audit-logs", end.LogList, router.RequireRoles("ADMIN"))
}
