package inbound

import (
	"context"

	"github.com/shandysiswandi/gomarket/internal/identity/entity"
	"github.com/shandysiswandi/gomarket/internal/identity/usecase"
	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
	"github.com/shandysiswandi/gomarket/internal/pkg/router"
	"github.com/shandysiswandi/gomarket/internal/pkg/session"
)

type uc interface {
	OTPRequest(ctx context.Context, in usecase.OTPRequestInput) (*usecase.OTPRequestOutput, error)
	OTPVerify(ctx context.Context, in usecase.OTPVerifyInput) (*usecase.SessionOutput, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.SessionOutput, error)
	Logout(ctx context.Context, in usecase.LogoutInput) (*usecase.LogoutOutput, error)
	Session(ctx context.Context) (*usecase.SessionInfo, error)

	UserList(ctx context.Context, in usecase.UserListInput) (*usecase.UserListOutput, error)
	UserUpdateStatus(ctx context.Context, in usecase.UserUpdateStatusInput) error
	UserUpdateRole(ctx context.Context, in usecase.UserUpdateRoleInput) error
}

// HTTPConfig carries what the endpoints need besides the usecase.
type HTTPConfig struct {
	Cookie *session.Cookie
	Clock  clock.Clocker
	// OTPLimiter guards code issuance and verification per client IP.
	OTPLimiter *router.RateLimiter
	// LoginLimiter guards password login per client IP.
	LoginLimiter *router.RateLimiter
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, cfg HTTPConfig) {
	end := &HTTPEndpoint{uc: uc, cookie: cfg.Cookie, clock: cfg.Clock}

	adminOnly := router.RequireRoles(entity.RoleAdmin.String())

	// One-time codes
	r.POST("/api/v1/identity/otp/request", end.OTPRequest, router.RateLimit(cfg.OTPLimiter))
	r.POST("/api/v1/identity/otp/verify", end.OTPVerify, router.RateLimit(cfg.OTPLimiter))

	// Sessions
	r.POST("/api/v1/identity/login", end.Login, router.RateLimit(cfg.LoginLimiter))
	r.POST("/api/v1/identity/logout", end.Logout)
	r.GET("/api/v1/identity/session", end.Session) // need authenticated

	// User Directory (need authenticated & admin)
	r.GET("/api/v1/admin/users", end.UserList, adminOnly)
	r.PATCH("/api/v1/admin/users/:id/status", end.UserUpdateStatus, adminOnly)
	r.PATCH("/api/v1/admin/users/:id/role", end.UserUpdateRole, adminOnly)
}
