package inbound

import (
	"github.com/shandysiswandi/gomarket/internal/identity/usecase"
	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
	"github.com/shandysiswandi/gomarket/internal/pkg/router"
	"github.com/shandysiswandi/gomarket/internal/pkg/session"
)

// HTTPEndpoint exposes HTTP handlers for one-time codes, sessions and user moderation.
type HTTPEndpoint struct {
	uc     uc
	cookie *session.Cookie
	clock  clock.Clocker
}

// OTPRequest issues a one-time code to an email address or phone number.
// @Summary Request a one-time code
// @Description Generates a code, stores its digest and delivers it over SMS or email. Any pending code is replaced.
// @Tags Identity, OTP
// @Accept json
// @Produce json
// @Param request body OTPRequestRequest true "Code request payload"
// @Success 200 {object} router.successResponse{data=OTPRequestResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Resend cooldown or rate limit"
// @Failure 503 {object} router.errorResponse "Delivery failed"
// @Router /api/v1/identity/otp/request [post]
func (h *HTTPEndpoint) OTPRequest(r *router.Request) (any, error) {
	var req OTPRequestRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.OTPRequest(r.Context(), usecase.OTPRequestInput{
		Identifier: req.Identifier,
		Channel:    req.Channel,
		IP:         r.ClientIP(),
	})
	if err != nil {
		return nil, err
	}

	return OTPRequestResponse{
		Identifier:         resp.Identifier,
		Channel:            resp.Channel.String(),
		ExpiresAt:          resp.ExpiresAt,
		ResendAfterSeconds: int64(resp.ResendAfter.Seconds()),
	}, nil
}

// OTPVerify checks a one-time code and starts a session.
// @Summary Verify a one-time code
// @Description Consumes the pending code. On success the session cookie is set; unknown identifiers are signed up as buyers.
// @Tags Identity, OTP
// @Accept json
// @Produce json
// @Param request body OTPVerifyRequest true "Code verification payload"
// @Success 200 {object} router.successResponse{data=SessionResponse} "Session started"
// @Failure 401 {object} router.errorResponse "Invalid code"
// @Failure 403 {object} router.errorResponse "Account banned or inactive"
// @Failure 404 {object} router.errorResponse "No pending code"
// @Failure 410 {object} router.errorResponse "Code expired"
// @Failure 429 {object} router.errorResponse "Too many attempts"
// @Router /api/v1/identity/otp/verify [post]
func (h *HTTPEndpoint) OTPVerify(r *router.Request) (any, error) {
	var req OTPVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.OTPVerify(r.Context(), usecase.OTPVerifyInput{
		Identifier: req.Identifier,
		Code:       req.Code,
		IP:         r.ClientIP(),
	})
	if err != nil {
		return nil, err
	}

	return h.sessionResponse(resp, "Code verified."), nil
}

// Login authenticates with email and password and starts a session.
// @Summary Authenticate user
// @Description Validates credentials and sets the session cookie.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=SessionResponse} "Session started"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 403 {object} router.errorResponse "Account banned or inactive"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/identity/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       r.ClientIP(),
	})
	if err != nil {
		return nil, err
	}

	return h.sessionResponse(resp, "Logged in."), nil
}

// Logout clears the session cookie.
// @Summary Logout
// @Tags Identity, Authentication
// @Produce json
// @Success 200 {object} router.successResponse "Logged out"
// @Router /api/v1/identity/logout [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	if _, err := h.uc.Logout(r.Context(), usecase.LogoutInput{Token: router.SessionToken(r.Request, h.cookie.Name())}); err != nil {
		return nil, err
	}

	return LogoutResponse{cookie: h.cookie.Clear()}, nil
}

// Session returns the claims of the current session.
// @Summary Current session
// @Tags Identity, Authentication
// @Produce json
// @Success 200 {object} router.successResponse{data=SessionInfoResponse} "Session claims"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Router /api/v1/identity/session [get]
func (h *HTTPEndpoint) Session(r *router.Request) (any, error) {
	resp, err := h.uc.Session(r.Context())
	if err != nil {
		return nil, err
	}

	return SessionInfoResponse{
		UserID:    resp.UserID,
		Role:      resp.Role.String(),
		IssuedAt:  resp.IssuedAt,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// UserList lists accounts for moderation.
// @Summary List users
// @Tags Admin, Users
// @Produce json
// @Param role query string false "BUYER, SELLER or ADMIN"
// @Param status query string false "active, banned or inactive"
// @Param page query int false "Page number, from 1"
// @Param size query int false "Page size, max 100"
// @Success 200 {object} router.successResponse{data=UserListResponse} "Users"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Access forbidden"
// @Router /api/v1/admin/users [get]
func (h *HTTPEndpoint) UserList(r *router.Request) (any, error) {
	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.UserList(r.Context(), usecase.UserListInput{
		Role:   r.GetQuery("role"),
		Status: r.GetQuery("status"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(resp.Users))
	for _, u := range resp.Users {
		users = append(users, User{
			ID:          u.ID,
			Email:       u.Email,
			Phone:       u.Phone,
			FullName:    u.FullName,
			Role:        u.Role.String(),
			Status:      u.Status.String(),
			LastLoginAt: u.LastLoginAt,
			CreatedAt:   u.CreatedAt,
		})
	}

	return UserListResponse{
		Users: users,
		page:  resp.Page,
		size:  resp.Size,
		total: resp.Total,
	}, nil
}

// UserUpdateStatus bans, deactivates or reactivates an account.
// @Summary Update user status
// @Tags Admin, Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body UserUpdateStatusRequest true "New status"
// @Success 200 {object} router.successResponse "User updated"
// @Failure 403 {object} router.errorResponse "Access forbidden"
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /api/v1/admin/users/{id}/status [patch]
func (h *HTTPEndpoint) UserUpdateStatus(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req UserUpdateStatusRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.UserUpdateStatus(r.Context(), usecase.UserUpdateStatusInput{ID: id, Status: req.Status}); err != nil {
		return nil, err
	}

	return UserUpdatedResponse{}, nil
}

// UserUpdateRole changes an account's role.
// @Summary Update user role
// @Tags Admin, Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body UserUpdateRoleRequest true "New role"
// @Success 200 {object} router.successResponse "User updated"
// @Failure 403 {object} router.errorResponse "Access forbidden"
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /api/v1/admin/users/{id}/role [patch]
func (h *HTTPEndpoint) UserUpdateRole(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req UserUpdateRoleRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.UserUpdateRole(r.Context(), usecase.UserUpdateRoleInput{ID: id, Role: req.Role}); err != nil {
		return nil, err
	}

	return UserUpdatedResponse{}, nil
}

func (h *HTTPEndpoint) sessionResponse(out *usecase.SessionOutput, msg string) SessionResponse {
	return SessionResponse{
		UserID:    out.UserID,
		Role:      out.Role.String(),
		ExpiresAt: out.ExpiresAt,
		NewUser:   out.NewUser,
		message:   msg,
		cookie:    h.cookie.Issue(out.Token, h.clock.Now(), out.ExpiresAt),
	}
}
