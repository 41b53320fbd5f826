package inbound

import (
	"net/http"
	"time"
)

type OTPRequestRequest struct {
	Identifier string `json:"identifier"`
	Channel    string `json:"channel"`
}

type OTPRequestResponse struct {
	Identifier         string    `json:"identifier"`
	Channel            string    `json:"channel"`
	ExpiresAt          time.Time `json:"expires_at"`
	ResendAfterSeconds int64     `json:"resend_after_seconds"`
}

func (OTPRequestResponse) Message() string {
	return "A verification code has been sent."
}

type OTPVerifyRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned when a session starts. The credential itself
// only travels in the cookie.
type SessionResponse struct {
	UserID    int64     `json:"user_id,string"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
	NewUser   bool      `json:"new_user"`

	message string
	cookie  *http.Cookie
}

func (r SessionResponse) Message() string { return r.message }

func (r SessionResponse) Cookies() []*http.Cookie { return []*http.Cookie{r.cookie} }

type LogoutResponse struct {
	cookie *http.Cookie
}

func (LogoutResponse) Message() string { return "Logged out." }

func (r LogoutResponse) Cookies() []*http.Cookie { return []*http.Cookie{r.cookie} }

type SessionInfoResponse struct {
	UserID    int64     `json:"user_id,string"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type User struct {
	ID          int64      `json:"id,string"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	FullName    string     `json:"full_name,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type UserListResponse struct {
	Users []User `json:"users"`

	page  int32
	size  int32
	total int64
}

func (r UserListResponse) Meta() map[string]any {
	return map[string]any{
		"page":  r.page,
		"size":  r.size,
		"total": r.total,
	}
}

type UserUpdateStatusRequest struct {
	Status string `json:"status"`
}

type UserUpdateRoleRequest struct {
	Role string `json:"role"`
}

type UserUpdatedResponse struct{}

func (UserUpdatedResponse) Message() string { return "User updated." }
