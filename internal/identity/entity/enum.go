package entity

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrUserStatusBanned   = errors.New("identity: user status is banned")
	ErrUserStatusInactive = errors.New("identity: user status is inactive")
	ErrUserStatusUnknown  = errors.New("identity: user status is unknown")
)

// Role is the coarse permission level carried in a session.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// Roles lists every valid role, used to register the "role" validation tag.
func Roles() []string {
	return []string{string(RoleBuyer), string(RoleSeller), string(RoleAdmin)}
}

func (r Role) String() string { return string(r) }

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}

// UserStatus controls whether an account may sign in.
type UserStatus string

const (
	// UserStatusActive mean user is allowed to use the app.
	UserStatusActive UserStatus = "active"

	// UserStatusBanned mean user is blocked from using the app (policy/abuse/etc).
	UserStatusBanned UserStatus = "banned"

	// UserStatusInactive mean user is deactivated or closed.
	UserStatusInactive UserStatus = "inactive"
)

// UserStatuses lists every valid status, used to register the "user_status" validation tag.
func UserStatuses() []string {
	return []string{string(UserStatusActive), string(UserStatusBanned), string(UserStatusInactive)}
}

func (us UserStatus) String() string { return string(us) }

// CanSignIn returns nil for active accounts and a sentinel error otherwise.
func (us UserStatus) CanSignIn() error {
	switch us {
	case UserStatusActive:
		return nil
	case UserStatusBanned:
		return ErrUserStatusBanned
	case UserStatusInactive:
		return ErrUserStatusInactive
	default:
		return ErrUserStatusUnknown
	}
}

// Channel is the medium a one-time code is delivered through.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

func (c Channel) String() string { return string(c) }

// IdentifierKind tells an email address from a phone number.
type IdentifierKind int8

const (
	IdentifierUnknown IdentifierKind = iota
	IdentifierEmail
	IdentifierPhone
)

// DefaultChannel is the channel a code for this kind of identifier goes through.
func (k IdentifierKind) DefaultChannel() Channel {
	if k == IdentifierPhone {
		return ChannelSMS
	}
	return ChannelEmail
}

// Accepts reports whether c can reach an identifier of this kind.
func (k IdentifierKind) Accepts(c Channel) bool {
	switch k {
	case IdentifierEmail:
		return c == ChannelEmail
	case IdentifierPhone:
		return c == ChannelSMS
	default:
		return false
	}
}

// NormalizeIdentifier canonicalizes an email (trimmed, lower-cased) or a
// phone number (spaces, dashes, dots and parentheses removed) and reports
// which of the two it looks like. Validation happens afterwards.
func NormalizeIdentifier(raw string) (string, IdentifierKind) {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return "", IdentifierUnknown
	case strings.Contains(s, "@"):
		return strings.ToLower(s), IdentifierEmail
	default:
		return strings.Map(func(r rune) rune {
			switch r {
			case ' ', '-', '.', '(', ')':
				return -1
			default:
				return r
			}
		}, s), IdentifierPhone
	}
}

// MaskIdentifier hides most of an identifier for logs and audit records:
// "buyer@market.example" becomes "b****@market.example" and
// "+919999999999" becomes "+91******9999".
func MaskIdentifier(identifier string) string {
	if local, domain, ok := strings.Cut(identifier, "@"); ok {
		if local == "" {
			return "@" + domain
		}
		_, size := utf8.DecodeRuneInString(local)
		return local[:size] + strings.Repeat("*", max(utf8.RuneCountInString(local)-1, 1)) + "@" + domain
	}

	const keepHead, keepTail = 3, 4
	if len(identifier) <= keepHead+keepTail {
		return strings.Repeat("*", len(identifier))
	}
	return identifier[:keepHead] + strings.Repeat("*", len(identifier)-keepHead-keepTail) + identifier[len(identifier)-keepTail:]
}
