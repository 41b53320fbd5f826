package entity

import "time"

type User struct {
	ID           int64
	Email        string
	Phone        string
	FullName     string
	PasswordHash string
	Role         Role
	Status       UserStatus
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identifier returns the email when present, otherwise the phone number.
func (u User) Identifier() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Phone
}

type UserListFilter struct {
	Role   Role
	Status UserStatus
	Limit  int32
	Offset int32
}
