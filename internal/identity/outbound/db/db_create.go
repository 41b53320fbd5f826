package db

import (
	"context"

	"github.com/shandysiswandi/gomarket/internal/identity/entity"
)

func (s *DB) CreateUser(ctx context.Context, user entity.User) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `INSERT INTO users
		(id, email, phone, full_name, password_hash, role, status, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7, $8, $9)`,
		user.ID,
		user.Email,
		user.Phone,
		user.FullName,
		user.PasswordHash,
		user.Role.String(),
		user.Status.String(),
		user.CreatedAt,
		user.UpdatedAt,
	)

	return s.mapError(err)
}
