package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/gomarket/internal/identity/entity"
	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
)

func (s *DB) UpdateUserStatus(ctx context.Context, id int64, status entity.UserStatus) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserStatus")
	defer func() { s.endSpan(span, err) }()

	return s.exec1(ctx, `UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1`, id, status.String())
}

func (s *DB) UpdateUserRole(ctx context.Context, id int64, role entity.Role) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserRole")
	defer func() { s.endSpan(span, err) }()

	return s.exec1(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role.String())
}

func (s *DB) UpdateUserLastLogin(ctx context.Context, id int64, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserLastLogin")
	defer func() { s.endSpan(span, err) }()

	return s.exec1(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
}

// exec1 runs a statement that must touch exactly one row.
func (s *DB) exec1(ctx context.Context, sql string, args ...any) error {
	tag, err := s.conn.Exec(ctx, sql, args...)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
