package db

import (
	"context"

	"github.com/shandysiswandi/gomarket/internal/identity/entity"
)

func (s *DB) GetUserByID(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	user, err := scanUser(s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, s.mapError(err)
	}

	return user, nil
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	user, err := scanUser(s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, s.mapError(err)
	}

	return user, nil
}

func (s *DB) GetUserByPhone(ctx context.Context, phone string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByPhone")
	defer func() { s.endSpan(span, err) }()

	user, err := scanUser(s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
	if err != nil {
		return nil, s.mapError(err)
	}

	return user, nil
}

// GetUserList pages through users, newest first. Empty filter fields match everything.
func (s *DB) GetUserList(ctx context.Context, filter entity.UserListFilter) (_ []entity.User, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "GetUserList")
	defer func() { s.endSpan(span, err) }()

	const where = `WHERE ($1 = '' OR role = $1) AND ($2 = '' OR status = $2)`

	var total int64
	if err = s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM users `+where,
		filter.Role.String(), filter.Status.String(),
	).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	rows, err := s.conn.Query(ctx, `SELECT `+userColumns+` FROM users `+where+`
		ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`,
		filter.Role.String(), filter.Status.String(), filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	users := make([]entity.User, 0, filter.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, s.mapError(err)
		}
		users = append(users, *user)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, s.mapError(err)
	}

	return users, total, nil
}
