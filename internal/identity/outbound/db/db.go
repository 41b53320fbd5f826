package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/gomarket/internal/identity/entity"
	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
	"github.com/shandysiswandi/gomarket/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// userColumns is the select list scanned by scanUser.
const userColumns = `id, COALESCE(email, ''), COALESCE(phone, ''), full_name, password_hash,
	role, status, last_login_at, created_at, updated_at`

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{
		conn: conn,
		ins:  ins,
	}
}

// - 23505 unique violation → goerror.ErrConflict
// - 23514 check_violation → left as is, the usecase validates first
// - 40001 serialization_failure → left as is
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	var role, status string
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Phone,
		&u.FullName,
		&u.PasswordHash,
		&role,
		&status,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	u.Status = entity.UserStatus(status)

	return &u, nil
}
