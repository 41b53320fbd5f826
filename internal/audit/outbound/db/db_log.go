package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/gomarket/internal/audit/entity"
)

func (s *DB) CreateLog(ctx context.Context, log entity.Log) (err error) {
	ctx, span := s.startSpan(ctx, "CreateLog")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `INSERT INTO auth_audit_logs
		(id, event, identifier, channel, outcome, user_id, ip, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6::BIGINT, 0), $7, $8, $9)`,
		log.ID,
		log.Event.String(),
		log.Identifier,
		log.Channel,
		log.Outcome,
		log.UserID,
		log.IP,
		log.OccurredAt,
		log.CreatedAt,
	)

	return s.mapError(err)
}

// GetLogList pages through the trail, most recent first. Zero filter fields match everything.
func (s *DB) GetLogList(ctx context.Context, filter entity.LogFilter) (_ []entity.Log, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "GetLogList")
	defer func() { s.endSpan(span, err) }()

	const where = `WHERE ($1 = '' OR event = $1) AND ($2 = '' OR outcome = $2) AND ($3::BIGINT = 0 OR user_id = $3)`
	args := []any{filter.Event.String(), filter.Outcome, filter.UserID}

	var total int64
	if err = s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM auth_audit_logs `+where, args...).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	rows, err := s.conn.Query(ctx, `SELECT id, event, identifier, channel, outcome,
		COALESCE(user_id, 0), ip, occurred_at, created_at
		FROM auth_audit_logs `+where+`
		ORDER BY occurred_at DESC, id DESC LIMIT $4 OFFSET $5`,
		append(args, filter.Limit, filter.Offset)...,
	)
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Log, error) {
		var l entity.Log
		var event string
		err := row.Scan(&l.ID, &event, &l.Identifier, &l.Channel, &l.Outcome,
			&l.UserID, &l.IP, &l.OccurredAt, &l.CreatedAt)
		l.Event = entity.Event(event)
		return l, err
	})
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	return logs, total, nil
}
