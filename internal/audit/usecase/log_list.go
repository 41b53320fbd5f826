package usecase

import (
	"context"
	"log/slog"
	"math"

	"github.com/shandysiswandi/gomarket/internal/audit/entity"
	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
)

type LogListInput struct {
	Event   string `validate:"omitempty,audit_event"`
	Outcome string `validate:"omitempty,max=32"`
	UserID  int64  `validate:"gte=0"`
	Page    int32
	Size    int32
}

type LogListOutput struct {
	Page  int32
	Size  int32
	Total int64
	Logs  []entity.Log
}

func (s *Usecase) LogList(ctx context.Context, in LogListInput) (*LogListOutput, error) {
	ctx, span := s.startSpan(ctx, "LogList")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Size <= 0 || in.Size > 100 {
		in.Size = 20 // default limit
	}
	// keeps (page-1)*size inside int32
	page := min(max(in.Page, 1), math.MaxInt32/in.Size)

	logs, total, err := s.repoDB.GetLogList(ctx, entity.LogFilter{
		Event:   entity.Event(in.Event),
		Outcome: in.Outcome,
		UserID:  in.UserID,
		Limit:   in.Size,
		Offset:  (page - 1) * in.Size,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list audit logs", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LogListOutput{
		Page:  page,
		Size:  in.Size,
		Total: total,
		Logs:  logs,
	}, nil
}
