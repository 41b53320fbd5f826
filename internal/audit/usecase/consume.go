package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gomarket/internal/audit/entity"
)

type ConsumeOTPIssuedInput struct {
	Identifier string `validate:"required"`
	Channel    string `validate:"required"`
	IP         string
	OccurredAt time.Time
}

func (s *Usecase) ConsumeOTPIssued(ctx context.Context, in ConsumeOTPIssuedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOTPIssued")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	return s.record(ctx, entity.Log{
		Event:      entity.EventOTPIssued,
		Identifier: in.Identifier,
		Channel:    in.Channel,
		IP:         in.IP,
		OccurredAt: in.OccurredAt,
	})
}

type ConsumeOTPVerificationInput struct {
	Identifier string `validate:"required"`
	Outcome    string `validate:"required"`
	UserID     int64
	IP         string
	OccurredAt time.Time
}

func (s *Usecase) ConsumeOTPVerification(ctx context.Context, in ConsumeOTPVerificationInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOTPVerification")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	return s.record(ctx, entity.Log{
		Event:      entity.EventOTPVerification,
		Identifier: in.Identifier,
		Outcome:    in.Outcome,
		UserID:     in.UserID,
		IP:         in.IP,
		OccurredAt: in.OccurredAt,
	})
}

type ConsumeSessionStartedInput struct {
	UserID     int64  `validate:"required,gt=0"`
	Identifier string `validate:"required"`
	Method     string `validate:"required"`
	IP         string
	OccurredAt time.Time
}

func (s *Usecase) ConsumeSessionStarted(ctx context.Context, in ConsumeSessionStartedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeSessionStarted")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	return s.record(ctx, entity.Log{
		Event:      entity.EventSessionStarted,
		Identifier: in.Identifier,
		Outcome:    in.Method,
		UserID:     in.UserID,
		IP:         in.IP,
		OccurredAt: in.OccurredAt,
	})
}
