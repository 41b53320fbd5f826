package inbound

import (
	"context"

	"github.com/shandysiswandi/gomarket/internal/audit/usecase"
)

type ucConsumer interface {
	ConsumeOTPIssued(ctx context.Context, in usecase.ConsumeOTPIssuedInput) error
	ConsumeOTPVerification(ctx context.Context, in usecase.ConsumeOTPVerificationInput) error
	ConsumeSessionStarted(ctx context.Context, in usecase.ConsumeSessionStartedInput) error
}

type uc interface {
	ucConsumer

	LogList(ctx context.Context, in usecase.LogListInput) (*usecase.LogListOutput, error)
}
