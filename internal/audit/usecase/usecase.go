package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gomarket/internal/audit/entity"
	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
	"github.com/shandysiswandi/gomarket/internal/pkg/instrument"
	"github.com/shandysiswandi/gomarket/internal/pkg/uid"
	"github.com/shandysiswandi/gomarket/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	CreateLog(ctx context.Context, log entity.Log) error
	GetLogList(ctx context.Context, filter entity.LogFilter) ([]entity.Log, int64, error)
}

type Usecase struct {
	repoDB    repoDB
	uid       uid.NumberID
	clock     clock.Clocker
	validator validator.Validator
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	UID        uid.NumberID
	Clock      clock.Clocker
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		uid:       dep.UID,
		clock:     dep.Clock,
		validator: dep.Validator,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("audit.usecase").Start(ctx, name)
}

// record stores one entry. A storage failure is returned so the broker can redeliver.
func (s *Usecase) record(ctx context.Context, log entity.Log) error {
	log.ID = s.uid.Generate()
	log.CreatedAt = s.clock.Now()
	if log.OccurredAt.IsZero() {
		log.OccurredAt = log.CreatedAt
	}

	if err := s.repoDB.CreateLog(ctx, log); err != nil {
		slog.ErrorContext(ctx, "failed to repo create audit log", "event", log.Event, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
