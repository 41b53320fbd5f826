package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/gomarket/internal/pkg/config"
	"github.com/shandysiswandi/gomarket/internal/pkg/goroutine"
	"github.com/shandysiswandi/gomarket/internal/pkg/instrument"
	"github.com/shandysiswandi/gomarket/internal/pkg/messaging"
	"github.com/shandysiswandi/gomarket/internal/pkg/uid"
	"github.com/shandysiswandi/gomarket/internal/shared/event"
)

// RegisterMQConsumer starts one goroutine per consumer listed in
// modules.audit.consumer_names. An empty list starts none.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc ucConsumer,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.audit.consumer_names")
	concurrency := max(cfg.GetInt("modules.audit.consumer_concurrency"), 1)

	var consumers = []struct {
		name    string // also the queue group, so replicas share the work
		subject string // destination where publisher sent message
		handler messaging.Handler
	}{
		{
			name:    event.OTPIssuedConsumerAudit,
			subject: event.OTPIssuedDestination,
			handler: mqHandler.OTPIssued,
		},
		{
			name:    event.OTPVerificationConsumerAudit,
			subject: event.OTPVerificationDestination,
			handler: mqHandler.OTPVerification,
		},
		{
			name:    event.SessionStartedConsumerAudit,
			subject: event.SessionStartedDestination,
			handler: mqHandler.SessionStarted,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.subject,
					consumer.handler,
					messaging.WithQueueGroup(consumer.name),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(concurrency),
				)
			})
		}
	}
}
