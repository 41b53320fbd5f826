package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/gomarket/internal/identity/usecase"
	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
	"github.com/shandysiswandi/gomarket/internal/pkg/instrument"
	"github.com/shandysiswandi/gomarket/internal/pkg/messaging"
	"github.com/shandysiswandi/gomarket/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	clock  clock.Clocker
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, clk clock.Clocker, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, clock: clk, ins: ins}
}

func (m *Messaging) PublishOTPIssued(ctx context.Context, msg usecase.OTPIssuedEvent) error {
	return m.publish(ctx, "PublishOTPIssued", event.OTPIssuedDestination, event.OTPIssuedMessage{
		Identifier: msg.Identifier,
		Channel:    msg.Channel.String(),
		IP:         msg.IP,
		ExpiresAt:  msg.ExpiresAt,
		OccurredAt: m.clock.Now(),
	})
}

func (m *Messaging) PublishOTPVerification(ctx context.Context, msg usecase.OTPVerificationEvent) error {
	return m.publish(ctx, "PublishOTPVerification", event.OTPVerificationDestination, event.OTPVerificationMessage{
		Identifier: msg.Identifier,
		Outcome:    msg.Outcome.String(),
		UserID:     msg.UserID,
		IP:         msg.IP,
		OccurredAt: m.clock.Now(),
	})
}

func (m *Messaging) PublishSessionStarted(ctx context.Context, msg usecase.SessionStartedEvent) error {
	return m.publish(ctx, "PublishSessionStarted", event.SessionStartedDestination, event.SessionStartedMessage{
		UserID:     msg.UserID,
		Identifier: msg.Identifier,
		Role:       msg.Role.String(),
		Method:     msg.Method,
		NewUser:    msg.NewUser,
		IP:         msg.IP,
		OccurredAt: m.clock.Now(),
	})
}

func (m *Messaging) publish(ctx context.Context, name, subject string, payload any) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, name)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, subject, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
