package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/gomarket/internal/audit/usecase"
	"github.com/shandysiswandi/gomarket/internal/pkg/instrument"
	"github.com/shandysiswandi/gomarket/internal/pkg/messaging"
	"github.com/shandysiswandi/gomarket/internal/pkg/uid"
	"github.com/shandysiswandi/gomarket/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   ucConsumer
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := messaging.HeaderValue(msg, keyOfCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// A body that does not parse is logged and acked: redelivery cannot fix it.

func (h *MQHandler) OTPIssued(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("audit.inbound.mq").Start(ctx, "OTPIssued")
	defer span.End()

	body := msg.Body()
	slog.DebugContext(ctx, "consume: otp issued", "msg_body", string(body))

	var payload event.OTPIssuedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp issued", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeOTPIssued(ctx, usecase.ConsumeOTPIssuedInput{
		Identifier: payload.Identifier,
		Channel:    payload.Channel,
		IP:         payload.IP,
		OccurredAt: payload.OccurredAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp issued", "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) OTPVerification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("audit.inbound.mq").Start(ctx, "OTPVerification")
	defer span.End()

	body := msg.Body()
	slog.DebugContext(ctx, "consume: otp verification", "msg_body", string(body))

	var payload event.OTPVerificationMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp verification", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeOTPVerification(ctx, usecase.ConsumeOTPVerificationInput{
		Identifier: payload.Identifier,
		Outcome:    payload.Outcome,
		UserID:     payload.UserID,
		IP:         payload.IP,
		OccurredAt: payload.OccurredAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp verification", "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) SessionStarted(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("audit.inbound.mq").Start(ctx, "SessionStarted")
	defer span.End()

	body := msg.Body()
	slog.DebugContext(ctx, "consume: session started", "msg_body", string(body))

	var payload event.SessionStartedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of session started", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeSessionStarted(ctx, usecase.ConsumeSessionStartedInput{
		UserID:     payload.UserID,
		Identifier: payload.Identifier,
		Method:     payload.Method,
		IP:         payload.IP,
		OccurredAt: payload.OccurredAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume session started", "error", err)
		return err
	}

	return nil
}
