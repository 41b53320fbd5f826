package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gomarket/internal/identity/entity"
	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type OTPRequestInput struct {
	Identifier string `validate:"required,identifier"`
	Channel    string `validate:"omitempty,oneof=sms email"`
	IP         string
}

type OTPRequestOutput struct {
	Identifier  string // masked
	Channel     entity.Channel
	ExpiresAt   time.Time
	ResendAfter time.Duration
}

// OTPRequest issues a fresh code for the identifier, replacing any pending
// one, and delivers it. It never looks at the user table, so known and
// unknown identifiers are indistinguishable to the caller.
func (s *Usecase) OTPRequest(ctx context.Context, in OTPRequestInput) (*OTPRequestOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPRequest")
	defer span.End()

	identifier, kind := entity.NormalizeIdentifier(in.Identifier)
	in.Identifier = identifier

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	channel := kind.DefaultChannel()
	if in.Channel != "" {
		channel = entity.Channel(in.Channel)
	}
	if !kind.Accepts(channel) {
		return nil, goerror.NewInvalidInput(nil, "channel", "channel cannot reach this identifier")
	}

	masked := entity.MaskIdentifier(identifier)
	window := s.otpResendCooldown()

	ok, left, err := s.cooldown.Acquire(ctx, identifier, window)
	if err != nil {
		slog.ErrorContext(ctx, "failed to acquire otp resend cooldown", "identifier", masked, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "otp requested during cooldown", "identifier", masked, "retry_after", left.String())
		return nil, goerror.NewBusiness("please wait before requesting another code", goerror.CodeTooManyRequest)
	}

	code, err := s.otpGenerator.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, s.abortIssue(ctx, identifier, goerror.NewServer(err))
	}

	digest, err := s.codeDigest(identifier, code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		return nil, s.abortIssue(ctx, identifier, goerror.NewServer(err))
	}

	ttl := s.otpTTL()
	pending, err := s.otpStore.Put(ctx, identifier, digest, ttl)
	if err != nil {
		slog.ErrorContext(ctx, "failed to store otp code", "identifier", masked, "error", err)
		return nil, s.abortIssue(ctx, identifier, goerror.NewServer(err))
	}

	// The pending entry stays on delivery failure; the user can ask for a
	// new code once the cooldown is released.
	if err := s.repoDelivery.SendCode(ctx, CodeDelivery{
		Channel: channel,
		To:      identifier,
		Code:    code,
		TTL:     ttl,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp code", "identifier", masked, "channel", channel, "error", err)
		return nil, s.abortIssue(ctx, identifier,
			goerror.NewBusinessWrap(err, "could not deliver the code, try again later", goerror.CodeUnavailable))
	}

	if s.otpIssued != nil {
		s.otpIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", channel.String())))
	}

	if err := s.repoMessaging.PublishOTPIssued(ctx, OTPIssuedEvent{
		Identifier: masked,
		Channel:    channel,
		IP:         in.IP,
		ExpiresAt:  pending.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp issued", "identifier", masked, "error", err)
	}

	slog.InfoContext(ctx, "otp issued", "identifier", masked, "channel", channel, "expires_at", pending.ExpiresAt)

	return &OTPRequestOutput{
		Identifier:  masked,
		Channel:     channel,
		ExpiresAt:   pending.ExpiresAt,
		ResendAfter: window,
	}, nil
}

// abortIssue releases the resend cooldown so a failed issue does not lock
// the user out, then returns err.
func (s *Usecase) abortIssue(ctx context.Context, identifier string, err error) error {
	if rerr := s.cooldown.Release(ctx, identifier); rerr != nil {
		slog.WarnContext(ctx, "failed to release otp resend cooldown", "identifier", entity.MaskIdentifier(identifier), "error", rerr)
	}
	return err
}
