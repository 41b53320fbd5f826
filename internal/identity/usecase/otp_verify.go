package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/gomarket/internal/identity/entity"
	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
	"github.com/shandysiswandi/gomarket/internal/pkg/otp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type OTPVerifyInput struct {
	Identifier string `validate:"required,identifier"`
	Code       string `validate:"required,numeric"`
	IP         string
}

// OTPVerify consumes the pending code for the identifier. On success the
// account is resolved (or created as a buyer) and a session is minted.
func (s *Usecase) OTPVerify(ctx context.Context, in OTPVerifyInput) (*SessionOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPVerify")
	defer span.End()

	identifier, kind := entity.NormalizeIdentifier(in.Identifier)
	in.Identifier = identifier

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if n := s.otpGenerator.Length(); len(in.Code) != n {
		return nil, goerror.NewInvalidInput(nil, "code", "code must be "+strconv.Itoa(n)+" digits")
	}

	digest, err := s.codeDigest(identifier, in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	masked := entity.MaskIdentifier(identifier)

	outcome, err := s.otpStore.Consume(ctx, identifier, digest, s.otpMaxAttempts())
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume otp code", "identifier", masked, "error", err)
		return nil, goerror.NewServer(err)
	}

	if s.otpVerified != nil {
		s.otpVerified.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome.String())))
	}

	if outcome != otp.OutcomeVerified {
		s.publishVerification(ctx, masked, outcome, 0, in.IP)
		slog.WarnContext(ctx, "otp verification rejected", "identifier", masked, "outcome", outcome.String())
		return nil, outcomeError(outcome)
	}

	user, created, err := s.resolveUser(ctx, identifier, kind)
	if err != nil {
		return nil, err
	}

	s.publishVerification(ctx, masked, outcome, user.ID, in.IP)

	if err := s.ensureUserStatusAllowed(ctx, user); err != nil {
		return nil, err
	}

	return s.startSession(ctx, user, "otp", in.IP, created)
}

func outcomeError(outcome otp.Outcome) error {
	switch outcome {
	case otp.OutcomeExpired:
		return goerror.NewBusiness("code expired, request a new one", goerror.CodeGone)
	case otp.OutcomeMismatch:
		return goerror.NewBusiness("invalid code, try again", goerror.CodeUnauthorized)
	case otp.OutcomeExhausted:
		return goerror.NewBusiness("too many attempts, request a new code", goerror.CodeTooManyRequest)
	default:
		return goerror.NewBusiness("no pending code, request a new one", goerror.CodeNotFound)
	}
}

func (s *Usecase) publishVerification(ctx context.Context, masked string, outcome otp.Outcome, userID int64, ip string) {
	if err := s.repoMessaging.PublishOTPVerification(ctx, OTPVerificationEvent{
		Identifier: masked,
		Outcome:    outcome,
		UserID:     userID,
		IP:         ip,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp verification", "identifier", masked, "error", err)
	}
}

// resolveUser finds the account owning identifier or signs one up as an
// active buyer. A concurrent sign-up for the same identifier surfaces as a
// conflict and is resolved by reading the winner's row.
func (s *Usecase) resolveUser(ctx context.Context, identifier string, kind entity.IdentifierKind) (*entity.User, bool, error) {
	lookup := s.repoDB.GetUserByEmail
	if kind == entity.IdentifierPhone {
		lookup = s.repoDB.GetUserByPhone
	}

	user, err := lookup(ctx, identifier)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by identifier", "identifier", entity.MaskIdentifier(identifier), "error", err)
		return nil, false, goerror.NewServer(err)
	}

	now := s.clock.Now()
	newUser := entity.User{
		ID:        s.uid.Generate(),
		Role:      entity.RoleBuyer,
		Status:    entity.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if kind == entity.IdentifierPhone {
		newUser.Phone = identifier
	} else {
		newUser.Email = identifier
	}

	err = s.repoDB.CreateUser(ctx, newUser)
	if errors.Is(err, goerror.ErrConflict) {
		user, err = lookup(ctx, identifier)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get user after sign-up conflict", "error", err)
			return nil, false, goerror.NewServer(err)
		}
		return user, false, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "error", err)
		return nil, false, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "user signed up with otp", "user_id", newUser.ID, "role", newUser.Role)

	return &newUser, true, nil
}
