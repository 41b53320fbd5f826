package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
)

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	IP       string
}

// Login authenticates with email and password. Unknown email, an account
// without a password and a wrong password all return the same error.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*SessionOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	errInvalid := goerror.NewBusiness("invalid email or password", goerror.CodeUnauthorized)

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}
	found := err == nil

	// every path pays for one bcrypt compare
	hashed := s.dummyPasswordHash()
	if found && user.PasswordHash != "" {
		hashed = user.PasswordHash
	}
	match := s.bcrypt.Verify(hashed, in.Password)

	if !found {
		slog.WarnContext(ctx, "user account not found", "email", in.Email)
		return nil, errInvalid
	}
	if user.PasswordHash == "" || !match {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, errInvalid
	}

	if err := s.ensureUserStatusAllowed(ctx, user); err != nil {
		return nil, err
	}

	return s.startSession(ctx, user, "password", in.IP, false)
}

func (s *Usecase) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hashed, err := s.bcrypt.Hash("gomarket-no-such-account")
		if err != nil {
			slog.Error("failed to hash dummy password", "error", err)
			return
		}
		s.dummyHash = string(hashed)
	})

	return s.dummyHash
}
