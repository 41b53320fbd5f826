package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gomarket/internal/identity/entity"
	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
)

type BootstrapAdminInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
}

// BootstrapAdmin makes sure an administrator account exists for email.
// An existing account is left untouched.
func (s *Usecase) BootstrapAdmin(ctx context.Context, in BootstrapAdminInput) error {
	ctx, span := s.startSpan(ctx, "BootstrapAdmin")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	_, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if err == nil {
		slog.InfoContext(ctx, "bootstrap admin already exists", "email", in.Email)
		return nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	passHash, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	now := s.clock.Now()
	user := entity.User{
		ID:           s.uid.Generate(),
		Email:        in.Email,
		FullName:     "Administrator",
		PasswordHash: string(passHash),
		Role:         entity.RoleAdmin,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.repoDB.CreateUser(ctx, user)
	if errors.Is(err, goerror.ErrConflict) {
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create bootstrap admin", "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "bootstrap admin created", "user_id", user.ID, "email", in.Email)

	return nil
}
