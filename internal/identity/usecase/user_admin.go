package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/shandysiswandi/gomarket/internal/identity/entity"
	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
	"github.com/shandysiswandi/gomarket/internal/pkg/jwt"
)

type UserListInput struct {
	Role   string `validate:"omitempty,role"`
	Status string `validate:"omitempty,user_status"`
	Page   int32
	Size   int32
}

type UserListOutput struct {
	Page  int32
	Size  int32
	Total int64
	Users []entity.User
}

func (s *Usecase) UserList(ctx context.Context, in UserListInput) (*UserListOutput, error) {
	ctx, span := s.startSpan(ctx, "UserList")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Size <= 0 || in.Size > 100 {
		in.Size = 10 // default limit
	}
	// keeps (page-1)*size inside int32
	page := min(max(in.Page, 1), math.MaxInt32/in.Size)

	users, count, err := s.repoDB.GetUserList(ctx, entity.UserListFilter{
		Role:   entity.Role(in.Role),
		Status: entity.UserStatus(in.Status),
		Limit:  in.Size,
		Offset: (page - 1) * in.Size,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list users", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &UserListOutput{
		Page:  page,
		Size:  in.Size,
		Total: count,
		Users: users,
	}, nil
}

type UserUpdateStatusInput struct {
	ID     int64  `validate:"required,gt=0"`
	Status string `validate:"required,user_status"`
}

// UserUpdateStatus bans, deactivates or reactivates an account. Tokens
// already issued stay valid until they expire; new sign-ins are refused.
func (s *Usecase) UserUpdateStatus(ctx context.Context, in UserUpdateStatusInput) error {
	ctx, span := s.startSpan(ctx, "UserUpdateStatus")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.ensureNotSelf(ctx, in.ID); err != nil {
		return err
	}

	err := s.repoDB.UpdateUserStatus(ctx, in.ID, entity.UserStatus(in.Status))
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update user status", "user_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "user status updated", "user_id", in.ID, "status", in.Status)

	return nil
}

type UserUpdateRoleInput struct {
	ID   int64  `validate:"required,gt=0"`
	Role string `validate:"required,role"`
}

// UserUpdateRole changes an account's role. The change shows in the next
// session the user starts.
func (s *Usecase) UserUpdateRole(ctx context.Context, in UserUpdateRoleInput) error {
	ctx, span := s.startSpan(ctx, "UserUpdateRole")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.ensureNotSelf(ctx, in.ID); err != nil {
		return err
	}

	err := s.repoDB.UpdateUserRole(ctx, in.ID, entity.Role(in.Role))
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("user not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update user role", "user_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "user role updated", "user_id", in.ID, "role", in.Role)

	return nil
}

// ensureNotSelf stops an admin from locking themselves out.
func (s *Usecase) ensureNotSelf(ctx context.Context, targetID int64) error {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}
	if clm.UserID == targetID {
		slog.WarnContext(ctx, "admin attempted to change own account", "user_id", targetID)
		return goerror.NewBusiness("cannot change your own account", goerror.CodeForbidden)
	}

	return nil
}
