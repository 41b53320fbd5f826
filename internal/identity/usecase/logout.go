package usecase

import (
	"context"
	"log/slog"
)

type LogoutInput struct {
	Token string
}

type LogoutOutput struct {
	// UserID is zero when the request carried no valid session.
	UserID int64
}

// Logout ends the caller's session on this device. Sessions are stateless
// tokens, so the transport clears the cookie and the token simply expires.
// The route is public: a missing or invalid token still logs out.
func (s *Usecase) Logout(ctx context.Context, in LogoutInput) (*LogoutOutput, error) {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	if in.Token == "" {
		return &LogoutOutput{}, nil
	}

	clm, err := s.jwt.Verify(in.Token)
	if err != nil {
		slog.DebugContext(ctx, "logout with unusable session token", "error", err)
		return &LogoutOutput{}, nil
	}

	slog.InfoContext(ctx, "user logged out", "user_id", clm.UserID)

	return &LogoutOutput{UserID: clm.UserID}, nil
}
