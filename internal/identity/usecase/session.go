package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/gomarket/internal/identity/entity"
	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
	"github.com/shandysiswandi/gomarket/internal/pkg/jwt"
)

type SessionInfo struct {
	UserID    int64
	Role      entity.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Session reports the claims the router verified for this request.
func (s *Usecase) Session(ctx context.Context) (*SessionInfo, error) {
	_, span := s.startSpan(ctx, "Session")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	info := &SessionInfo{
		UserID: clm.UserID,
		Role:   entity.Role(clm.Role),
	}
	if clm.IssuedAt != nil {
		info.IssuedAt = clm.IssuedAt.Time
	}
	if clm.ExpiresAt != nil {
		info.ExpiresAt = clm.ExpiresAt.Time
	}

	return info, nil
}
