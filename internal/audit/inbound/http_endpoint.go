package inbound

import (
	"strconv"

	"github.com/shandysiswandi/gomarket/internal/audit/usecase"
	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
	"github.com/shandysiswandi/gomarket/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// LogList pages through the authentication trail.
// @Summary List audit logs
// @Tags Admin, Audit
// @Produce json
// @Param event query string false "otp.issued, otp.verification or session.started"
// @Param outcome query string false "Verification outcome or sign-in method"
// @Param user_id query string false "User ID"
// @Param page query int false "Page number, from 1"
// @Param size query int false "Page size, max 100"
// @Success 200 {object} router.successResponse{data=LogListResponse} "Audit logs"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Access forbidden"
// @Router /api/v1/admin/audit-logs [get]
func (h *HTTPEndpoint) LogList(r *router.Request) (any, error) {
	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	var userID int64
	if raw := r.GetQuery("user_id"); raw != "" {
		userID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, goerror.NewInvalidFormat("query user_id must be an integer")
		}
	}

	resp, err := h.uc.LogList(r.Context(), usecase.LogListInput{
		Event:   r.GetQuery("event"),
		Outcome: r.GetQuery("outcome"),
		UserID:  userID,
		Page:    page,
		Size:    size,
	})
	if err != nil {
		return nil, err
	}

	logs := make([]AuditLog, 0, len(resp.Logs))
	for _, l := range resp.Logs {
		logs = append(logs, AuditLog{
			ID:         l.ID,
			Event:      l.Event.String(),
			Identifier: l.Identifier,
			Channel:    l.Channel,
			Outcome:    l.Outcome,
			UserID:     l.UserID,
			IP:         l.IP,
			OccurredAt: l.OccurredAt,
		})
	}

	return LogListResponse{
		Logs:  logs,
		page:  resp.Page,
		size:  resp.Size,
		total: resp.Total,
	}, nil
}
