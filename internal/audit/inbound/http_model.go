package inbound

import "time"

type AuditLog struct {
	ID         int64     `json:"id,string"`
	Event      string    `json:"event"`
	Identifier string    `json:"identifier"`
	Channel    string    `json:"channel,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	UserID     int64     `json:"user_id,omitempty,string"`
	IP         string    `json:"ip,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type LogListResponse struct {
	Logs []AuditLog `json:"logs"`

	page  int32
	size  int32
	total int64
}

func (r LogListResponse) Meta() map[string]any {
	return map[string]any{
		"page":  r.page,
		"size":  r.size,
		"total": r.total,
	}
}
