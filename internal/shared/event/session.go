package event

import "time"

const SessionStartedDestination string = "identity.session.started"
const SessionStartedConsumerAudit string = "identity.session.started.audit"

// SessionStartedMessage is published when a session credential is minted.
// Method is "otp" or "password".
type SessionStartedMessage struct {
	UserID     int64     `json:"user_id,string"`
	Identifier string    `json:"identifier"`
	Role       string    `json:"role"`
	Method     string    `json:"method"`
	NewUser    bool      `json:"new_user,omitempty"`
	IP         string    `json:"ip,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
