package entity

import "time"

// Event names the authentication step an audit entry records.
type Event string

const (
	EventOTPIssued       Event = "otp.issued"
	EventOTPVerification Event = "otp.verification"
	EventSessionStarted  Event = "session.started"
)

// Events lists every audit event, used to register the "audit_event" validation tag.
func Events() []string {
	return []string{string(EventOTPIssued), string(EventOTPVerification), string(EventSessionStarted)}
}

func (e Event) String() string { return string(e) }

// Log is one row of the authentication trail. Identifier is stored as
// published, already masked. Outcome holds the verification outcome or, for
// session.started, the sign-in method.
type Log struct {
	ID         int64
	Event      Event
	Identifier string
	Channel    string
	Outcome    string
	UserID     int64
	IP         string
	OccurredAt time.Time
	CreatedAt  time.Time
}

type LogFilter struct {
	Event   Event
	Outcome string
	UserID  int64
	Limit   int32
	Offset  int32
}
