package event

import "time"

const OTPIssuedDestination string = "identity.otp.issued"
const OTPIssuedConsumerAudit string = "identity.otp.issued.audit"

// OTPIssuedMessage never carries the code. Identifier is masked.
type OTPIssuedMessage struct {
	Identifier string    `json:"identifier"`
	Channel    string    `json:"channel"`
	IP         string    `json:"ip,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

const OTPVerificationDestination string = "identity.otp.verification"
const OTPVerificationConsumerAudit string = "identity.otp.verification.audit"

// OTPVerificationMessage is published for every verification attempt.
// Outcome is one of verified, not_found, expired, mismatch, exhausted.
type OTPVerificationMessage struct {
	Identifier string    `json:"identifier"`
	Outcome    string    `json:"outcome"`
	UserID     int64     `json:"user_id,omitempty,string"`
	IP         string    `json:"ip,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
