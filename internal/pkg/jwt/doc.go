// Package jwt mints and verifies the signed session credential.
//
// Tokens are HS512 signed and carry the registered claims plus the subject's
// role. The verifier enforces signature, issuer, audience and expiry; callers
// only learn that a token was rejected, never which check failed.
package jwt
