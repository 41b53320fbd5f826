// Package hash provides helpers for hashing and verifying secrets.
//
// Passwords go through Bcrypt (slow, salted, peppered). One-time codes go
// through HMACSHA256 so the store only ever holds a keyed digest of the code.
package hash
