// Package otp holds pending one-time codes keyed by identifier.
//
// A Store keeps at most one pending code per identifier. Put replaces any
// previous code, and Consume is the single atomic verification step: it
// checks expiry, compares the code and deletes the entry on success, so a
// code can be verified at most once even under concurrent callers.
//
// Expiry is a logical predicate evaluated on every read. Sweep only reclaims
// memory and is never required for correctness.
//
// MemoryStore is process-local. Deployments running more than one instance
// must use RedisStore so every instance observes the same entries.
package otp
