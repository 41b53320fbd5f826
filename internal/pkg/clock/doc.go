// Package clock provides a tiny time abstraction.
//
// Production code depends on the Clocker interface instead of calling
// time.Now() directly. Expiry checks (one-time codes, session tokens) read the
// clock through it, and tests drive them with a Manual clock.
package clock
