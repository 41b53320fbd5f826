// Package uid generates identifiers: snowflake numbers for database rows and
// UUID v7 strings for token and correlation ids.
package uid

// NumberID generates unique, roughly time-ordered int64 ids.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string ids.
type StringID interface {
	Generate() string
}
