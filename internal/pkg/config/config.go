package config

import (
	"io"
	"time"
)

// TimeConfig reads integer values and scales them to a duration unit.
type TimeConfig interface {
	// GetSecond returns the value for key multiplied by time.Second.
	GetSecond(key string) time.Duration

	// GetMinute returns the value for key multiplied by time.Minute.
	GetMinute(key string) time.Duration

	// GetHour returns the value for key multiplied by time.Hour.
	GetHour(key string) time.Duration
}

// NumberConfig reads numeric values. Missing or malformed keys yield zero.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetFloat64(key string) float64
}

// Config is the read-only view of the application configuration.
//
// Implementations must be safe for concurrent use because values can be
// reloaded while requests are being served.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	// GetBool returns the value for key as a bool.
	GetBool(key string) bool

	// GetString returns the value for key as a string.
	GetString(key string) string

	// GetBinary returns the base64-decoded value for key, or nil if it is not valid base64.
	GetBinary(key string) []byte

	// GetArray returns the value for key split on commas with blanks removed.
	// Native YAML lists are accepted as well.
	GetArray(key string) []string

	// GetMap returns the value for key parsed from "k1:v1,k2:v2".
	GetMap(key string) map[string]string
}
