package otp

import (
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
)

// FactoryOptions groups what the supported drivers need.
type FactoryOptions struct {
	// Clock is shared by every driver.
	Clock clock.Clocker
	// Redis is required by DriverRedis.
	Redis redis.UniversalClient
	// RedisOptions customize the redis driver.
	RedisOptions []RedisOption
}

// NewFromDriver constructs a Store by driver name. An empty driver selects memory.
func NewFromDriver(driver string, opts FactoryOptions) (Store, error) {
	switch strings.TrimSpace(driver) {
	case "", DriverMemory:
		return NewMemoryStore(opts.Clock), nil
	case DriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("%w: redis driver requires a client", ErrUnknownDriver)
		}
		return NewRedisStore(opts.Redis, opts.Clock, opts.RedisOptions...), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
