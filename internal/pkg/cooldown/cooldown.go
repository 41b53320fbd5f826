// Package cooldown rate-limits an action per key with a fixed quiet window,
// e.g. "one OTP per identifier every 30 seconds".
package cooldown

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmptyKey is returned when the key is blank.
var ErrEmptyKey = errors.New("cooldown: key is required")

// Cooldown grants at most one Acquire per key per window.
type Cooldown interface {
	// Acquire starts the window for key. When a window is already running it
	// returns false and the time left.
	Acquire(ctx context.Context, key string, window time.Duration) (bool, time.Duration, error)
	// Release ends the window early, e.g. when the guarded action failed.
	Release(ctx context.Context, key string) error
}

type clocker interface {
	Now() time.Time
}

// Redis keeps windows as keys with a TTL so every instance shares them.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis returns a Redis cooldown using keys "cooldown:<key>".
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client, prefix: "cooldown:"}
}

// Acquire implements Cooldown. A non-positive window always succeeds.
func (r *Redis) Acquire(ctx context.Context, key string, window time.Duration) (bool, time.Duration, error) {
	if key == "" {
		return false, 0, ErrEmptyKey
	}
	if window <= 0 {
		return true, 0, nil
	}

	fk := r.prefix + key
	acquired, err := r.client.SetNX(ctx, fk, 1, window).Result()
	if err != nil {
		return false, 0, err
	}
	if acquired {
		return true, 0, nil
	}

	left, err := r.client.PTTL(ctx, fk).Result()
	if err != nil {
		return false, 0, err
	}
	// The key expired between SETNX and PTTL; report a minimal wait rather than retrying.
	if left < 0 {
		left = time.Millisecond
	}

	return false, left, nil
}

// Release implements Cooldown.
func (r *Redis) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Memory is a single-process Cooldown.
type Memory struct {
	clock   clocker
	mu      sync.Mutex
	windows map[string]time.Time
}

// NewMemory returns an in-process Cooldown driven by clk.
func NewMemory(clk clocker) *Memory {
	return &Memory{clock: clk, windows: make(map[string]time.Time)}
}

// Acquire implements Cooldown.
func (m *Memory) Acquire(_ context.Context, key string, window time.Duration) (bool, time.Duration, error) {
	if key == "" {
		return false, 0, ErrEmptyKey
	}
	if window <= 0 {
		return true, 0, nil
	}

	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if until, ok := m.windows[key]; ok && now.Before(until) {
		return false, until.Sub(now), nil
	}

	for k, until := range m.windows {
		if !now.Before(until) {
			delete(m.windows, k)
		}
	}
	m.windows[key] = now.Add(window)

	return true, 0, nil
}

// Release implements Cooldown.
func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.windows, key)
	m.mu.Unlock()
	return nil
}
