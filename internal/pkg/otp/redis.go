package otp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
)

// DefaultGrace keeps an expired redis entry around long enough to be
// reported as expired once instead of silently vanishing.
const DefaultGrace = time.Minute

const (
	fieldCode      = "code"
	fieldIssuedAt  = "issued_at"
	fieldExpiresAt = "expires_at"
	fieldAttempts  = "attempts"
)

// consumeScript mirrors MemoryStore.Consume. Return values map to Outcome.
var consumeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
local expires = tonumber(redis.call('HGET', KEYS[1], 'expires_at'))
if tonumber(ARGV[2]) > expires then
  redis.call('DEL', KEYS[1])
  return 2
end
if redis.call('HGET', KEYS[1], 'code') ~= ARGV[1] then
  local attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
  local max = tonumber(ARGV[3])
  if max > 0 and attempts >= max then
    redis.call('DEL', KEYS[1])
    return 4
  end
  return 3
end
redis.call('DEL', KEYS[1])
return 1
`)

// RedisStore is a Store shared by every instance pointing at the same redis.
//
// Each identifier is a hash under prefix+identifier. Timestamps are unix
// milliseconds from the injected clock, so expiry is decided by the caller's
// clock and the key TTL only reclaims space.
type RedisStore struct {
	client redis.UniversalClient
	clock  clock.Clocker
	prefix string
	grace  time.Duration
}

var _ Store = (*RedisStore)(nil)

// RedisOption customizes a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix. Default "otp:", kept when prefix is empty.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithGrace sets how long past expiry the key is retained.
func WithGrace(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		if d >= 0 {
			s.grace = d
		}
	}
}

// NewRedisStore returns a RedisStore using client.
func NewRedisStore(client redis.UniversalClient, c clock.Clocker, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		clock:  c,
		prefix: "otp:",
		grace:  DefaultGrace,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *RedisStore) key(identifier string) string {
	return s.prefix + identifier
}

func (s *RedisStore) Put(ctx context.Context, identifier, code string, ttl time.Duration) (PendingCode, error) {
	if strings.TrimSpace(identifier) == "" {
		return PendingCode{}, ErrEmptyIdentifier
	}
	if ttl <= 0 {
		return PendingCode{}, ErrInvalidTTL
	}

	now := s.clock.Now()
	pc := PendingCode{
		Identifier: identifier,
		Code:       code,
		IssuedAt:   now,
		ExpiresAt:  now.Add(ttl),
	}

	key := s.key(identifier)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			fieldCode, code,
			fieldIssuedAt, now.UnixMilli(),
			fieldExpiresAt, pc.ExpiresAt.UnixMilli(),
			fieldAttempts, 0,
		)
		p.PExpire(ctx, key, ttl+s.grace)
		return nil
	})
	if err != nil {
		return PendingCode{}, fmt.Errorf("otp: put: %w", err)
	}

	return pc, nil
}

func (s *RedisStore) Get(ctx context.Context, identifier string) (PendingCode, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.key(identifier)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return PendingCode{}, false, nil
		}
		return PendingCode{}, false, fmt.Errorf("otp: get: %w", err)
	}
	if len(fields) == 0 {
		return PendingCode{}, false, nil
	}

	pc, err := decodePending(identifier, fields)
	if err != nil {
		return PendingCode{}, false, err
	}

	return pc, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, identifier string) error {
	if err := s.client.Del(ctx, s.key(identifier)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("otp: delete: %w", err)
	}

	return nil
}

func (s *RedisStore) Consume(ctx context.Context, identifier, code string, maxAttempts int) (Outcome, error) {
	res, err := consumeScript.Run(ctx, s.client,
		[]string{s.key(identifier)},
		code, s.clock.Now().UnixMilli(), maxAttempts,
	).Int()
	if err != nil {
		return OutcomeNotFound, fmt.Errorf("otp: consume: %w", err)
	}

	switch res {
	case 1:
		return OutcomeVerified, nil
	case 2:
		return OutcomeExpired, nil
	case 3:
		return OutcomeMismatch, nil
	case 4:
		return OutcomeExhausted, nil
	default:
		return OutcomeNotFound, nil
	}
}

// Sweep is a no-op; redis drops keys once their TTL passes.
func (s *RedisStore) Sweep(context.Context) (int, error) {
	return 0, nil
}

func decodePending(identifier string, fields map[string]string) (PendingCode, error) {
	issued, err := strconv.ParseInt(fields[fieldIssuedAt], 10, 64)
	if err != nil {
		return PendingCode{}, fmt.Errorf("otp: decode issued_at: %w", err)
	}

	expires, err := strconv.ParseInt(fields[fieldExpiresAt], 10, 64)
	if err != nil {
		return PendingCode{}, fmt.Errorf("otp: decode expires_at: %w", err)
	}

	attempts, err := strconv.Atoi(fields[fieldAttempts])
	if err != nil {
		return PendingCode{}, fmt.Errorf("otp: decode attempts: %w", err)
	}

	return PendingCode{
		Identifier: identifier,
		Code:       fields[fieldCode],
		IssuedAt:   time.UnixMilli(issued).UTC(),
		ExpiresAt:  time.UnixMilli(expires).UTC(),
		Attempts:   attempts,
	}, nil
}
