package otp

import (
	"context"
	"crypto/subtle"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/shandysiswandi/gomarket/internal/pkg/clock"
)

const shardCount = 32

type shard struct {
	mu      sync.Mutex
	entries map[string]PendingCode
}

// MemoryStore is a process-local Store.
//
// Entries are spread over a fixed set of shards by identifier hash. Each shard
// has its own mutex, so calls for one identifier serialize while calls for
// identifiers on different shards never contend.
type MemoryStore struct {
	shards [shardCount]*shard
	clock  clock.Clocker
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore reading time from c.
func NewMemoryStore(c clock.Clocker) *MemoryStore {
	s := &MemoryStore{clock: c}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]PendingCode)}
	}

	return s
}

func (s *MemoryStore) shard(identifier string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identifier))
	return s.shards[h.Sum32()%shardCount]
}

func (s *MemoryStore) Put(ctx context.Context, identifier, code string, ttl time.Duration) (PendingCode, error) {
	if err := ctx.Err(); err != nil {
		return PendingCode{}, err
	}
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

	sh := s.shard(identifier)
	sh.mu.Lock()
	sh.entries[identifier] = pc
	sh.mu.Unlock()

	return pc, nil
}

func (s *MemoryStore) Get(ctx context.Context, identifier string) (PendingCode, bool, error) {
	if err := ctx.Err(); err != nil {
		return PendingCode{}, false, err
	}

	sh := s.shard(identifier)
	sh.mu.Lock()
	pc, ok := sh.entries[identifier]
	sh.mu.Unlock()

	return pc, ok, nil
}

func (s *MemoryStore) Delete(ctx context.Context, identifier string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sh := s.shard(identifier)
	sh.mu.Lock()
	delete(sh.entries, identifier)
	sh.mu.Unlock()

	return nil
}

func (s *MemoryStore) Consume(ctx context.Context, identifier, code string, maxAttempts int) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeNotFound, err
	}

	sh := s.shard(identifier)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	pc, ok := sh.entries[identifier]
	if !ok {
		return OutcomeNotFound, nil
	}

	if pc.Expired(s.clock.Now()) {
		delete(sh.entries, identifier)
		return OutcomeExpired, nil
	}

	if subtle.ConstantTimeCompare([]byte(pc.Code), []byte(code)) != 1 {
		pc.Attempts++
		if maxAttempts > 0 && pc.Attempts >= maxAttempts {
			delete(sh.entries, identifier)
			return OutcomeExhausted, nil
		}

		sh.entries[identifier] = pc
		return OutcomeMismatch, nil
	}

	delete(sh.entries, identifier)
	return OutcomeVerified, nil
}

func (s *MemoryStore) Sweep(ctx context.Context) (int, error) {
	removed := 0
	for _, sh := range s.shards {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		now := s.clock.Now()
		sh.mu.Lock()
		for id, pc := range sh.entries {
			if pc.Expired(now) {
				delete(sh.entries, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}

	return removed, nil
}

// Len returns the number of entries currently held, expired or not.
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}

	return n
}
