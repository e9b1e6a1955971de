package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore tracks refresh-token JTIs that have been rotated out or
// explicitly revoked. A revocation only needs to live as long as the token
// would have anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time)
	IsRevoked(ctx context.Context, jti string) bool
	Close()
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

// MemoryRevocationStore keeps revoked JTIs in memory with background cleanup
// of expired entries. Suitable for single-node deployments and tests.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time // JTI -> token expiry
	done    chan struct{}
}

// NewMemoryRevocationStore creates the store and starts a goroutine that
// sweeps expired entries every 5 minutes.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	s := &MemoryRevocationStore{
		entries: make(map[string]time.Time),
		done:    make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	s.mu.Lock()
	s.entries[jti] = expiresAt
	s.mu.Unlock()
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) bool {
	s.mu.RLock()
	expiry, ok := s.entries[jti]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	// An entry past the token's own expiry no longer matters; the token is
	// dead either way.
	return time.Now().Before(expiry)
}

func (s *MemoryRevocationStore) Close() {
	close(s.done)
}

func (s *MemoryRevocationStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.done:
			return
		}
	}
}

func (s *MemoryRevocationStore) cleanup() {
	now := time.Now()
	s.mu.Lock()
	for jti, expiry := range s.entries {
		if now.After(expiry) {
			delete(s.entries, jti)
		}
	}
	s.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Redis implementation
// ---------------------------------------------------------------------------

const redisRevocationPrefix = "hms:revoked:"

// RedisRevocationStore shares revocations across server instances. Entries
// expire with the token they revoke, so the set never grows unbounded.
type RedisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore wraps an existing Redis client. The caller owns
// the client's lifecycle; the same client is typically shared with the rate
// limiter.
func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	s.client.Set(ctx, redisRevocationPrefix+jti, "1", ttl)
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) bool {
	n, err := s.client.Exists(ctx, redisRevocationPrefix+jti).Result()
	if err != nil {
		// Fail closed: if the revocation list is unreachable we cannot
		// prove the token is still good.
		return true
	}
	return n > 0
}

// Close is a no-op; the shared Redis client is closed by its owner.
func (s *RedisRevocationStore) Close() {}
