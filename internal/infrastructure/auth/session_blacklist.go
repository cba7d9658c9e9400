package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/compliport/backend/internal/infrastructure/config"
)

// SessionBlacklist rejects evicted and logged-out sessions without a
// database round-trip. Entries carry a TTL equal to the remaining
// token lifetime, after which the token is dead anyway.
type SessionBlacklist interface {
	// Add marks a session ID as revoked for the given TTL
	Add(ctx context.Context, sessionID string, ttl time.Duration) error

	// IsRevoked checks whether a session ID has been revoked
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// RedisSessionBlacklist implements SessionBlacklist using Redis
type RedisSessionBlacklist struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSessionBlacklist creates a new Redis-based session blacklist
func NewRedisSessionBlacklist(cfg config.RedisConfig) (*RedisSessionBlacklist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for session blacklist: %w", err)
	}

	return &RedisSessionBlacklist{
		client:    client,
		keyPrefix: "session:revoked:",
	}, nil
}

// NewRedisSessionBlacklistWithClient creates a session blacklist with an existing Redis client
func NewRedisSessionBlacklistWithClient(client *redis.Client) *RedisSessionBlacklist {
	return &RedisSessionBlacklist{
		client:    client,
		keyPrefix: "session:revoked:",
	}
}

func (b *RedisSessionBlacklist) key(sessionID string) string {
	return b.keyPrefix + sessionID
}

// Add marks a session ID as revoked
func (b *RedisSessionBlacklist) Add(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.key(sessionID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add session to blacklist: %w", err)
	}
	return nil
}

// IsRevoked checks whether a session ID has been revoked
func (b *RedisSessionBlacklist) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session blacklist: %w", err)
	}
	return exists > 0, nil
}

// Close closes the Redis client
func (b *RedisSessionBlacklist) Close() error {
	return b.client.Close()
}

var _ SessionBlacklist = (*RedisSessionBlacklist)(nil)

// InMemorySessionBlacklist provides an in-memory implementation for
// testing and single-instance deployments.
type InMemorySessionBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time // sessionID -> entry expiry
}

// NewInMemorySessionBlacklist creates a new in-memory session blacklist
func NewInMemorySessionBlacklist() *InMemorySessionBlacklist {
	return &InMemorySessionBlacklist{
		revoked: make(map[string]time.Time),
	}
}

// Add marks a session ID as revoked
func (b *InMemorySessionBlacklist) Add(_ context.Context, sessionID string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[sessionID] = time.Now().Add(ttl)
	return nil
}

// IsRevoked checks whether a session ID has been revoked and the entry has not lapsed
func (b *InMemorySessionBlacklist) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, exists := b.revoked[sessionID]
	if !exists {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(b.revoked, sessionID)
		return false, nil
	}
	return true, nil
}

var _ SessionBlacklist = (*InMemorySessionBlacklist)(nil)
