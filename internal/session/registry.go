package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrSessionNotFound is returned for a session that expired or was closed.
var ErrSessionNotFound = errors.New("session not found")

// Record is the registry entry of a signed-in session.
type Record struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Registry tracks which sessions are still valid.
type Registry interface {
	Put(ctx context.Context, rec Record, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*Record, error)
	Delete(ctx context.Context, sessionID string) error
}

// DefaultKeyPrefix prefixes every session key in Redis.
const DefaultKeyPrefix = "nursery"

// RedisRegistry keeps session records as JSON strings under
// {prefix}:session:{id}, expiring with the token.
type RedisRegistry struct {
	client *redis.Client
	prefix string
}

// NewRedisRegistry creates a registry on an already connected client.
func NewRedisRegistry(client *redis.Client, prefix string) *RedisRegistry {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisRegistry{client: client, prefix: prefix}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (r *RedisRegistry) key(sessionID string) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, sessionID)
}

func (r *RedisRegistry) Put(ctx context.Context, rec Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(rec.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session %s: %w", rec.SessionID, err)
	}
	return nil
}

func (r *RedisRegistry) Get(ctx context.Context, sessionID string) (*Record, error) {
	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to deserialize session %s: %w", sessionID, err)
	}
	return &rec, nil
}

func (r *RedisRegistry) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// MemoryRegistry is a process-local Registry for development and tests.
type MemoryRegistry struct {
	mu      sync.Mutex
	records map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{records: make(map[string]memoryEntry), now: time.Now}
}

func (r *MemoryRegistry) Put(_ context.Context, rec Record, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := memoryEntry{rec: rec}
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}
	r.records[rec.SessionID] = entry
	return nil
}

func (r *MemoryRegistry) Get(_ context.Context, sessionID string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.records[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && !r.now().Before(entry.expiresAt) {
		delete(r.records, sessionID)
		return nil, ErrSessionNotFound
	}
	rec := entry.rec
	return &rec, nil
}

func (r *MemoryRegistry) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, sessionID)
	return nil
}
