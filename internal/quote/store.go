package quote

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists evaluated quotes for later retrieval.
type Store interface {
	Save(ctx context.Context, q Quote) error
	Get(ctx context.Context, id string) (Quote, error)
}

const defaultQuoteTTL = 30 * time.Minute

// RedisStore keeps quotes as JSON documents that expire after a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore constructs a store writing under the "quote:" prefix.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultQuoteTTL
	}
	return &RedisStore{client: client, ttl: ttl, prefix: "quote:"}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

// Save serialises q and stores it with the configured TTL.
func (s *RedisStore) Save(ctx context.Context, q Quote) error {
	if s == nil || s.client == nil || q.ID == "" {
		return nil
	}
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(q.ID), data, s.ttl).Err()
}

// Get loads a quote. Missing and expired quotes return ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, id string) (Quote, error) {
	if s == nil || s.client == nil || id == "" {
		return Quote{}, ErrNotFound
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Quote{}, ErrNotFound
		}
		return Quote{}, err
	}
	var q Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return Quote{}, err
	}
	return q, nil
}

// MemoryStore is a process-local Store used when Redis is not configured.
type MemoryStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	quotes map[string]memoryEntry
}

type memoryEntry struct {
	quote   Quote
	expires time.Time
}

// NewMemoryStore constructs an in-process store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultQuoteTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, quotes: map[string]memoryEntry{}}
}

// Save stores q and drops expired entries.
func (s *MemoryStore) Save(_ context.Context, q Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, entry := range s.quotes {
		if now.After(entry.expires) {
			delete(s.quotes, id)
		}
	}
	s.quotes[q.ID] = memoryEntry{quote: q, expires: now.Add(s.ttl)}
	return nil
}

// Get loads a quote that has not expired.
func (s *MemoryStore) Get(_ context.Context, id string) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.quotes[id]
	if !ok || s.now().After(entry.expires) {
		return Quote{}, ErrNotFound
	}
	return entry.quote, nil
}
