package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionTTL bounds both the cookie session and the state stored next to it.
const SessionTTL = time.Hour

// StateStore keeps per-session values (cart, checkout draft) keyed by session id.
type StateStore interface {
	Get(ctx context.Context, sid, key string) ([]byte, bool, error)
	Set(ctx context.Context, sid, key string, value []byte) error
	Delete(ctx context.Context, sid string, keys ...string) error
}

// RedisStateStore keeps one hash per session and refreshes its TTL on write.
type RedisStateStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &RedisStateStore{client: client, prefix: "session:state:", ttl: ttl}
}

func (s *RedisStateStore) key(sid string) string {
	return s.prefix + sid
}

func (s *RedisStateStore) Get(ctx context.Context, sid, key string) ([]byte, bool, error) {
	val, err := s.client.HGet(ctx, s.key(sid), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisStateStore) Set(ctx context.Context, sid, key string, value []byte) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(sid), key, value)
	pipe.Expire(ctx, s.key(sid), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStateStore) Delete(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.HDel(ctx, s.key(sid), keys...).Err()
}

// MemoryStateStore is used in tests and single-node development setups.
type MemoryStateStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{data: make(map[string]map[string][]byte)}
}

func (s *MemoryStateStore) Get(_ context.Context, sid, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[sid][key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

func (s *MemoryStateStore) Set(_ context.Context, sid, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[sid] == nil {
		s.data[sid] = make(map[string][]byte)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[sid][key] = stored
	return nil
}

func (s *MemoryStateStore) Delete(_ context.Context, sid string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data[sid], k)
	}
	if len(s.data[sid]) == 0 {
		delete(s.data, sid)
	}
	return nil
}
