package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	submissionPending = "pending"

	ClaimTTL     = 10 * time.Minute
	CompletedTTL = 24 * time.Hour
)

// SubmissionGuard makes a draft's submission token single-use. Claim wins
// once per token; Complete records the resulting order so a replayed form
// can be sent to the existing confirmation.
type SubmissionGuard interface {
	Claim(ctx context.Context, userID uint, token string) (bool, error)
	Complete(ctx context.Context, userID uint, token, subscriptionID string) error
	Release(ctx context.Context, userID uint, token string) error
	// Lookup returns the subscription id of a completed submission.
	Lookup(ctx context.Context, userID uint, token string) (string, bool, error)
}

func submissionKey(userID uint, token string) string {
	return fmt.Sprintf("checkout:submission:%d:%s", userID, token)
}

type RedisSubmissionGuard struct {
	client *redis.Client
}

func NewRedisSubmissionGuard(client *redis.Client) *RedisSubmissionGuard {
	return &RedisSubmissionGuard{client: client}
}

func (g *RedisSubmissionGuard) Claim(ctx context.Context, userID uint, token string) (bool, error) {
	return g.client.SetNX(ctx, submissionKey(userID, token), submissionPending, ClaimTTL).Result()
}

func (g *RedisSubmissionGuard) Complete(ctx context.Context, userID uint, token, subscriptionID string) error {
	return g.client.Set(ctx, submissionKey(userID, token), subscriptionID, CompletedTTL).Err()
}

func (g *RedisSubmissionGuard) Release(ctx context.Context, userID uint, token string) error {
	return g.client.Del(ctx, submissionKey(userID, token)).Err()
}

func (g *RedisSubmissionGuard) Lookup(ctx context.Context, userID uint, token string) (string, bool, error) {
	val, err := g.client.Get(ctx, submissionKey(userID, token)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if val == submissionPending {
		return "", false, nil
	}
	return val, true, nil
}

// MemorySubmissionGuard is used by tests and single-process dev setups.
// Entries never expire.
type MemorySubmissionGuard struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMemorySubmissionGuard() *MemorySubmissionGuard {
	return &MemorySubmissionGuard{entries: make(map[string]string)}
}

func (g *MemorySubmissionGuard) Claim(_ context.Context, userID uint, token string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := submissionKey(userID, token)
	if _, ok := g.entries[key]; ok {
		return false, nil
	}
	g.entries[key] = submissionPending
	return true, nil
}

func (g *MemorySubmissionGuard) Complete(_ context.Context, userID uint, token, subscriptionID string) error {
	g.mu.Lock()
	g.entries[submissionKey(userID, token)] = subscriptionID
	g.mu.Unlock()
	return nil
}

func (g *MemorySubmissionGuard) Release(_ context.Context, userID uint, token string) error {
	g.mu.Lock()
	delete(g.entries, submissionKey(userID, token))
	g.mu.Unlock()
	return nil
}

func (g *MemorySubmissionGuard) Lookup(_ context.Context, userID uint, token string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	val, ok := g.entries[submissionKey(userID, token)]
	if !ok || val == submissionPending {
		return "", false, nil
	}
	return val, true, nil
}
