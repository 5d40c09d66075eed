package checkout

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseGuard(t *testing.T, g SubmissionGuard) {
	ctx := context.Background()

	ok, err := g.Claim(ctx, 7, "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Claim(ctx, 7, "tok")
	require.NoError(t, err)
	assert.False(t, ok, "second claim must lose")

	ok, err = g.Claim(ctx, 8, "tok")
	require.NoError(t, err)
	assert.True(t, ok, "tokens are scoped per user")

	_, done, err := g.Lookup(ctx, 7, "tok")
	require.NoError(t, err)
	assert.False(t, done, "pending claims are not completed orders")

	require.NoError(t, g.Complete(ctx, 7, "tok", "sub-1"))
	id, done, err := g.Lookup(ctx, 7, "tok")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "sub-1", id)

	require.NoError(t, g.Release(ctx, 8, "tok"))
	ok, err = g.Claim(ctx, 8, "tok")
	require.NoError(t, err)
	assert.True(t, ok, "released tokens can be claimed again")
}

func TestMemorySubmissionGuard(t *testing.T) {
	exerciseGuard(t, NewMemorySubmissionGuard())
}

func TestRedisSubmissionGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseGuard(t, NewRedisSubmissionGuard(client))

	assert.Equal(t, CompletedTTL, mr.TTL(submissionKey(7, "tok")))
	assert.Equal(t, ClaimTTL, mr.TTL(submissionKey(8, "tok")))

	mr.FastForward(ClaimTTL)
	ok, err := NewRedisSubmissionGuard(client).Claim(context.Background(), 8, "tok")
	require.NoError(t, err)
	assert.True(t, ok, "stale claims expire")
}
