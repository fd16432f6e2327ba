package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisLocker(rdb, time.Second, zap.NewNop()).WithRetryBackoff(5 * time.Millisecond), mr
}

func TestRedisLockerAcquireRelease(t *testing.T) {
	l, mr := newTestLocker(t)

	unlock, err := l.Lock(context.Background(), "completion:u1:h1:2024-01-01")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:completion:u1:h1:2024-01-01"))

	unlock()
	assert.False(t, mr.Exists("lock:completion:u1:h1:2024-01-01"))
}

func TestRedisLockerBlocksUntilReleased(t *testing.T) {
	l, _ := newTestLocker(t)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "k")
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	_, err = l.Lock(short, "k")
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	unlock2, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	unlock2()
}

func TestRedisLockerDoesNotReleaseForeignToken(t *testing.T) {
	l, mr := newTestLocker(t)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	// lock expired and someone else took it
	require.NoError(t, mr.Set("lock:k", "other-owner"))
	unlock()

	got, err := mr.Get("lock:k")
	require.NoError(t, err)
	assert.Equal(t, "other-owner", got)
}
