package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLockTimeout 在 ctx 结束前仍未拿到锁
var ErrLockTimeout = errors.New("lock: timed out waiting for key")

// 只有持有者（token 相同）才能删除锁
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker is a SETNX lock shared by every replica using the same Redis.
// The TTL bounds how long a crashed holder can block others.
type RedisLocker struct {
	rdb          *redis.Client
	ttl          time.Duration
	retryBackoff time.Duration
	logger       *zap.Logger
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisLocker{
		rdb:          rdb,
		ttl:          ttl,
		retryBackoff: 20 * time.Millisecond,
		logger:       logger,
	}
}

// WithRetryBackoff 设置抢锁失败后的等待间隔
func (l *RedisLocker) WithRetryBackoff(d time.Duration) *RedisLocker {
	l.retryBackoff = d
	return l
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := fmt.Sprintf("lock:%s", key)
	token := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
			}
			return nil, fmt.Errorf("acquire lock %s: %w", redisKey, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
		case <-time.After(l.retryBackoff):
		}
	}

	return func() {
		// 释放时不复用请求 ctx：请求可能已被取消
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.rdb, []string{redisKey}, token).Err(); err != nil && l.logger != nil {
			l.logger.Warn("Failed to release lock",
				zap.String("key", redisKey),
				zap.Error(err),
			)
		}
	}, nil
}
