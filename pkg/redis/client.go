package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"habitledger/pkg/config"
)

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Connect 创建客户端并 ping 一次，失败时关闭客户端
func Connect(cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	logger.Info("Initializing Redis client",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
	)

	rdb := NewRedisClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return rdb, nil
}
