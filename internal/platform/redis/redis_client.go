// Package redis はフラッシュストア用のRedisクライアントを生成します。
package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"user_registry/internal/platform/config"
)

const dialTimeout = 2 * time.Second

// NewRedisClient はRedisへ接続し、疎通を確認したクライアントを返します。
// Host が空の場合は (nil, nil) を返し、呼び出し側はSQLのフラッシュストアを使用します。
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Host == "" {
		slog.Info("Redis disabled; REDIS_HOST is empty")
		return nil, nil
	}
	addr := cfg.Addr()

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          0,
		DialTimeout: dialTimeout,
	})

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
