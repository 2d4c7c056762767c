// Package redis はRedisクライアントの生成を提供します。
package redis

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// IsConfigured reports whether REDIS_HOST is set.
// Without it the application keeps sessions in the database and skips the product cache.
func IsConfigured() bool {
	return os.Getenv("REDIS_HOST") != ""
}

// NewRedisClient は環境変数の設定でRedisに接続し、疎通を確認します。
func NewRedisClient(ctx context.Context) (*redis.Client, error) {
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	addr := os.Getenv("REDIS_HOST") + ":" + port

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
