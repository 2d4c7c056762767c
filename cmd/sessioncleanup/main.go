package main

import (
	"context"
	"log"
	"time"

	"market_backend/internal/app/di"
	infradb "market_backend/internal/platform/db"
	infraredis "market_backend/internal/platform/redis"

	redisv9 "github.com/redis/go-redis/v9"
)

// 期限切れ・失効済みのセッションを削除する。cron から定期実行する想定。
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv())
	if err != nil {
		log.Fatal("failed to open database:", err)
	}

	var rdb *redisv9.Client
	if infraredis.IsConfigured() {
		rdb, err = infraredis.NewRedisClient(ctx)
		if err != nil {
			log.Fatal("failed to connect to Redis:", err)
		}
		defer rdb.Close()
	}

	repo := di.NewSessionRepository(rdb, db)
	n, err := repo.DeleteExpired(ctx)
	if err != nil {
		log.Fatal("failed to delete expired sessions:", err)
	}
	log.Printf("session cleanup ok: %d removed", n)
}
