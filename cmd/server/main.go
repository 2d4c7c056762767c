package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"market_backend/internal/app/di"
	"market_backend/internal/app/router"
	authusecase "market_backend/internal/feature/auth/usecase"
	"market_backend/internal/platform/config"
	infradb "market_backend/internal/platform/db"
	platformhandler "market_backend/internal/platform/http/handler"
	infraredis "market_backend/internal/platform/redis"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 設定（必須項目が欠けていれば起動しない）
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// db
	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv())
	if err != nil {
		log.Fatal("failed to open database:", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB:", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()
	checks := []platformhandler.Check{{Name: "db", Ping: sqlDB.PingContext}}

	// Redis
	var rdb *redisv9.Client
	if infraredis.IsConfigured() {
		if tmp, err := infraredis.NewRedisClient(ctx); err != nil {
			slog.Warn("Redis unavailable. Sessions fall back to the database and the product cache is disabled.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
			checks = append(checks, platformhandler.Check{Name: "redis", Ping: func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}})
		}
	}

	app := di.NewApp(cfg, db, rdb)

	// 認証状態の変更通知を購読する（起動時に一度だけ）
	stop := app.Sessions.Initialize(ctx)
	defer stop()
	unsubscribe := app.Sessions.Subscribe(func(c authusecase.Change) {
		slog.Info("session changed", "kind", c.Kind, "user_id", c.UserID, "session_id", c.SessionID)
	})
	defer unsubscribe()

	if cfg.Backend.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set. Access tokens are not verified locally.")
	}

	r := router.NewRouter(app.Handlers, router.Options{
		Sessions:     app.Sessions,
		Cookie:       app.Cookie,
		AllowOrigins: cfg.AllowOrigins,
		HealthChecks: checks,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("listening", "addr", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
