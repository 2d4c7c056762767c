// Package db opens and migrates the relational data store.
package db

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authadapters "market_backend/internal/feature/auth/adapters"
	authentity "market_backend/internal/feature/auth/domain/entity"
	cartentity "market_backend/internal/feature/cart/domain/entity"
	catalogentity "market_backend/internal/feature/catalog/domain/entity"
	orderentity "market_backend/internal/feature/orders/domain/entity"
)

const (
	// retryInterval は接続リトライの間隔です。
	retryInterval = 3 * time.Second
	// defaultSQLitePath はPostgres設定がない場合に使うローカルDBファイルです。
	defaultSQLitePath = "./market.db"
)

// Config holds connection settings for the hosted Postgres database.
type Config struct {
	URL      string // Full connection URL; takes precedence over the discrete fields
	User     string
	Password string
	Name     string
	Host     string
	Port     string
	SSLMode  string
}

// Opener opens a gorm connection for a DSN. It is swapped out in tests.
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "require"
	}
	return Config{
		URL:      os.Getenv("DATABASE_URL"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		SSLMode:  sslmode,
	}
}

// IsConfigured reports whether enough settings are present to reach Postgres.
func (c Config) IsConfigured() bool {
	return c.URL != "" || c.Host != ""
}

// BuildDSN はPostgres接続用のDSN文字列を生成します。URLが設定されている場合はそれを優先します。
func BuildDSN(cfg Config) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, port, cfg.SSLMode)
}

// ConnectWithRetry はタイムアウトに達するまで一定間隔で接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("db connect failed after %v: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err)
		time.Sleep(min(retryInterval, remaining))
	}
}

// OpenDB connects to Postgres when configured and falls back to a local SQLite file otherwise.
// Migrations run when RUN_MIGRATIONS=true or when the SQLite fallback is used.
func OpenDB(cfg Config) (*gorm.DB, error) {
	var (
		db      *gorm.DB
		err     error
		migrate = os.Getenv("RUN_MIGRATIONS") == "true"
	)

	if cfg.IsConfigured() {
		db, err = ConnectWithRetry(BuildDSN(cfg), 60*time.Second, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), &gorm.Config{})
		})
		if err != nil {
			return nil, err
		}
		slog.Info("using postgres", "host", cfg.Host)
	} else {
		db, err = gorm.Open(sqlite.Open(defaultSQLitePath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		slog.Info("using sqlite", "path", defaultSQLitePath)
		migrate = true
	}

	if migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&authentity.Profile{},
		&authadapters.SessionModel{},
		&catalogentity.Product{},
		&cartentity.CartItem{},
		&orderentity.Order{},
		&orderentity.OrderItem{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
