// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfigurationMissing is returned when a required setting is absent.
// The server refuses to start when it sees this error.
var ErrConfigurationMissing = errors.New("configuration missing")

const (
	EnvBackendURL    = "BACKEND_URL"
	EnvBackendAPIKey = "BACKEND_API_KEY"
)

// Backend holds settings for the hosted backend platform (auth + storage).
type Backend struct {
	URL       string        // Base URL, e.g. https://xyz.supabase.co
	APIKey    string        // Public (anon) API key sent as the apikey header
	Timeout   time.Duration // Per-request timeout for outbound calls
	RateLimit int           // Outbound requests per second; 0 disables throttling
	JWTSecret string        // Optional. When set, access tokens are signature-checked locally.
}

// Session holds server-side session settings.
type Session struct {
	TTL                time.Duration
	CookieName         string
	CookieSecure       bool
	MaxSessionsPerUser int
}

// ProfileRetry configures the bounded retry used while resolving a profile at sign-in.
type ProfileRetry struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Config is the complete application configuration.
type Config struct {
	HTTPAddr     string
	AllowOrigins []string
	Backend      Backend
	Session      Session
	ProfileRetry ProfileRetry
}

// Load reads .env (if present) and the process environment.
// BACKEND_URL and BACKEND_API_KEY are required.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment without touching .env.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:     getString("HTTP_ADDR", ":8080"),
		AllowOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Backend: Backend{
			URL:       strings.TrimRight(os.Getenv(EnvBackendURL), "/"),
			APIKey:    os.Getenv(EnvBackendAPIKey),
			Timeout:   getDuration("BACKEND_TIMEOUT", 10*time.Second),
			RateLimit: getInt("BACKEND_RATE_LIMIT", 20),
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Session: Session{
			TTL:                getDuration("SESSION_TTL", 7*24*time.Hour),
			CookieName:         getString("SESSION_COOKIE_NAME", "market_session"),
			CookieSecure:       getBool("COOKIE_SECURE", true),
			MaxSessionsPerUser: getInt("MAX_SESSIONS_PER_USER", 5),
		},
		ProfileRetry: ProfileRetry{
			Attempts:     getInt("PROFILE_RETRY_ATTEMPTS", 3),
			InitialDelay: getDuration("PROFILE_RETRY_INITIAL_DELAY", 250*time.Millisecond),
			MaxDelay:     getDuration("PROFILE_RETRY_MAX_DELAY", 2*time.Second),
		},
	}

	if cfg.Backend.URL == "" {
		return Config{}, fmt.Errorf("%w: %s must point at the hosted backend project URL", ErrConfigurationMissing, EnvBackendURL)
	}
	if cfg.Backend.APIKey == "" {
		return Config{}, fmt.Errorf("%w: %s must hold the public API key", ErrConfigurationMissing, EnvBackendAPIKey)
	}
	return cfg, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer setting, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean setting, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration setting, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
