// Package supabase はホスト型バックエンド（認証APIとストレージAPI）のクライアントを提供します。
package supabase

import (
	"time"

	"market_backend/internal/platform/config"
)

// Config holds configuration for the hosted backend client.
type Config struct {
	BaseURL   string        // Project URL, e.g. https://xyz.supabase.co
	APIKey    string        // Public API key sent as the apikey header
	Timeout   time.Duration // HTTP request timeout
	RateLimit int           // Outbound requests per second; 0 disables throttling
	JWTSecret string        // Optional; enables local access-token verification
}

// ConfigFrom maps the application's backend settings.
func ConfigFrom(b config.Backend) Config {
	return Config{
		BaseURL:   b.URL,
		APIKey:    b.APIKey,
		Timeout:   b.Timeout,
		RateLimit: b.RateLimit,
		JWTSecret: b.JWTSecret,
	}
}
