// Package di provides dependency injection factories for creating application components.
package di

import (
	"market_backend/internal/platform/config"
	"market_backend/internal/platform/externalapi/supabase"
	infrahttp "market_backend/internal/platform/http"
	"market_backend/internal/shared/ratelimiter"
)

// NewBackendClient creates the hosted backend client with a shared HTTP client and outbound throttling.
func NewBackendClient(b config.Backend) *supabase.Client {
	cfg := supabase.ConfigFrom(b)
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return supabase.NewClient(cfg, httpClient, ratelimiter.NewRateLimiter(cfg.RateLimit))
}
