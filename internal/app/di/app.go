package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"market_backend/internal/app/router"
	authadapters "market_backend/internal/feature/auth/adapters"
	authhandler "market_backend/internal/feature/auth/transport/handler"
	"market_backend/internal/feature/auth/transport/guard"
	authusecase "market_backend/internal/feature/auth/usecase"
	cartadapters "market_backend/internal/feature/cart/adapters"
	carthandler "market_backend/internal/feature/cart/transport/handler"
	cartusecase "market_backend/internal/feature/cart/usecase"
	catalogadapters "market_backend/internal/feature/catalog/adapters"
	cataloghandler "market_backend/internal/feature/catalog/transport/handler"
	catalogusecase "market_backend/internal/feature/catalog/usecase"
	dashboardhandler "market_backend/internal/feature/dashboard/transport/handler"
	dashboardusecase "market_backend/internal/feature/dashboard/usecase"
	orderadapters "market_backend/internal/feature/orders/adapters"
	orderhandler "market_backend/internal/feature/orders/transport/handler"
	orderusecase "market_backend/internal/feature/orders/usecase"
	"market_backend/internal/platform/cache"
	"market_backend/internal/platform/config"
	"market_backend/internal/platform/externalapi/supabase"
)

// App is the wired application: the session store that must be initialised at
// start-up and the handlers the router serves.
type App struct {
	Sessions *authusecase.SessionStore
	Cookie   guard.CookieConfig
	Handlers router.Handlers
}

// NewApp wires repositories, usecases and handlers. rdb may be nil, in which case
// sessions live in the database and the product cache is bypassed.
func NewApp(cfg config.Config, db *gorm.DB, rdb *redis.Client) *App {
	backend := NewBackendClient(cfg.Backend)
	authClient := supabase.NewAuthClient(backend)
	storageClient := supabase.NewStorageClient(backend)

	// Repository
	profileRepo := authadapters.NewProfileGorm(db)
	sessionRepo := NewSessionRepository(rdb, db)
	productRepo := cache.NewCachingProductRepository(rdb, 0, catalogadapters.NewProductRepository(db), "products")
	cartRepo := cartadapters.NewCartRepository(db)
	orderRepo := orderadapters.NewOrderRepository(db)

	// Usecase
	resolver := authusecase.NewProfileResolver(profileRepo, authusecase.RetryPolicy{
		Attempts:     cfg.ProfileRetry.Attempts,
		InitialDelay: cfg.ProfileRetry.InitialDelay,
		MaxDelay:     cfg.ProfileRetry.MaxDelay,
		Multiplier:   2,
	})
	sessions := authusecase.NewSessionStore(authClient, resolver, profileRepo, sessionRepo,
		authusecase.WithSessionTTL(cfg.Session.TTL),
		authusecase.WithMaxSessionsPerUser(cfg.Session.MaxSessionsPerUser),
	)
	catalogUC := catalogusecase.NewCatalogUsecase(productRepo, catalogadapters.NewImageStorage(storageClient))
	cartUC := cartusecase.NewCartUsecase(cartRepo, catalogUC)
	ordersUC := orderusecase.NewOrdersUsecase(orderRepo)
	dashboardUC := dashboardusecase.NewDashboardUsecase(cartUC, ordersUC, catalogUC)

	// Handler
	cookie := guard.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
		TTL:    cfg.Session.TTL,
	}
	return &App{
		Sessions: sessions,
		Cookie:   cookie,
		Handlers: router.Handlers{
			Auth:      authhandler.NewAuthHandler(sessions, cookie),
			Products:  cataloghandler.NewProductHandler(catalogUC),
			Cart:      carthandler.NewCartHandler(cartUC),
			Orders:    orderhandler.NewOrderHandler(ordersUC),
			Dashboard: dashboardhandler.NewDashboardHandler(dashboardUC),
		},
	}
}
