package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"market_backend/internal/api"
	authentity "market_backend/internal/feature/auth/domain/entity"
	authhandler "market_backend/internal/feature/auth/transport/handler"
	"market_backend/internal/feature/auth/transport/guard"
	carthandler "market_backend/internal/feature/cart/transport/handler"
	cataloghandler "market_backend/internal/feature/catalog/transport/handler"
	dashboardhandler "market_backend/internal/feature/dashboard/transport/handler"
	orderhandler "market_backend/internal/feature/orders/transport/handler"
	platformhandler "market_backend/internal/platform/http/handler"
)

// Handlers はルーターに登録するハンドラー群です。
type Handlers struct {
	Auth      *authhandler.AuthHandler
	Products  *cataloghandler.ProductHandler
	Cart      *carthandler.CartHandler
	Orders    *orderhandler.OrderHandler
	Dashboard *dashboardhandler.DashboardHandler
}

// Options はミドルウェアの設定です。
type Options struct {
	Sessions     guard.SessionRestorer
	Cookie       guard.CookieConfig
	AllowOrigins []string
	HealthChecks []platformhandler.Check
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.Default()

	// ブラウザのフロントエンドから Cookie 付きで呼ばれるため、許可オリジンを明示する
	if len(opts.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 導通確認用
	health := platformhandler.Health(opts.HealthChecks...)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)

	// 以降のルートはすべてセッションを復元してから処理する
	r.Use(guard.LoadSession(opts.Sessions, opts.Cookie))

	// 認証不要
	r.GET("/", platformhandler.Index)
	r.POST("/signup", h.Auth.Signup)
	r.POST("/login", h.Auth.Login)
	r.POST("/logout", h.Auth.Logout)
	r.GET("/session", h.Auth.Session)
	r.GET("/products", h.Products.List)
	r.GET("/product/:id", h.Products.Get)

	// ロール問わずログイン必須
	anyRole := r.Group("/", guard.Require(authentity.AllRoles...))
	{
		anyRole.GET("/profile", h.Auth.GetProfile)
		anyRole.PATCH("/profile", h.Auth.UpdateProfile)
	}

	// 顧客のみ
	customer := r.Group("/", guard.Require(authentity.RoleCustomer))
	{
		customer.GET("/dashboard/customer", h.Dashboard.Customer)
		customer.GET("/cart", h.Cart.Get)
		customer.POST("/cart/items", h.Cart.AddItem)
		customer.PATCH("/cart/items/:id", h.Cart.UpdateItem)
		customer.DELETE("/cart/items/:id", h.Cart.RemoveItem)
		customer.DELETE("/cart", h.Cart.Clear)
		customer.GET("/orders", h.Orders.ListMine)
	}

	// 職人・農家のみ
	business := r.Group("/", guard.Require(authentity.BusinessRoles...))
	{
		business.GET("/dashboard/business", h.Dashboard.Business)
		business.POST("/products/new", h.Products.Create)
		business.PATCH("/product/:id", h.Products.Update)
		business.DELETE("/product/:id", h.Products.Delete)
		business.GET("/customers", h.Orders.Customers)
		business.GET("/orders/manage", h.Orders.ListManaged)
		business.PATCH("/orders/manage/:id", h.Orders.UpdateStatus)
		business.GET("/storage/buckets", h.Products.ListBuckets)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "not found"})
	})

	return r
}
