package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mercantile-app/mercantile-backend/api/controllers"
	"github.com/mercantile-app/mercantile-backend/api/middleware"
	"github.com/mercantile-app/mercantile-backend/internal/analytics"
	authsvc "github.com/mercantile-app/mercantile-backend/internal/auth"
	cartsvc "github.com/mercantile-app/mercantile-backend/internal/cart"
	discountsvc "github.com/mercantile-app/mercantile-backend/internal/discounts"
	"github.com/mercantile-app/mercantile-backend/internal/items"
	ordersvc "github.com/mercantile-app/mercantile-backend/internal/orders"
	"github.com/mercantile-app/mercantile-backend/internal/users"
	"github.com/mercantile-app/mercantile-backend/pkg/auth/session"
	"github.com/mercantile-app/mercantile-backend/pkg/config"
	"github.com/mercantile-app/mercantile-backend/pkg/db"
	"github.com/mercantile-app/mercantile-backend/pkg/enums"
	"github.com/mercantile-app/mercantile-backend/pkg/logger"
	"github.com/mercantile-app/mercantile-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Registry *prometheus.Registry

	Sessions  session.AccessSessionChecker
	CartStore *cartsvc.SessionStore

	AuthService      authsvc.Service
	CartService      cartsvc.Service
	DiscountService  discountsvc.Service
	OrderService     ordersvc.Service
	AnalyticsService analytics.Service

	ItemRepo    *items.Repository
	AddressRepo *users.AddressRepository
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/items", controllers.ItemList(deps.ItemRepo, logg))
		r.Get("/items/{itemId}", controllers.ItemDetail(deps.ItemRepo, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.CartStore, deps.CartService, deps.DiscountService, logg))
			r.Delete("/", controllers.CartClear(deps.CartStore, logg))
			r.Post("/items/{itemId}", controllers.CartAddItem(deps.CartStore, deps.ItemRepo, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.CartStore, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(deps.AddressRepo, logg))
			r.Post("/", controllers.AddressCreate(deps.AddressRepo, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.OrderService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrderService, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.OrderService, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/marketplace", controllers.MarketplaceReports(deps.AnalyticsService, logg))
		})

		r.Route("/merchant", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleMerchant.String(), logg))

			r.Route("/items", func(r chi.Router) {
				r.Get("/", controllers.MerchantItemList(deps.ItemRepo, logg))
				r.Post("/", controllers.MerchantItemCreate(deps.ItemRepo, logg))
				r.Put("/{itemId}", controllers.MerchantItemUpdate(deps.ItemRepo, logg))
			})

			r.Route("/discounts", func(r chi.Router) {
				r.Get("/", controllers.DiscountTierList(deps.DiscountService, logg))
				r.Post("/", controllers.DiscountTierCreate(deps.DiscountService, logg))
				r.Put("/{tierId}", controllers.DiscountTierUpdate(deps.DiscountService, logg))
				r.Delete("/{tierId}", controllers.DiscountTierDelete(deps.DiscountService, logg))
			})

			r.Post("/order-items/{orderItemId}/fulfill", controllers.MerchantFulfillItem(deps.OrderService, logg))
			r.Get("/dashboard", controllers.MerchantDashboard(deps.AnalyticsService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))
			r.Post("/orders/{orderId}/ship", controllers.AdminShipOrder(deps.OrderService, logg))
		})
	})

	return r
}
