package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/partshub/autospares-backend/api/controllers"
	"github.com/partshub/autospares-backend/api/middleware"
	authsvc "github.com/partshub/autospares-backend/internal/auth"
	cartsvc "github.com/partshub/autospares-backend/internal/cart"
	"github.com/partshub/autospares-backend/internal/catalog"
	checkoutsvc "github.com/partshub/autospares-backend/internal/checkout"
	ordersvc "github.com/partshub/autospares-backend/internal/orders"
	"github.com/partshub/autospares-backend/pkg/auth/session"
	"github.com/partshub/autospares-backend/pkg/config"
	"github.com/partshub/autospares-backend/pkg/logger"
	"github.com/partshub/autospares-backend/pkg/metrics"
	"github.com/partshub/autospares-backend/pkg/redis"
)

// Params bundles everything the HTTP router wires together.
type Params struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      controllers.Pinger
	Redis   *redis.Client
	Session session.AccessSessionChecker

	Catalog      catalog.Service
	CatalogAdmin catalog.AdminService
	Cart         cartsvc.Service
	Checkout     checkoutsvc.Service
	Orders       ordersvc.Service
	Auth         authsvc.Service
	Register     authsvc.RegisterService
	StoreAdmins  authsvc.AdminService

	HTTPMetrics *metrics.HTTPMetrics
	Registry    prometheus.Gatherer
}

// NewRouter assembles the API route tree with its middleware chain.
func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
	)

	requireAuth := middleware.Auth(cfg.JWT, p.Session, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, p.Session, logg)

	// Assign through explicit nil checks so an absent Redis client stays a
	// nil interface for the middleware and health probes.
	var cache controllers.Pinger
	var idemStore redis.IdempotencyStore
	var rateStore middleware.RateLimiterStore
	if p.Redis != nil {
		cache = p.Redis
		idemStore = p.Redis
		rateStore = p.Redis
	}

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
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, cache))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/home", controllers.Home(p.Catalog, logg))
		r.Get("/products", controllers.ListProducts(p.Catalog, logg))
		r.Get("/products/{slug}", controllers.GetProduct(p.Catalog, logg))
		r.Get("/categories", controllers.ListCategories(p.Catalog, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(
				middleware.AuthRateLimit(registerPolicy, rateStore, logg),
				middleware.Idempotency(idemStore, logg),
			).Post("/register", controllers.Register(p.Register, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).
				Post("/login", controllers.Login(p.Auth, logg))
			r.With(requireAuth).Post("/logout", controllers.Logout(p.Auth, logg))
			r.Post("/session", controllers.CreateSession(logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(optionalAuth, middleware.SessionKey(logg))
			r.Get("/", controllers.GetCart(p.Cart, logg))
			r.Post("/items", controllers.AddCartItem(p.Cart, logg))
			r.Patch("/items/{itemId}", controllers.UpdateCartItem(p.Cart, logg))
			r.Delete("/items/{itemId}", controllers.RemoveCartItem(p.Cart, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/checkout", controllers.CheckoutPrefill(p.Checkout, logg))
			r.With(middleware.Idempotency(idemStore, logg)).
				Post("/checkout", controllers.PlaceOrder(p.Checkout, logg))
			r.Get("/orders", controllers.ListOrders(p.Orders, logg))
			r.Get("/orders/{orderNumber}", controllers.GetOrder(p.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(requireAuth, middleware.RequireStaff(logg))

		r.Get("/categories", controllers.AdminListCategories(p.CatalogAdmin, logg))
		r.Post("/categories", controllers.AdminCreateCategory(p.CatalogAdmin, logg))
		r.Put("/categories/{id}", controllers.AdminUpdateCategory(p.CatalogAdmin, logg))
		r.Delete("/categories/{id}", controllers.AdminDeleteCategory(p.CatalogAdmin, logg))

		r.Get("/products", controllers.AdminListProducts(p.CatalogAdmin, logg))
		r.Post("/products", controllers.AdminCreateProduct(p.CatalogAdmin, logg))
		r.Get("/products/{id}", controllers.AdminGetProduct(p.CatalogAdmin, logg))
		r.Put("/products/{id}", controllers.AdminUpdateProduct(p.CatalogAdmin, logg))
		r.Post("/products/bulk-delete", controllers.AdminBulkDeleteProducts(p.CatalogAdmin, logg))
		r.Post("/products/{id}/images", controllers.AdminUploadProductImage(p.CatalogAdmin, logg))
		r.Delete("/product-images/{id}", controllers.AdminDeleteProductImage(p.CatalogAdmin, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSuperAdmin(logg))
			r.Get("/store-admins", controllers.AdminListStoreAdmins(p.StoreAdmins, logg))
			r.Post("/store-admins", controllers.AdminCreateStoreAdmin(p.StoreAdmins, logg))
		})
	})

	return r
}
