package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nexusmarket/backend/api/controllers"
	"github.com/nexusmarket/backend/api/middleware"
	adminsvc "github.com/nexusmarket/backend/internal/admin"
	authsvc "github.com/nexusmarket/backend/internal/auth"
	cartsvc "github.com/nexusmarket/backend/internal/cart"
	"github.com/nexusmarket/backend/internal/catalog"
	"github.com/nexusmarket/backend/internal/inventory"
	newslettersvc "github.com/nexusmarket/backend/internal/newsletter"
	ordersvc "github.com/nexusmarket/backend/internal/orders"
	"github.com/nexusmarket/backend/internal/payments"
	recsvc "github.com/nexusmarket/backend/internal/recommendations"
	reviewsvc "github.com/nexusmarket/backend/internal/reviews"
	seedsvc "github.com/nexusmarket/backend/internal/seed"
	sellersvc "github.com/nexusmarket/backend/internal/sellers"
	wishlistsvc "github.com/nexusmarket/backend/internal/wishlist"
	"github.com/nexusmarket/backend/pkg/config"
	"github.com/nexusmarket/backend/pkg/enums"
	"github.com/nexusmarket/backend/pkg/logger"
	"github.com/nexusmarket/backend/pkg/metrics"
	"github.com/nexusmarket/backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *redis.Client
	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry
	Hub         *inventory.Hub

	Auth            authsvc.Service
	Catalog         catalog.Service
	Cart            cartsvc.Service
	Wishlist        wishlistsvc.Service
	Reviews         reviewsvc.Service
	Orders          ordersvc.Service
	Payments        payments.Coordinator
	Recommendations recsvc.Service
	Admin           adminsvc.Service
	Sellers         sellersvc.Service
	Newsletter      newslettersvc.Service
	Seed            seedsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(),
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
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/ws/inventory", controllers.InventoryWS(deps.Hub, logg))

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.Register(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.Login(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Redis, logg))
			r.Get("/me", controllers.Me(deps.Auth, logg))
			r.Post("/logout", controllers.Logout(deps.Auth, logg))
		})
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", controllers.ListCategories(deps.Catalog, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Redis, logg), middleware.RequireRole(enums.RoleAdmin, logg))
			r.Post("/", controllers.CreateCategory(deps.Catalog, logg))
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/{productID}", controllers.GetProduct(deps.Catalog, logg))
		r.Get("/{productID}/reviews", controllers.ListProductReviews(deps.Reviews, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Redis, logg), middleware.RequireAnyRole(logg, enums.RoleSeller, enums.RoleAdmin))
			r.Post("/", controllers.CreateProduct(deps.Catalog, logg))
			r.Put("/{productID}", controllers.UpdateProduct(deps.Catalog, logg))
			r.Delete("/{productID}", controllers.DeleteProduct(deps.Catalog, logg))
		})
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Redis, logg))
		r.Get("/", controllers.GetCart(deps.Cart, logg))
		r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
		r.Put("/", controllers.ReplaceCart(deps.Cart, logg))
		r.Delete("/items/{productID}", controllers.RemoveCartItem(deps.Cart, logg))
		r.Delete("/", controllers.ClearCart(deps.Cart, logg))
	})

	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Redis, logg))
		r.Get("/", controllers.GetWishlist(deps.Wishlist, logg))
		r.Post("/", controllers.AddWishlistItem(deps.Wishlist, logg))
		r.Delete("/{productID}", controllers.RemoveWishlistItem(deps.Wishlist, logg))
	})

	r.Route("/api/reviews", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Redis, logg))
		r.Post("/", controllers.CreateReview(deps.Reviews, deps.Auth, logg))
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Redis, logg))
		r.Post("/", controllers.CreateOrder(deps.Orders, logg))
		r.Get("/", controllers.ListOrders(deps.Orders, logg))
		r.Get("/{orderID}", controllers.GetOrder(deps.Orders, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
			r.Put("/{orderID}/status", controllers.UpdateOrderStatus(deps.Orders, logg))
		})
	})

	r.Route("/api/payments", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Redis, logg))
		r.Post("/create-session", controllers.CreatePaymentSession(deps.Payments, logg))
		r.Get("/status/{sessionID}", controllers.PaymentSessionStatus(deps.Payments, logg))
	})

	r.Post("/api/webhook/payment", controllers.PaymentWebhook(deps.Payments, logg))

	r.Route("/api/recommendations", func(r chi.Router) {
		r.Get("/trending", controllers.TrendingRecommendations(deps.Recommendations, logg))
		r.Get("/ai/{productID}", controllers.SimilarProducts(deps.Recommendations, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Redis, logg))
			r.Get("/personal", controllers.PersonalRecommendations(deps.Recommendations, logg))
		})
	})

	r.Route("/api/seller", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Redis, logg), middleware.RequireAnyRole(logg, enums.RoleSeller, enums.RoleAdmin))
		r.Get("/products", controllers.SellerProducts(deps.Sellers, logg))
		r.Get("/stats", controllers.SellerStats(deps.Sellers, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Redis, logg), middleware.RequireRole(enums.RoleAdmin, logg))
		r.Get("/stats", controllers.AdminStats(deps.Admin, logg))
		r.Get("/users", controllers.AdminListUsers(deps.Admin, logg))
		r.Put("/users/{userID}/role", controllers.AdminUpdateUserRole(deps.Admin, logg))
	})

	r.Post("/api/newsletter/subscribe", controllers.NewsletterSubscribe(deps.Newsletter, logg))

	if !cfg.App.IsProd() {
		r.Post("/api/seed", controllers.SeedDemoData(deps.Seed, cfg, logg))
	}

	return r
}
