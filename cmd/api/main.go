package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nexusmarket/backend/api/routes"
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
	"github.com/nexusmarket/backend/internal/users"
	wishlistsvc "github.com/nexusmarket/backend/internal/wishlist"
	"github.com/nexusmarket/backend/pkg/config"
	"github.com/nexusmarket/backend/pkg/db"
	"github.com/nexusmarket/backend/pkg/db/models"
	"github.com/nexusmarket/backend/pkg/logger"
	"github.com/nexusmarket/backend/pkg/metrics"
	"github.com/nexusmarket/backend/pkg/migrate"
	"github.com/nexusmarket/backend/pkg/redis"
	"github.com/nexusmarket/backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if cfg.FeatureFlags.UseSQLite && cfg.FeatureFlags.AutoMigrate {
		if err := dbClient.DB().AutoMigrate(models.All()...); err != nil {
			logg.Error(context.Background(), "failed to auto-migrate sqlite schema", err)
			os.Exit(1)
		}
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	hub := inventory.NewHub(logg)
	defer hub.Close()

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	catalogRepo := catalog.NewRepository(conn)
	cartRepo := cartsvc.NewRepository(conn)
	wishlistRepo := wishlistsvc.NewRepository(conn)
	reviewRepo := reviewsvc.NewRepository(conn)
	orderRepo := ordersvc.NewRepository(conn)
	paymentRepo := payments.NewRepository(conn)
	recRepo := recsvc.NewRepository(conn)

	authService, err := authsvc.NewService(userRepo, redisClient, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo, hub)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartRepo, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlistsvc.NewService(wishlistRepo, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	reviewService, err := reviewsvc.NewService(reviewRepo, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create review service", err)
		os.Exit(1)
	}

	orderService, err := ordersvc.NewService(orderRepo, cartRepo, catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	recommendationService, err := recsvc.NewService(recRepo, catalogRepo, recsvc.NewOpenAICopywriter(cfg.OpenAI), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create recommendation service", err)
		os.Exit(1)
	}

	adminService, err := adminsvc.NewService(conn, userRepo, catalogRepo, orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	sellerService, err := sellersvc.NewService(conn, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create seller service", err)
		os.Exit(1)
	}

	newsletterService, err := newslettersvc.NewService(conn)
	if err != nil {
		logg.Error(context.Background(), "failed to create newsletter service", err)
		os.Exit(1)
	}

	seedService, err := seedsvc.NewService(conn, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create seed service", err)
		os.Exit(1)
	}

	var paymentCoordinator payments.Coordinator
	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Warn(logg.WithFields(context.Background(), map[string]any{"error": err.Error()}), "stripe unavailable, payment endpoints disabled")
	} else {
		paymentCoordinator, err = payments.NewCoordinator(payments.CoordinatorDeps{
			Transactions: paymentRepo,
			Orders:       orderRepo,
			Catalog:      catalogRepo,
			Users:        userRepo,
			Gateway:      payments.NewStripeGateway(stripeClient, cfg.Checkout),
			Broadcast:    hub,
			Tx:           dbClient,
			Metrics:      checkoutMetrics,
			Logger:       logg,
			Currency:     cfg.Checkout.Currency,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create payment coordinator", err)
			os.Exit(1)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			Redis:           redisClient,
			HTTPMetrics:     httpMetrics,
			Registry:        registry,
			Hub:             hub,
			Auth:            authService,
			Catalog:         catalogService,
			Cart:            cartService,
			Wishlist:        wishlistService,
			Reviews:         reviewService,
			Orders:          orderService,
			Payments:        paymentCoordinator,
			Recommendations: recommendationService,
			Admin:           adminService,
			Sellers:         sellerService,
			Newsletter:      newsletterService,
			Seed:            seedService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
