package app

import (
	"embed"
	"fmt"
	nethttp "net/http"
	"time"

	"storefront/config"
	"storefront/internal/controller/http"
	"storefront/internal/controller/http/handlers"
	"storefront/internal/domain/delivery"
	"storefront/internal/domain/order"
	"storefront/internal/external/blobstore"
	"storefront/internal/external/checkout"
	cart_repo "storefront/internal/repo/cart"
	delivery_repo "storefront/internal/repo/delivery"
	order_repo "storefront/internal/repo/order"
	"storefront/pkg/health"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/pkg/postgres"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

//go:embed migrations/*.sql
var MIGRATION_FS embed.FS

func Run(cfg config.Config) {
	l := logger.New(cfg.LogLevel)

	engine := NewGinEngine(l)

	pool, err := postgres.New(cfg.PgURL, postgres.MaxPoolSize(cfg.PgPoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	orderRepo := order_repo.NewPgOrderRepo(pool)
	deliveryRepo := delivery_repo.NewPgDeliveryRepo(pool)
	cartStore := cart_repo.NewRedisCartStore(redisClient)

	checkoutClient := checkout.New(
		cfg.CheckoutBaseURL, cfg.CheckoutSessionPath, cfg.CheckoutSecretKey, cfg.Currency,
		&nethttp.Client{Timeout: cfg.HTTPCheckoutClientTimeout},
	)
	slipStore := blobstore.New(
		cfg.SlipUploadURL, cfg.SlipUploadPreset,
		&nethttp.Client{Timeout: cfg.HTTPSlipClientTimeout},
	)

	orderService := order.NewService(orderRepo, checkoutClient, slipStore, cartStore, l, cfg.DeliveryFee)
	deliveryService := delivery.NewService(deliveryRepo)

	orderHandler := handlers.NewOrderHandler(orderService)
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService)

	router := http.NewRouter(orderHandler, deliveryHandler, cfg.JWTSecret)
	router.SetUp(engine)

	healthRegistry := health.NewRegistry(
		health.NewPostgresChecker(pool.Pool),
		health.NewRedisChecker(redisClient),
	)
	engine.GET("/health/live", health.LivenessHandler())
	engine.GET("/health/ready", health.ReadinessHandler(healthRegistry, 5*time.Second))
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	if err := ApplyMigrations(cfg.PgURL, MIGRATION_FS); err != nil {
		l.Fatal(fmt.Errorf("app - Run - ApplyMigrations: %w", err))
	}

	if err := engine.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		l.Fatal(fmt.Errorf("app - Run - engine.Run: %w", err))
	}
}
