package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	draftsapp "github.com/shopbridge/backend/internal/application/drafts"
	listingsapp "github.com/shopbridge/backend/internal/application/listings"
	ordersapp "github.com/shopbridge/backend/internal/application/orders"
	"github.com/shopbridge/backend/internal/domain/order"
	"github.com/shopbridge/backend/internal/infrastructure/config"
	"github.com/shopbridge/backend/internal/infrastructure/ebay"
	"github.com/shopbridge/backend/internal/infrastructure/logger"
	"github.com/shopbridge/backend/internal/infrastructure/persistence"
	"github.com/shopbridge/backend/internal/infrastructure/scheduler"
	"github.com/shopbridge/backend/internal/infrastructure/shopify"
	"github.com/shopbridge/backend/internal/infrastructure/webhook"
	"github.com/shopbridge/backend/internal/interfaces/http/handler"
	"github.com/shopbridge/backend/internal/interfaces/http/middleware"
	"github.com/shopbridge/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ShopBridge sync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logger
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis client for the cross-process run lock
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	// Repositories
	listingMappingRepo := persistence.NewGormListingMappingRepository(db.DB)
	orderMappingRepo := persistence.NewGormOrderMappingRepository(db.DB)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)
	draftRepo := persistence.NewGormDraftRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	webhookEventRepo := persistence.NewGormWebhookEventRepository(db.DB)

	// Platform clients
	storefront, err := shopify.NewClient(&shopify.Config{
		ShopDomain:     cfg.Shopify.ShopDomain,
		AccessToken:    cfg.Shopify.AccessToken,
		APIVersion:     cfg.Shopify.APIVersion,
		TimeoutSeconds: cfg.Shopify.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to build storefront client", zap.Error(err))
	}

	tokens, err := ebay.NewStaticTokenProvider(cfg.Ebay.Token)
	if err != nil {
		log.Fatal("Failed to build marketplace token provider", zap.Error(err))
	}
	marketplace, err := ebay.NewClient(&ebay.Config{
		MarketplaceID:  cfg.Ebay.MarketplaceID,
		IsSandbox:      cfg.Ebay.Sandbox,
		TimeoutSeconds: cfg.Ebay.TimeoutSeconds,
	}, tokens)
	if err != nil {
		log.Fatal("Failed to build marketplace client", zap.Error(err))
	}

	// Application services
	importLimiter := ordersapp.NewRateLimiter(cfg.Importer.CreateMinInterval, cfg.Importer.CreateHourlyCap)
	importer := ordersapp.NewImporter(
		ordersapp.Config{
			DefaultLookback: cfg.Importer.DefaultLookback,
			MaxLookback:     cfg.Importer.MaxLookback,
			SourceTagPrefix: cfg.Importer.SourceTagPrefix,
			Fuzzy: order.FuzzyMatchConfig{
				Window:                    cfg.Importer.FuzzyWindow,
				AmountToleranceMinorUnits: cfg.Importer.FuzzyAmountCents,
			},
			MinInterval: cfg.Importer.CreateMinInterval,
			HourlyCap:   cfg.Importer.CreateHourlyCap,
		},
		orderMappingRepo, syncLogRepo, storefront, marketplace, importLimiter, log,
	)

	reconciler := listingsapp.NewReconciler(
		listingsapp.Config{BatchDelay: cfg.Reconciler.BatchDelay},
		listingMappingRepo, syncLogRepo, storefront, marketplace, log,
	)

	draftService := draftsapp.NewService(draftRepo, settingsRepo, syncLogRepo, storefront, log)

	// Webhook processor: intake persists events before ack, the consumer
	// loop reconciles affected SKUs
	webhookProcessor := webhook.NewProcessor(
		webhook.ProcessorConfig{
			QueueSize:   cfg.Webhook.QueueSize,
			ReplayBatch: cfg.Webhook.ReplayBatch,
		},
		webhookEventRepo, reconciler, log,
	)
	if err := webhookProcessor.Start(context.Background()); err != nil {
		log.Fatal("Failed to start webhook processor", zap.Error(err))
	}
	defer webhookProcessor.Stop(context.Background())

	// Background sync loops, guarded by the Redis run lock
	if cfg.Scheduler.Enabled {
		runLock := scheduler.NewRunLock(redisClient, "sync:runlock:", cfg.Scheduler.LockTTL)
		syncScheduler := scheduler.NewSyncScheduler(
			scheduler.Config{
				OrderInterval:     cfg.Scheduler.OrderInterval,
				InventoryInterval: cfg.Scheduler.InventoryInterval,
			},
			importer, reconciler, settingsRepo, runLock, log,
		)
		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer syncScheduler.Stop(context.Background())
		log.Info("Sync scheduler started",
			zap.Duration("order_interval", cfg.Scheduler.OrderInterval),
			zap.Duration("inventory_interval", cfg.Scheduler.InventoryInterval),
		)
	}

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewSyncHandler(importer, reconciler, syncLogRepo)).
		Register(handler.NewDraftHandler(draftService)).
		Register(handler.NewSettingsHandler(settingsRepo)).
		Register(handler.NewWebhookHandler(webhookIntake{webhookProcessor})).
		Register(handler.NewSystemHandler()).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

// webhookIntake adapts webhook.Processor.Enqueue, which also returns the
// persisted event, to the error-only handler.WebhookIntake interface.
type webhookIntake struct {
	p *webhook.Processor
}

func (w webhookIntake) Enqueue(ctx context.Context, source, topic, entityID string, payload []byte) error {
	_, err := w.p.Enqueue(ctx, source, topic, entityID, payload)
	return err
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
