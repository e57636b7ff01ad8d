package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	_ "github.com/storefront/backend/docs"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	notificationapp "github.com/storefront/backend/internal/application/notification"
	orderapp "github.com/storefront/backend/internal/application/order"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
	wishlistapp "github.com/storefront/backend/internal/application/wishlist"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/notify"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/printing"
	"github.com/storefront/backend/internal/infrastructure/realtime"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/infrastructure/shipping"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Storefront API
//	@version		1.0
//	@description	Storefront backend: catalog, cart, checkout, payments and shipping

//	@host		localhost:8080
//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Telemetry needs a logger before the OTLP log core exists, so the
	// console logger is built twice.
	bootLog := logger.New(cfg.Log)
	providers, err := telemetry.Setup(context.Background(), cfg.Telemetry, version, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := logger.New(cfg.Log, providers.LogCore(logger.ParseLevel(cfg.Log.Level)))
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	sqlLog := logger.NewSQLLogger(log, cfg.Log.Level, logger.SQLOptions{
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
		FullSQL:       cfg.Telemetry.DBLogFullSQL,
	})
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(sqlLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	meter := providers.Meter(cfg.Telemetry.ServiceName)
	if err := telemetry.InstrumentDB(db.DB, cfg.Telemetry, meter, log); err != nil {
		log.Warn("Database instrumentation disabled", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis backed stores, with an in-memory fallback outside production
	stores, err := cache.NewStores(context.Background(), cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}

	storeMetrics, err := telemetry.NewStoreMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create store metrics", zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	otpRepo := persistence.NewGormOTPRepository(db.DB)
	wishlistRepo := persistence.NewGormWishlistRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)

	// Event bus and subscribers
	eventBus := event.NewInMemoryEventBus(log)
	hub := realtime.NewHub(realtime.WithLogger(log))
	eventBus.Subscribe(notificationapp.NewEventHandler(notificationRepo, log))
	eventBus.Subscribe(hub)
	eventBus.Subscribe(storeMetrics)

	var forwarder *event.KafkaForwarder
	if cfg.Kafka.Enabled {
		writer, err := event.NewKafkaWriter(cfg.Kafka)
		if err != nil {
			log.Fatal("Failed to create kafka writer", zap.Error(err))
		}
		// forwards every domain event; consumers filter by type header
		forwarder = event.NewKafkaForwarder(writer, nil,
			event.WithForwarderLogger(log),
			event.WithWriteTimeout(5*time.Second),
		)
		eventBus.Subscribe(forwarder)
		log.Info("Kafka forwarding enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// External providers
	gateway, err := payment.NewCashfreeAdapter(cfg.Cashfree, payment.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to configure payment gateway", zap.Error(err))
	}
	courier, err := shipping.NewShiprocketAdapter(cfg.Shiprocket, shipping.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to configure courier provider", zap.Error(err))
	}

	// Application services
	productOpts := []catalogapp.ProductServiceOption{
		catalogapp.WithProductCache(stores.Products, cfg.Checkout.ProductCacheTTL),
		catalogapp.WithProductEventPublisher(eventBus),
		catalogapp.WithProductLogger(log),
	}
	if cfg.Storage.Enabled {
		images, err := storage.NewS3ImageStorage(context.Background(), cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to configure image storage", zap.Error(err))
		}
		productOpts = append(productOpts, catalogapp.WithImageStorage(images))
	} else {
		log.Warn("Image storage disabled; uploads will be rejected")
	}
	productService := catalogapp.NewProductService(productRepo, productOpts...)
	cartService := cartapp.NewCartService(cartRepo, productRepo, log)
	shippingService := shippingapp.NewService(courier, cfg.Shiprocket.PickupPostcode, log,
		shippingapp.WithQuoteRecorder(storeMetrics))
	userService := identityapp.NewUserService(userRepo, log)
	wishlistService := wishlistapp.NewService(wishlistRepo, productRepo, log)
	notificationService := notificationapp.NewService(notificationRepo, log)

	orderService := orderapp.NewOrderService(orderRepo, productRepo, productService, gateway,
		orderapp.Config{
			ReturnURL:  cfg.Cashfree.ReturnURL,
			NotifyURL:  cfg.Cashfree.NotifyURL,
			SessionTTL: cfg.Cashfree.SessionTTL,
			Currency:   cfg.Checkout.Currency,
		},
		orderapp.WithEventPublisher(eventBus),
		orderapp.WithIdempotencyStore(stores.Idempotency),
		orderapp.WithRateQuoter(shippingService),
		orderapp.WithUserCounter(userService),
		orderapp.WithLogger(log),
	)

	// Authentication
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if stores.Client != nil {
		blacklist = auth.NewRedisTokenBlacklistWithClient(stores.Client)
	}
	otpSender := notify.NewLogSender(log, !cfg.App.IsProduction())
	authService := identityapp.NewAuthService(userRepo, otpRepo, jwtService, otpSender, log,
		identityapp.WithTokenBlacklist(blacklist),
		identityapp.WithUserEventPublisher(eventBus),
	)

	// Invoices are rendered by headless Chrome
	var invoices handler.InvoiceRenderer
	var pdf *printing.ChromedpRenderer
	if cfg.Checkout.InvoiceEnabled {
		pdf = printing.NewChromedpRenderer(printing.ChromedpConfig{
			RemoteURL: cfg.Checkout.ChromeURL,
			NoSandbox: true,
			Logger:    log,
		})
		renderer, err := printing.NewInvoiceRenderer(pdf, cfg.Checkout.StoreName, cfg.Checkout.Currency)
		if err != nil {
			log.Fatal("Failed to create invoice renderer", zap.Error(err))
		}
		invoices = renderer
	}

	// Background jobs
	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.New(cfg.Scheduler.JobTimeout, log)
		for _, job := range []scheduler.Job{
			scheduler.PaymentReconcileJob(orderService,
				cfg.Scheduler.ReconcileInterval,
				cfg.Scheduler.ReconcileGrace,
				cfg.Scheduler.ReconcileBatchSize,
				storeMetrics, log,
			),
			scheduler.OTPCleanupJob(authService, cfg.Scheduler.OTPCleanupInterval),
		} {
			if err := jobs.Add(job); err != nil {
				log.Fatal("Failed to register job", zap.String("job", job.Name), zap.Error(err))
			}
		}
		if err := jobs.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		log.Info("Scheduler started",
			zap.Duration("reconcile_interval", cfg.Scheduler.ReconcileInterval),
			zap.Duration("otp_cleanup_interval", cfg.Scheduler.OTPCleanupInterval),
		)
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	// Order matters: the request id is needed by recovery and the access
	// log, and tracing must wrap everything that creates child spans.
	engine.Use(middleware.RequestID())
	if providers.TracingEnabled() {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}
	engine.Use(logger.Recovery(log, middleware.RecoveryResponse))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.MetricsEnabled {
		httpMetrics, err := middleware.HTTPMetrics(meter)
		if err != nil {
			log.Fatal("Failed to create HTTP metrics", zap.Error(err))
		}
		engine.Use(httpMetrics)
	}
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.Profiling())
	}
	engine.Use(middleware.SecureHeaders(cfg.App.IsProduction()))
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(newLimiter(stores.Client, "ratelimit:api:",
			cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow), log))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	guards := router.Guards{
		RequireAuth: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
		OptionalAuth: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Optional:       true,
			Logger:         log,
		}),
		SocketAuth: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:      jwtService,
			TokenBlacklist:  blacklist,
			AllowQueryToken: true,
			Logger:          log,
		}),
		RequireAdmin: middleware.RequireAdmin(),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		guards.AuthRateLimit = middleware.RateLimit(newLimiter(stores.Client, "ratelimit:auth:",
			cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow), log)
	}
	if providers.TracingEnabled() {
		guards.AfterAuth = middleware.SpanEnricher()
	}

	checks := map[string]handler.Pinger{"database": db}
	if stores.Client != nil {
		checks["cache"] = redisPinger{client: stores.Client}
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, checks)

	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Products:      handler.NewProductHandler(productService),
		Cart:          handler.NewCartHandler(cartService),
		Orders:        handler.NewOrderHandler(orderService, invoices),
		Shipping:      handler.NewShippingHandler(shippingService),
		Payments:      handler.NewPaymentWebhookHandler(orderService, storeMetrics),
		Profile:       handler.NewProfileHandler(userService),
		Wishlist:      handler.NewWishlistHandler(wishlistService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Realtime:      handler.NewRealtimeHandler(hub, corsConfig),
		Admin:         handler.NewAdminHandler(orderService, userService),
		System:        systemHandler,
	}

	// Probes and docs live outside /api
	router.MountProbes(engine, systemHandler)
	if cfg.Swagger.Enabled {
		router.MountSwagger(engine, middleware.SwaggerProtection(cfg.Swagger))
		log.Info("Swagger UI enabled", zap.Strings("allowed_ips", cfg.Swagger.AllowedIPs))
	}

	r := router.NewRouter(engine)
	r.RegisterGroups(router.Storefront(handlers, guards)...)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if jobs != nil {
		if err := jobs.Stop(ctx); err != nil {
			log.Error("Error stopping scheduler", zap.Error(err))
		}
	}
	hub.Close()
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if forwarder != nil {
		if err := forwarder.Close(); err != nil {
			log.Error("Error closing kafka writer", zap.Error(err))
		}
	}
	if pdf != nil {
		if err := pdf.Close(); err != nil {
			log.Error("Error closing browser", zap.Error(err))
		}
	}
	if err := stores.Close(); err != nil {
		log.Error("Error closing cache", zap.Error(err))
	}
	if err := providers.Shutdown(ctx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newLimiter shares counters through Redis when it is available
func newLimiter(client redis.UniversalClient, prefix string, limit int, per time.Duration) middleware.Limiter {
	if client != nil {
		return middleware.NewRedisRateLimiter(client, prefix, limit, per)
	}
	return middleware.NewRateLimiter(limit, per)
}

type redisPinger struct {
	client redis.UniversalClient
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
