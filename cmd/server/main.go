package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/compliport/backend/internal/application/catalog"
	"github.com/compliport/backend/internal/application/entitlement"
	sessionapp "github.com/compliport/backend/internal/application/session"
	subapp "github.com/compliport/backend/internal/application/subscription"
	"github.com/compliport/backend/internal/domain/session"
	"github.com/compliport/backend/internal/infrastructure/auth"
	"github.com/compliport/backend/internal/infrastructure/config"
	"github.com/compliport/backend/internal/infrastructure/logger"
	"github.com/compliport/backend/internal/infrastructure/persistence"
	"github.com/compliport/backend/internal/infrastructure/scheduler"
	"github.com/compliport/backend/internal/interfaces/http/handler"
	"github.com/compliport/backend/internal/interfaces/http/middleware"
	"github.com/compliport/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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

	log.Info("Starting entitlement engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// The session blacklist backs instant revocation of evicted and
	// logged-out sessions. Redis keeps it shared across instances; the
	// in-memory fallback is for single-node and development setups.
	var blacklist auth.SessionBlacklist
	if cfg.Redis.Host != "" {
		redisBlacklist, err := auth.NewRedisSessionBlacklist(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		blacklist = redisBlacklist
		log.Info("Redis session blacklist enabled")
	} else {
		blacklist = auth.NewInMemorySessionBlacklist()
		log.Warn("Redis not configured, using in-memory session blacklist")
	}

	// Repositories
	tierRepo := persistence.NewGormTierRepository(db.DB)
	featureRepo := persistence.NewGormFeatureRepository(db.DB)
	tierFeatureRepo := persistence.NewGormTierFeatureRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	voucherRepo := persistence.NewGormVoucherRepository(db.DB)
	voucherRedeemer := persistence.NewGormVoucherRedeemer(db.DB)
	usageCounterRepo := persistence.NewGormUsageCounterRepository(db.DB)
	sessionRepo := persistence.NewGormSessionRepository(db.DB)

	// Services
	tokenService := auth.NewTokenService(cfg.Auth)
	catalogService := catalogapp.NewService(tierRepo, featureRepo, tierFeatureRepo, log)
	ledgerService := subapp.NewLedgerService(subscriptionRepo, tierRepo, sessionRepo, cfg.Entitlement.Term, log)
	voucherService := subapp.NewVoucherService(
		voucherRepo,
		voucherRedeemer,
		tierRepo,
		subapp.VoucherPolicy{OncePerOrganization: cfg.Entitlement.VoucherOncePerOrganization},
		cfg.Entitlement.Term,
		log,
	)
	sessionService := sessionapp.NewService(
		sessionRepo,
		tierRepo,
		ledgerService,
		tokenService,
		blacklist,
		session.Scope(cfg.Session.Scope),
		cfg.Session.IdleTimeout,
		log,
	)
	entitlementService := entitlement.NewService(featureRepo, tierFeatureRepo, usageCounterRepo, ledgerService, log)

	// Background sweeper for due subscriptions and idle sessions
	sweeper := scheduler.NewSweeper(scheduler.SweeperConfig{
		Interval:  cfg.Sweeper.Interval,
		BatchSize: cfg.Sweeper.BatchSize,
	}, ledgerService, sessionService, log)
	if cfg.Sweeper.Enabled {
		if err := sweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sweeper", zap.Error(err))
		}
	}

	// HTTP surface
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}

	sessionHandler := handler.NewSessionHandler(sessionService)

	router.Setup(engine, router.Config{
		Global: []gin.HandlerFunc{
			middleware.RequestID(),
			logger.GinMiddleware(log),
			logger.Recovery(log),
			middleware.Secure(),
			middleware.CORSWithConfig(corsConfig),
			middleware.BodyLimit(1 << 20),
			middleware.RateLimit(middleware.NewRateLimiter(300, time.Minute)),
		},
		Auth: middleware.SessionAuth(middleware.SessionAuthConfig{
			Tokens:   tokenService,
			Sessions: sessionService,
			Logger:   log,
		}),
		Public: []router.Registrar{
			handler.NewSystemHandler(version),
			router.Fn(sessionHandler.RegisterPublicRoutes),
		},
		Protected: []router.Registrar{
			handler.NewCatalogHandler(catalogService),
			handler.NewSubscriptionHandler(ledgerService),
			handler.NewVoucherHandler(voucherService),
			sessionHandler,
			handler.NewEntitlementHandler(entitlementService),
		},
	})

	engine.GET("/health", healthHandler(db))

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Sweeper.Enabled {
		if err := sweeper.Stop(ctx); err != nil {
			log.Error("Sweeper did not stop cleanly", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness including database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().UTC().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().UTC().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
