package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appledger "github.com/flowcredit/backend/internal/application/ledger"
	apppromo "github.com/flowcredit/backend/internal/application/promo"
	apptopup "github.com/flowcredit/backend/internal/application/topup"
	"github.com/flowcredit/backend/internal/domain/topup"
	"github.com/flowcredit/backend/internal/infrastructure/auth"
	"github.com/flowcredit/backend/internal/infrastructure/cache"
	"github.com/flowcredit/backend/internal/infrastructure/config"
	"github.com/flowcredit/backend/internal/infrastructure/logger"
	"github.com/flowcredit/backend/internal/infrastructure/payment"
	"github.com/flowcredit/backend/internal/infrastructure/persistence"
	"github.com/flowcredit/backend/internal/interfaces/http/handler"
	"github.com/flowcredit/backend/internal/interfaces/http/middleware"
	"github.com/flowcredit/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
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

	log.Info("Starting FlowCredit Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
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

	// Repositories and stores
	ledgerStore := persistence.NewGormLedgerStore(db.DB)
	accountRepo := persistence.NewGormCreditAccountRepository(db.DB)
	transactionRepo := persistence.NewGormCreditTransactionRepository(db.DB)
	costRepo := persistence.NewGormWorkflowCostRepository(db.DB)
	voucherRepo := persistence.NewGormVoucherRepository(db.DB)
	redemptionRepo := persistence.NewGormRedemptionRepository(db.DB)
	redemptionStore := persistence.NewGormRedemptionStore(db.DB)
	orderRepo := persistence.NewGormTopUpOrderRepository(db.DB)
	completionStore := persistence.NewGormCompletionStore(db.DB)

	// Workflow cost cache in front of the cost table
	costProvider := cache.NewCachedCostProvider(costRepo,
		cache.WithCostCacheTTL(cfg.Credit.CostCacheTTL),
		cache.WithCostCacheLogger(log),
	)

	// Callback dedup store: Redis when reachable, in-memory otherwise
	idempotencyFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := idempotencyFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Payment gateway
	stripeGateway, err := payment.NewStripeGateway(&payment.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
		IsTestMode:    cfg.Stripe.IsTestMode,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize Stripe gateway", zap.Error(err))
	}

	// Package catalog from configuration
	packages := make([]topup.Package, 0, len(cfg.Packages))
	for i := range cfg.Packages {
		pc := &cfg.Packages[i]
		price, err := pc.ParsePrice()
		if err != nil {
			log.Fatal("Invalid package price", zap.String("package", pc.ID), zap.Error(err))
		}
		packages = append(packages, topup.Package{
			ID:       pc.ID,
			Credits:  pc.Credits,
			Price:    price,
			Currency: pc.Currency,
			Label:    pc.Label,
		})
	}

	// Application services
	ledgerService := appledger.NewService(ledgerStore, accountRepo, transactionRepo,
		appledger.WithSignupBonus(cfg.Credit.SignupBonus),
		appledger.WithLogger(log),
	)
	costGate := appledger.NewCostGate(costProvider, costRepo, ledgerStore, accountRepo, log)
	redemptionService := apppromo.NewRedemptionService(voucherRepo, redemptionRepo, redemptionStore, log)
	voucherService := apppromo.NewVoucherService(voucherRepo, log)
	topupService := apptopup.NewService(apptopup.ServiceConfig{
		OrderRepo:   orderRepo,
		Completions: completionStore,
		Accounts:    accountRepo,
		Gateway:     stripeGateway,
		Idempotency: idempotencyStore,
		Packages:    packages,
		SuccessURL:  cfg.Stripe.SuccessURL,
		CancelURL:   cfg.Stripe.CancelURL,
		DedupTTL:    cfg.Credit.CallbackDedupTTL,
		Logger:      log,
	})

	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP handlers
	creditHandler := handler.NewCreditHandler(ledgerService, costGate, redemptionService)
	topupHandler := handler.NewTopUpHandler(topupService, log)
	adminHandler := handler.NewAdminHandler(ledgerService, costGate, voucherService)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	routerCfg := router.Config{
		JWTService:       jwtService,
		CreditHandler:    creditHandler,
		TopUpHandler:     topupHandler,
		AdminHandler:     adminHandler,
		SystemHandler:    systemHandler,
		Logger:           log,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
	}
	if cfg.HTTP.RateLimitEnabled {
		routerCfg.RateLimitRequests = cfg.HTTP.RateLimitRequests
		routerCfg.RateLimitWindow = cfg.HTTP.RateLimitWindow
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	router.Setup(engine, routerCfg)

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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
