package router

import (
	"time"

	"github.com/flowcredit/backend/internal/infrastructure/auth"
	"github.com/flowcredit/backend/internal/interfaces/http/handler"
	"github.com/flowcredit/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Config carries everything the route table needs.
type Config struct {
	JWTService    *auth.JWTService
	CreditHandler *handler.CreditHandler
	TopUpHandler  *handler.TopUpHandler
	AdminHandler  *handler.AdminHandler
	SystemHandler *handler.SystemHandler
	Logger        *zap.Logger

	// MaxBodySize limits request body size in bytes; 0 disables the limit
	MaxBodySize int64
	// CORSAllowOrigins is the cross-origin whitelist; empty rejects all
	CORSAllowOrigins []string
	// RateLimitRequests caps requests per RateLimitWindow per caller; 0 disables.
	// Authenticated callers are keyed by user ID, anonymous ones by client IP.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Setup registers the full route table on the engine. Health probes and the
// gateway webhook are unauthenticated; the webhook authenticates via payload
// signature instead. Everything under /admin additionally requires the admin
// role.
func Setup(engine *gin.Engine, cfg Config) {
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Secure())
	if len(cfg.CORSAllowOrigins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowOrigins = cfg.CORSAllowOrigins
		engine.Use(middleware.CORSWithConfig(corsCfg))
	}
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	if cfg.RateLimitRequests > 0 {
		window := cfg.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimitRequests, window)))
	}

	engine.GET("/healthz", cfg.SystemHandler.Healthz)
	engine.GET("/readyz", cfg.SystemHandler.Readyz)

	api := engine.Group("/api/v1")

	api.POST("/webhooks/stripe", cfg.TopUpHandler.StripeWebhook)

	authed := api.Group("", middleware.JWTAuthMiddleware(cfg.JWTService, cfg.Logger))

	credits := authed.Group("/credits")
	credits.POST("/account", cfg.CreditHandler.CreateAccount)
	credits.GET("/balance", cfg.CreditHandler.GetBalance)
	credits.GET("/transactions", cfg.CreditHandler.ListTransactions)
	credits.POST("/charge", cfg.CreditHandler.Charge)
	credits.GET("/costs", cfg.CreditHandler.ListCosts)
	credits.POST("/vouchers/redeem", cfg.CreditHandler.RedeemVoucher)
	credits.GET("/packages", cfg.TopUpHandler.ListPackages)
	credits.POST("/topup", cfg.TopUpHandler.CreateOrder)
	credits.GET("/topup", cfg.TopUpHandler.ListOrders)
	credits.GET("/topup/:id", cfg.TopUpHandler.GetOrder)

	admin := authed.Group("/admin", middleware.RequireAdmin())
	admin.POST("/users/:id/credits/adjust", cfg.AdminHandler.AdjustCredits)
	admin.GET("/users/:id/credits/consistency", cfg.AdminHandler.GetConsistency)
	admin.GET("/workflow-costs", cfg.AdminHandler.ListWorkflowCosts)
	admin.PUT("/workflow-costs", cfg.AdminHandler.UpdateWorkflowCosts)
	admin.GET("/vouchers", cfg.AdminHandler.ListVouchers)
	admin.POST("/vouchers", cfg.AdminHandler.CreateVoucher)
	admin.PUT("/vouchers/:id", cfg.AdminHandler.UpdateVoucher)

	system := authed.Group("/system")
	system.GET("/info", cfg.SystemHandler.GetSystemInfo)
}
