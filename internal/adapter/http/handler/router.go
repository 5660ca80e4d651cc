package handler

import (
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/adapter/http/middleware"
	redisStore "github.com/eliazzo-oli/kixico-pay-73-sub000/internal/adapter/storage/redis"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	SettlementSvc  ports.SettlementService
	WithdrawalSvc  ports.WithdrawalService
	ReportingSvc   ports.ReportingService
	PolicySvc      ports.PolicyService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep check: verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	requireOperator := middleware.RequireOperator()

	settlementHandler := NewSettlementHandler(deps.SettlementSvc)
	withdrawalHandler := NewWithdrawalHandler(deps.WithdrawalSvc)
	walletHandler := NewWalletHandler(deps.ReportingSvc, deps.PolicySvc)
	ledgerHandler := NewLedgerHandler(deps.ReportingSvc)

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Platform-internal routes (operator tokens only) ---
	settlements := v1.Group("/settlements", jwtAuth, requireOperator)
	{
		settlements.POST("", rl("settlements"), settlementHandler.Settle)
	}

	admin := v1.Group("/admin", jwtAuth, requireOperator)
	{
		admin.GET("/withdrawals", rl("admin"), withdrawalHandler.AdminList)
		admin.POST("/withdrawals/:id/decision", rl("admin"), withdrawalHandler.Decide)
	}

	// --- Seller routes ---
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("", rl("reports"), walletHandler.ListWallets)
		wallets.GET("/balance", rl("reports"), walletHandler.GetBalance)
	}

	v1.GET("/policy", jwtAuth, rl("reports"), walletHandler.GetPolicy)

	withdrawals := v1.Group("/withdrawals", jwtAuth)
	{
		withdrawals.POST("", rl("withdrawals"), withdrawalHandler.Submit)
		withdrawals.GET("", rl("reports"), withdrawalHandler.List)
		withdrawals.POST("/:id/cancel", rl("withdrawals"), withdrawalHandler.Cancel)
	}

	ledger := v1.Group("/ledger", jwtAuth)
	{
		ledger.GET("", rl("reports"), ledgerHandler.List)
		ledger.GET("/reconcile", rl("reports"), ledgerHandler.Reconcile)
	}

	return r
}
