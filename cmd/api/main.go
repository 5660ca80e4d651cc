package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/config"
	httpHandler "github.com/eliazzo-oli/kixico-pay-73-sub000/internal/adapter/http/handler"
	pgStorage "github.com/eliazzo-oli/kixico-pay-73-sub000/internal/adapter/storage/postgres"
	redisStorage "github.com/eliazzo-oli/kixico-pay-73-sub000/internal/adapter/storage/redis"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/service"
	"github.com/eliazzo-oli/kixico-pay-73-sub000/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Kixico wallet & settlement service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	withdrawalRepo := pgStorage.NewWithdrawalRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	policyRepo := pgStorage.NewPolicyRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	settlementCache := redisStorage.NewSettlementCache(rdb)
	notificationQueue := redisStorage.NewNotificationQueue(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Default fee policy is validated at config load
	defaultPolicy, err := cfg.Policy.DefaultPolicy()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid default fee policy")
	}

	// Initialize core services
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)
	policySvc := service.NewPolicyService(policyRepo, defaultPolicy, log)
	settlementSvc := service.NewSettlementService(walletRepo, ledgerRepo, settlementCache, transactor, log)
	withdrawalSvc := service.NewWithdrawalService(withdrawalRepo, walletRepo, ledgerRepo, policySvc, notificationQueue, transactor, log)
	reportingSvc := service.NewReportingService(walletRepo, ledgerRepo, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		SettlementSvc:  settlementSvc,
		WithdrawalSvc:  withdrawalSvc,
		ReportingSvc:   reportingSvc,
		PolicySvc:      policySvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
