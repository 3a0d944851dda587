package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/slimbahael/beautycenter/internal/adapter/http"
	"github.com/slimbahael/beautycenter/internal/adapter/http/handler"
	postgresRepo "github.com/slimbahael/beautycenter/internal/adapter/repository/postgres"
	redisRepo "github.com/slimbahael/beautycenter/internal/adapter/repository/redis"
	"github.com/slimbahael/beautycenter/internal/infrastructure/auth"
	"github.com/slimbahael/beautycenter/internal/infrastructure/config"
	"github.com/slimbahael/beautycenter/internal/infrastructure/email"
	"github.com/slimbahael/beautycenter/internal/infrastructure/logger"
	"github.com/slimbahael/beautycenter/internal/infrastructure/metrics"
	"github.com/slimbahael/beautycenter/internal/infrastructure/postgres"
	"github.com/slimbahael/beautycenter/internal/infrastructure/redis"
	"github.com/slimbahael/beautycenter/internal/scheduler"
	"github.com/slimbahael/beautycenter/internal/usecase"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool, m)
	transactionRepo := postgresRepo.NewTransactionRepository(pool, m)
	giftCardRepo := postgresRepo.NewGiftCardRepository(pool, m)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(appLogger)

	// Infrastructure services
	hasher := auth.NewBcryptCodeHasher()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	notifier := email.NewNotifier(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName, m, appLogger)

	// Use cases
	balanceUC := usecase.NewBalanceUseCase(txManager, accountRepo, transactionRepo, idGen, m).
		WithRetrier(retrier).
		WithCache(cache)
	giftCardUC := usecase.NewGiftCardUseCase(txManager, giftCardRepo, accountRepo, balanceUC, hasher, idGen, notifier, m, appLogger)

	// Scheduler for the nightly expiry sweep
	sched, err := scheduler.New(giftCardUC, cfg.GiftCardSweepSchedule, appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	sched.Start()
	defer sched.Stop()

	// Handlers
	balanceHandler := handler.NewBalanceHandler(balanceUC)
	giftCardHandler := handler.NewGiftCardHandler(giftCardUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BalanceHandler:   balanceHandler,
		GiftCardHandler:  giftCardHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		JWTManager:       jwtManager,
		AuthEnabled:      cfg.AuthEnabled,
		Metrics:          m,
		Logger:           appLogger,
		RateLimit:        cfg.RateLimit,
		RateBurst:        cfg.RateBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
