// Package http wires the HTTP surface of the service.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/slimbahael/beautycenter/internal/adapter/http/handler"
	"github.com/slimbahael/beautycenter/internal/adapter/http/middleware"
	"github.com/slimbahael/beautycenter/internal/infrastructure/auth"
	"github.com/slimbahael/beautycenter/internal/infrastructure/metrics"
	"github.com/slimbahael/beautycenter/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	BalanceHandler   *handler.BalanceHandler
	GiftCardHandler  *handler.GiftCardHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	JWTManager       *auth.JWTManager
	AuthEnabled      bool
	Metrics          *metrics.Metrics
	Logger           zerolog.Logger
	RateLimit        float64
	RateBurst        int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)

	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	if cfg.RateLimit > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst).Limit)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	staffOnly := passthrough
	adminOnly := passthrough
	if cfg.AuthEnabled {
		staffOnly = middleware.RequireGiftCardStaff
		adminOnly = middleware.RequireBalanceAdmin
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthEnabled {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore).Wrap)
		}

		// Account balances. Every balance mutation is an admin operation;
		// customer top-ups settle through the payment flow.
		r.Route("/accounts/{id}/balance", func(r chi.Router) {
			r.Get("/", cfg.BalanceHandler.GetBalance)
			r.Get("/history", cfg.BalanceHandler.GetHistory)
			r.Get("/check", cfg.BalanceHandler.CheckBalance)
			r.With(adminOnly).Post("/credit", cfg.BalanceHandler.Credit)
			r.With(adminOnly).Post("/debit", cfg.BalanceHandler.Debit)
			r.With(adminOnly).Post("/adjust", cfg.BalanceHandler.AdminAdjust)
		})

		// Gift cards
		r.Route("/gift-cards", func(r chi.Router) {
			r.Post("/", cfg.GiftCardHandler.Issue)
			r.Post("/redeem", cfg.GiftCardHandler.Redeem)
			r.Get("/purchased", cfg.GiftCardHandler.ListPurchased)
			r.Get("/received", cfg.GiftCardHandler.ListReceived)
			r.With(staffOnly).Get("/verify/{token}", cfg.GiftCardHandler.Verify)
			r.With(staffOnly).Post("/{id}/mark-used", cfg.GiftCardHandler.MarkUsed)
			r.With(adminOnly).Post("/sweep-expired", cfg.GiftCardHandler.Sweep)
		})
	})

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}
