package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Balance ledger metrics
	BalanceCredits    prometheus.Counter
	BalanceDebits     prometheus.Counter
	AdminAdjustments  prometheus.Counter
	InsufficientFunds prometheus.Counter
	TransactionAmount prometheus.Histogram

	// Gift card metrics
	GiftCardsIssued    prometheus.Counter
	GiftCardsRedeemed  prometheus.Counter
	GiftCardsLocked    prometheus.Counter
	GiftCardsExpired   prometheus.Counter
	RedemptionFailures *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries  *prometheus.CounterVec
	DBDuration *prometheus.HistogramVec
	DBErrors   *prometheus.CounterVec

	// Notification metrics
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		BalanceCredits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "beautycenter_balance_credits_total",
			Help: "Total number of balance credits",
		}),
		BalanceDebits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "beautycenter_balance_debits_total",
			Help: "Total number of balance debits",
		}),
		AdminAdjustments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "beautycenter_admin_adjustments_total",
			Help: "Total number of admin balance adjustments",
		}),
		InsufficientFunds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "beautycenter_insufficient_funds_total",
			Help: "Total number of debits rejected for insufficient balance",
		}),
		TransactionAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "beautycenter_transaction_amount",
			Help:    "Balance transaction amounts",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),

		GiftCardsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "beautycenter_gift_cards_issued_total",
			Help: "Total number of gift cards issued",
		}),
		GiftCardsRedeemed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "beautycenter_gift_cards_redeemed_total",
			Help: "Total number of gift cards redeemed",
		}),
		GiftCardsLocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "beautycenter_gift_cards_locked_total",
			Help: "Total number of gift cards locked by attempt thresholds",
		}),
		GiftCardsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "beautycenter_gift_cards_expired_total",
			Help: "Total number of gift cards expired",
		}),
		RedemptionFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beautycenter_redemption_failures_total",
				Help: "Total number of failed redemption attempts by reason",
			},
			[]string{"reason"},
		),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beautycenter_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "beautycenter_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beautycenter_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "beautycenter_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beautycenter_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		NotificationsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beautycenter_notifications_sent_total",
				Help: "Total notifications sent",
			},
			[]string{"kind"},
		),
		NotificationsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beautycenter_notifications_failed_total",
				Help: "Total notification delivery failures",
			},
			[]string{"kind"},
		),
	}
}
