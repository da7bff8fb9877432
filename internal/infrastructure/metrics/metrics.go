package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Expense metrics
	ExpensesCreated prometheus.Counter
	ExpenseAmount   prometheus.Histogram
	ExpenseShares   prometheus.Histogram
	ExpenseDuration prometheus.Histogram
	ExpenseErrors   *prometheus.CounterVec

	// Settlement metrics
	SettlementsCompleted prometheus.Counter
	SettlementAmount     prometheus.Histogram
	SettlementDuration   prometheus.Histogram
	SharesSettled        prometheus.Counter
	SettlementErrors     *prometheus.CounterVec

	// Balance metrics
	BalanceQueries  *prometheus.CounterVec
	BalanceDuration prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Storage metrics
	DBRetries *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	PublishErrors   *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics and registers them on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		ExpensesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_expenses_created_total",
			Help: "Total number of expenses created",
		}),
		ExpenseAmount: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitledger_expense_amount",
			Help:    "Expense total amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		ExpenseShares: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitledger_expense_participants",
			Help:    "Number of participants per expense",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 50},
		}),
		ExpenseDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitledger_expense_duration_seconds",
			Help:    "Duration of expense creation",
			Buckets: prometheus.DefBuckets,
		}),
		ExpenseErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_expense_errors_total",
				Help: "Total number of expense errors by type",
			},
			[]string{"error_type"},
		),

		SettlementsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_settlements_completed_total",
			Help: "Total number of settlements recorded",
		}),
		SettlementAmount: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitledger_settlement_amount",
			Help:    "Settlement amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		SettlementDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitledger_settlement_duration_seconds",
			Help:    "Duration of settle operations including lock wait",
			Buckets: prometheus.DefBuckets,
		}),
		SharesSettled: f.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_shares_settled_total",
			Help: "Total number of shares fully paid by settlements",
		}),
		SettlementErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_settlement_errors_total",
				Help: "Total number of settlement errors by type",
			},
			[]string{"error_type"},
		),

		BalanceQueries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_balance_queries_total",
				Help: "Total balance queries by cache result",
			},
			[]string{"cache"},
		),
		BalanceDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "splitledger_balance_duration_seconds",
			Help:    "Duration of balance aggregation",
			Buckets: prometheus.DefBuckets,
		}),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "splitledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBRetries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_db_retries_total",
				Help: "Transactions retried after a serialization failure or deadlock",
			},
			[]string{"code"},
		),

		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_events_published_total",
				Help: "Outbox events published by type",
			},
			[]string{"event_type"},
		),
		PublishErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_event_publish_errors_total",
				Help: "Outbox publish failures by type",
			},
			[]string{"event_type"},
		),

		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitledger_rate_limit_hits_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
	}
}

// ErrorType maps an error to a low-cardinality label.
func ErrorType(err error, known map[error]string) string {
	for target, label := range known {
		if errors.Is(err, target) {
			return label
		}
	}
	return "internal"
}
