package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Ledger metrics
	CreditsTotal     *prometheus.CounterVec
	DebitsTotal      *prometheus.CounterVec
	ReplaysTotal     *prometheus.CounterVec
	MutationErrors   *prometheus.CounterVec
	MutationDuration prometheus.Histogram

	// Scheduler metrics
	SchedulerTicks     *prometheus.CounterVec
	SchedulerDuration  prometheus.Histogram
	PositionsProcessed prometheus.Counter
	PositionsFailed    prometheus.Counter
	LockAcquisitions   *prometheus.CounterVec

	// Referral metrics
	ReferralCredits prometheus.Counter
	ReferralDepth   prometheus.Histogram
	ReferralCycles  prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CreditsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unifarm_ledger_credits_total",
				Help: "Total credits by entry type and currency",
			},
			[]string{"type", "currency"},
		),
		DebitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unifarm_ledger_debits_total",
				Help: "Total debits by entry type and currency",
			},
			[]string{"type", "currency"},
		),
		ReplaysTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unifarm_ledger_replays_total",
				Help: "Idempotent replays by entry type",
			},
			[]string{"type"},
		),
		MutationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unifarm_ledger_mutation_errors_total",
				Help: "Failed balance mutations by error kind",
			},
			[]string{"error_kind"},
		),
		MutationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "unifarm_ledger_mutation_duration_seconds",
			Help:    "Duration of balance mutations",
			Buckets: prometheus.DefBuckets,
		}),

		SchedulerTicks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unifarm_scheduler_ticks_total",
				Help: "Scheduler ticks by outcome (run, skipped, failed)",
			},
			[]string{"outcome"},
		),
		SchedulerDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "unifarm_scheduler_tick_duration_seconds",
			Help:    "Duration of scheduler ticks",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 120, 300},
		}),
		PositionsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unifarm_scheduler_positions_processed_total",
			Help: "Farming positions credited by the scheduler",
		}),
		PositionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unifarm_scheduler_positions_failed_total",
			Help: "Farming positions that failed accrual",
		}),
		LockAcquisitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unifarm_scheduler_lock_acquisitions_total",
				Help: "Distributed lock acquisition attempts by result",
			},
			[]string{"result"},
		),

		ReferralCredits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unifarm_referral_credits_total",
			Help: "Referral commission credits produced",
		}),
		ReferralDepth: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "unifarm_referral_fanout_depth",
			Help:    "Upline depth reached per distribution",
			Buckets: []float64{1, 2, 3, 5, 10, 15, 20},
		}),
		ReferralCycles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unifarm_referral_cycles_detected_total",
			Help: "Referral upline cycles detected and truncated",
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unifarm_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "unifarm_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unifarm_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
