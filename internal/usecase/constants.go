package usecase

import "time"

const (
	// DefaultAccrualPeriod is the farming accrual interval when none is
	// configured.
	DefaultAccrualPeriod = 5 * time.Minute

	// DefaultSchedulerBatch bounds how many due positions one tick processes.
	DefaultSchedulerBatch = 500

	// DefaultBalanceCacheTTL keeps cached balance reads short-lived so a
	// stale display value never survives long past a mutation.
	DefaultBalanceCacheTTL = 30 * time.Second

	// IdempotencyKeyTTL is how long HTTP-edge idempotency responses are
	// cached. Ledger-level keys never expire.
	IdempotencyKeyTTL = 24 * time.Hour
)
