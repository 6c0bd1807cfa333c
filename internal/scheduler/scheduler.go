package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/unifarm/ledger/internal/infrastructure/metrics"
	"github.com/unifarm/ledger/internal/usecase"
)

// Accruer processes due farming positions.
type Accruer interface {
	ProcessDue(ctx context.Context, now time.Time, batchSize int) (*usecase.TickResult, error)
}

// Scheduler periodically accrues farming rewards across all active
// positions. Only one instance runs a tick at a time; instances
// coordinate through a distributed lock.
type Scheduler struct {
	accruer   Accruer
	lock      usecase.SchedulerLock
	metrics   *metrics.Metrics
	logger    *slog.Logger
	lockLease time.Duration
	interval  time.Duration
	batchSize int
}

// Config for Scheduler.
type Config struct {
	Accruer   Accruer
	Lock      usecase.SchedulerLock
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	LockLease time.Duration // Lease on the distributed lock, renewed mid-tick
	Interval  time.Duration // Tick interval
	BatchSize int           // Positions fetched per tick
}

// New creates a new Scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Interval == 0 {
		cfg.Interval = usecase.DefaultAccrualPeriod
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = usecase.DefaultSchedulerBatch
	}
	if cfg.LockLease == 0 {
		cfg.LockLease = 2 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Scheduler{
		accruer:   cfg.Accruer,
		lock:      cfg.Lock,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		lockLease: cfg.LockLease,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
	}
}

// Start begins the accrual loop.
// It runs continuously until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("reward scheduler started",
		slog.Duration("interval", s.interval),
		slog.Int("batch_size", s.batchSize))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Process immediately on start
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reward scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs a single accrual pass under the distributed lock.
// A tick is bounded by the scheduler interval so a slow pass yields
// before the next one fires; unfinished positions stay due and are
// picked up again.
func (s *Scheduler) tick(ctx context.Context) {
	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		s.logger.Error("failed to acquire scheduler lock", slog.String("error", err.Error()))
		s.observeTick("failed")
		return
	}
	if !acquired {
		s.logger.Debug("scheduler lock held elsewhere, skipping tick")
		s.observeTick("skipped")
		if s.metrics != nil {
			s.metrics.LockAcquisitions.WithLabelValues("held").Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.LockAcquisitions.WithLabelValues("acquired").Inc()
	}

	tickCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	stopRenew := s.keepLockAlive(tickCtx)

	start := time.Now()
	result, err := s.accruer.ProcessDue(tickCtx, start, s.batchSize)
	elapsed := time.Since(start)

	stopRenew()
	if relErr := s.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
		s.logger.Error("failed to release scheduler lock", slog.String("error", relErr.Error()))
	}

	if err != nil {
		s.logger.Error("accrual tick failed", slog.String("error", err.Error()))
		s.observeTick("failed")
		return
	}

	if s.metrics != nil {
		s.metrics.SchedulerDuration.Observe(elapsed.Seconds())
		s.metrics.PositionsProcessed.Add(float64(result.Credited))
		s.metrics.PositionsFailed.Add(float64(result.Failed))
	}
	s.observeTick("run")

	if result.Due > 0 {
		s.logger.Info("accrual tick complete",
			slog.Int("due", result.Due),
			slog.Int("credited", result.Credited),
			slog.Int("replayed", result.Replayed),
			slog.Int("skipped", result.Skipped),
			slog.Int("failed", result.Failed),
			slog.Duration("elapsed", elapsed))
	}
}

// keepLockAlive renews the lock lease at half-lease intervals until the
// returned stop function is called or the context ends.
func (s *Scheduler) keepLockAlive(ctx context.Context) (stop func()) {
	renewCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.lockLease / 2)
		defer ticker.Stop()
		for {
			select {
			case <-renewCtx.Done():
				return
			case <-ticker.C:
				if err := s.lock.Renew(renewCtx); err != nil {
					s.logger.Error("failed to renew scheduler lock", slog.String("error", err.Error()))
					return
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func (s *Scheduler) observeTick(outcome string) {
	if s.metrics != nil {
		s.metrics.SchedulerTicks.WithLabelValues(outcome).Inc()
	}
}
