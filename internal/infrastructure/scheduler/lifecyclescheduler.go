// Package scheduler drives the periodic subscription lifecycle jobs.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	tierUsecases "stockpilot/internal/application/tier/usecases"
	"stockpilot/internal/shared/config"
	"stockpilot/internal/shared/logger"
)

// LifecycleScheduler runs the two autonomous lifecycle sweeps:
// - the downgrade sweep moves accounts past their grace period back to free
// - the notification sweep warns about upcoming expirations and announces
//   grace periods
//
// Overlap within one process is skipped via a running flag per job. The
// sweeps themselves are idempotent, so multiple processes running them
// concurrently stay correct; they just duplicate work.
type LifecycleScheduler struct {
	downgradeUC          *tierUsecases.DowngradeExpiredUseCase
	notifyUC             *tierUsecases.NotifyExpiringUseCase
	logger               logger.Interface
	stopChan             chan struct{}
	stopOnce             sync.Once
	cancelRuns           context.CancelFunc
	wg                   sync.WaitGroup
	downgradeInterval    time.Duration
	notificationInterval time.Duration

	downgradeRunning    atomic.Bool
	notificationRunning atomic.Bool
}

// NewLifecycleScheduler creates a new LifecycleScheduler.
func NewLifecycleScheduler(
	downgradeUC *tierUsecases.DowngradeExpiredUseCase,
	notifyUC *tierUsecases.NotifyExpiringUseCase,
	cfg *config.SchedulerConfig,
	logger logger.Interface,
) *LifecycleScheduler {
	return &LifecycleScheduler{
		downgradeUC:          downgradeUC,
		notifyUC:             notifyUC,
		logger:               logger,
		stopChan:             make(chan struct{}),
		downgradeInterval:    cfg.DowngradeInterval(),
		notificationInterval: cfg.NotificationInterval(),
	}
}

// Start starts both sweep loops.
func (s *LifecycleScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting lifecycle scheduler",
		"downgrade_interval", s.downgradeInterval,
		"notification_interval", s.notificationInterval,
	)

	// All sweep runs descend from this context so Stop can cancel a
	// run that is blocked on the datastore.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRuns = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.runDowngradeLoop(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		s.runNotificationLoop(runCtx)
	}()
}

// Stop stops the scheduler gracefully.
func (s *LifecycleScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping lifecycle scheduler")
		close(s.stopChan)
		if s.cancelRuns != nil {
			s.cancelRuns()
		}
		s.wg.Wait()
		s.logger.Infow("lifecycle scheduler stopped")
	})
}

func (s *LifecycleScheduler) runDowngradeLoop(ctx context.Context) {
	// Run immediately on startup to clear any backlog from downtime.
	s.runDowngradeSweep(ctx)

	ticker := time.NewTicker(s.downgradeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("downgrade loop stopped due to context cancellation")
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runDowngradeSweep(ctx)
		}
	}
}

func (s *LifecycleScheduler) runNotificationLoop(ctx context.Context) {
	s.runNotificationSweep(ctx)

	ticker := time.NewTicker(s.notificationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("notification loop stopped due to context cancellation")
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runNotificationSweep(ctx)
		}
	}
}

func (s *LifecycleScheduler) runDowngradeSweep(ctx context.Context) {
	if !s.downgradeRunning.CompareAndSwap(false, true) {
		s.logger.Warnw("previous downgrade sweep still running, skipping this tick")
		return
	}
	defer s.downgradeRunning.Store(false)

	// One run never outlives its interval. Without this bound a wedged
	// datastore call would hold the running flag and starve every
	// subsequent tick.
	runCtx, cancel := context.WithTimeout(ctx, s.downgradeInterval)
	defer cancel()

	startTime := time.Now()

	downgraded, err := s.downgradeUC.Execute(runCtx)
	if err != nil {
		s.logger.Errorw("downgrade sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if downgraded > 0 {
		s.logger.Infow("downgrade sweep completed",
			"downgraded", downgraded,
			"duration", time.Since(startTime),
		)
	} else {
		s.logger.Debugw("downgrade sweep found nothing to do",
			"duration", time.Since(startTime),
		)
	}
}

func (s *LifecycleScheduler) runNotificationSweep(ctx context.Context) {
	if !s.notificationRunning.CompareAndSwap(false, true) {
		s.logger.Warnw("previous notification sweep still running, skipping this tick")
		return
	}
	defer s.notificationRunning.Store(false)

	runCtx, cancel := context.WithTimeout(ctx, s.notificationInterval)
	defer cancel()

	startTime := time.Now()

	sent, err := s.notifyUC.Execute(runCtx)
	if err != nil {
		s.logger.Errorw("notification sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if sent > 0 {
		s.logger.Infow("notification sweep completed",
			"sent", sent,
			"duration", time.Since(startTime),
		)
	} else {
		s.logger.Debugw("notification sweep found nothing to do",
			"duration", time.Since(startTime),
		)
	}
}
