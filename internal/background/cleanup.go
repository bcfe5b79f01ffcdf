package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper removes expired lockout records. *auth.Guard satisfies it.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// SweepObserver is told how many records each sweep removed
type SweepObserver interface {
	ObserveSweep(removed int64)
}

// CleanupManager periodically evicts lockouts whose block window has passed.
// Eviction only removes records the next login would clear anyway, so the
// sweep never changes an authentication outcome.
type CleanupManager struct {
	sweeper  Sweeper
	observer SweepObserver
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCleanupManager creates a new cleanup manager. observer may be nil.
func NewCleanupManager(sweeper Sweeper, observer SweepObserver, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		sweeper:  sweeper,
		observer: observer,
		logger:   logger,
		interval: interval,
		timeout:  30 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Start runs a sweep immediately and then every interval until Stop is
// called or ctx ends. It blocks.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("lockout sweeper stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("lockout sweeper context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, cm.timeout)
	defer cancel()

	removed, err := cm.sweeper.SweepExpired(sweepCtx)
	if err != nil {
		cm.logger.Error("failed to sweep expired lockouts", slog.Any("error", err))
		return
	}

	if cm.observer != nil {
		cm.observer.ObserveSweep(removed)
	}
	if removed > 0 {
		cm.logger.Info("expired lockouts swept", slog.Int64("records_removed", removed))
	}
}

// Stop signals the cleanup manager to stop. It is safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
