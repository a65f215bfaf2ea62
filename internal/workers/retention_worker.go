package workers

import (
	"context"
	"time"

	"storefront_backend/internal/logger"
	"storefront_backend/internal/repositories"
)

// RetentionWorker purges archived and dismissed notifications older
// than the configured retention window. Active records are never
// touched.
type RetentionWorker struct {
	repo          repositories.NotificationRepository
	retentionDays int
	interval      time.Duration
}

func NewRetentionWorker(repo repositories.NotificationRepository, retentionDays int) *RetentionWorker {
	return &RetentionWorker{
		repo:          repo,
		retentionDays: retentionDays,
		interval:      24 * time.Hour,
	}
}

// Run sweeps once immediately, then on every tick until the context is
// cancelled. Intended to run in its own goroutine.
func (w *RetentionWorker) Run(ctx context.Context) {
	logger.Info("retention worker started",
		"retention_days", w.retentionDays, "interval", w.interval.String())

	w.sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("retention worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *RetentionWorker) sweep() {
	cutoff := time.Now().AddDate(0, 0, -w.retentionDays)

	deleted, err := w.repo.DeleteTerminalOlderThan(cutoff)
	if err != nil {
		logger.Error("retention sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		logger.Info("retention sweep completed",
			"deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
	}
}
