package jobs

import (
	"context"
	"time"

	"bookmarket.backend/pkg/logger"
	"go.uber.org/zap"
)

// staleTokenStore is the slice of the token repository the job needs
type staleTokenStore interface {
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

// VerificationTokenCleanupJob purges expired and consumed verification tokens
type VerificationTokenCleanupJob struct {
	repo     staleTokenStore
	interval time.Duration
	// tokens are only purged once they have been dead for retention
	retention time.Duration
	now       func() time.Time
	stop      chan struct{}
}

// NewVerificationTokenCleanupJob creates the job. A non-positive interval
// falls back to one hour.
func NewVerificationTokenCleanupJob(repo staleTokenStore, interval time.Duration) *VerificationTokenCleanupJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &VerificationTokenCleanupJob{
		repo:      repo,
		interval:  interval,
		retention: 24 * time.Hour,
		now:       time.Now,
		stop:      make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Stop is called
func (j *VerificationTokenCleanupJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting verification token cleanup job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Verification token cleanup job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Verification token cleanup job stopped")
			return
		case <-ticker.C:
			j.purge(ctx)
		}
	}
}

// Stop ends Start
func (j *VerificationTokenCleanupJob) Stop() {
	close(j.stop)
}

func (j *VerificationTokenCleanupJob) purge(ctx context.Context) {
	cutoff := j.now().UTC().Add(-j.retention)
	n, err := j.repo.DeleteStale(ctx, cutoff)
	if err != nil {
		logger.Error(ctx, "Failed to purge verification tokens", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info(ctx, "Purged verification tokens", zap.Int64("count", n))
	}
}
