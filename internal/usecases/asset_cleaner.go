package usecases

import (
	"context"
	"sync/atomic"
	"time"

	"bookmarket.backend/pkg/logger"
	"bookmarket.backend/pkg/metrics"
	"bookmarket.backend/pkg/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCleanupConcurrency = 8
	defaultCleanupTimeout     = 30 * time.Second
)

// AssetCleaner removes stored objects after their rows are gone. Deletions
// are best effort: failures are logged and counted, never returned.
type AssetCleaner struct {
	store       storage.ObjectStore
	concurrency int
	timeout     time.Duration
}

// NewAssetCleaner creates a cleaner. A nil store makes every cleanup a no-op.
func NewAssetCleaner(store storage.ObjectStore) *AssetCleaner {
	return &AssetCleaner{
		store:       store,
		concurrency: defaultCleanupConcurrency,
		timeout:     defaultCleanupTimeout,
	}
}

// Dispatch starts deleting keys in the background and returns a wait
// function reporting how many deletions failed. The deletions outlive
// cancellation of ctx.
func (c *AssetCleaner) Dispatch(ctx context.Context, keys []string) (wait func() int) {
	if c == nil || c.store == nil || len(keys) == 0 {
		return func() int { return 0 }
	}

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	var failed atomic.Int64
	g, gctx := errgroup.WithContext(cleanupCtx)
	g.SetLimit(c.concurrency)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, key := range keys {
			if key == "" {
				continue
			}
			key := key
			g.Go(func() error {
				if err := c.store.Delete(gctx, key); err != nil {
					failed.Add(1)
					metrics.AssetCleanupTotal.WithLabelValues("failed").Inc()
					logger.Warn(gctx, "Asset cleanup failed", zap.String("key", key), zap.Error(err))
					return nil
				}
				metrics.AssetCleanupTotal.WithLabelValues("ok").Inc()
				return nil
			})
		}
		_ = g.Wait()
		cancel()
	}()

	return func() int {
		<-done
		return int(failed.Load())
	}
}

// Cleanup deletes keys and waits for every deletion to settle.
func (c *AssetCleaner) Cleanup(ctx context.Context, keys []string) int {
	return c.Dispatch(ctx, keys)()
}
