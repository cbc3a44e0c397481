package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultSweepInterval is how often expired reset tokens are purged.
const DefaultSweepInterval = time.Hour

// StartResetTokenSweeper purges expired reset tokens every interval until
// ctx is cancelled. Expiry is always checked on redemption, so the sweep
// only keeps the collection small.
func StartResetTokenSweeper(ctx context.Context, m *ResetTokenManager, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	log.Debug("Reset token sweeper attached", zap.Duration("tick_every", interval))

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		sweepResetTokens(ctx, m, log)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweepResetTokens(ctx, m, log)
			}
		}
	}()
}

func sweepResetTokens(ctx context.Context, m *ResetTokenManager, log *zap.Logger) {
	n, err := m.PurgeExpired(ctx)
	if err != nil {
		log.Error("Failed to purge expired reset tokens", zap.Error(err))
		return
	}
	if n > 0 {
		log.Debug("Purged expired reset tokens", zap.Int64("count", n))
	}
}
