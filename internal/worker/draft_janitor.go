package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper drops expired entries and reports how many it removed.
type Sweeper interface {
	Sweep() int
}

// StartDraftJanitor sweeps expired drafts every interval until ctx is done.
// The returned channel closes once the janitor has stopped.
func StartDraftJanitor(ctx context.Context, sweeper Sweeper, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if sweeper == nil || interval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := sweeper.Sweep(); removed > 0 {
					logger.Debug("expired drafts swept", zap.Int("removed", removed))
				}
			}
		}
	}()
	return done
}
