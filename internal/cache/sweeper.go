package cache

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often StartSweeper purges expired replies.
const DefaultSweepInterval = time.Minute

// StartSweeper runs a background goroutine that periodically purges expired
// entries until ctx is done. Expired entries are never served in between;
// the sweep only bounds memory held by stale replies.
func StartSweeper(ctx context.Context, c *ResponseCache, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Cache sweeper started", "interval", interval, "ttl", c.ttl)

		for {
			select {
			case <-ticker.C:
				if n := c.Purge(); n > 0 {
					slog.Debug("Cache sweeper purged expired replies", "count", n)
				}
			case <-ctx.Done():
				slog.Info("Cache sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
