package binance

import (
	"context"
	"time"
)

const keepAliveBackoff = 60 * time.Second

// StartKeepAlive maintains the API session with periodic server-time pings.
// On failure it backs off for a minute before resuming. Returns immediately;
// the loop stops when ctx is cancelled.
func (c *Client) StartKeepAlive(ctx context.Context, interval time.Duration) {
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if _, err := c.api.NewServerTimeService().Do(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Warn("keep-alive ping failed", "error", err)
				timer.Reset(keepAliveBackoff)
				continue
			}
			timer.Reset(interval)
		}
	}()
}
