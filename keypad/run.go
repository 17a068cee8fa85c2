package keypad

import (
	"context"
	"log/slog"
	"time"
)

// Failed cycles are retried after a delay that doubles from minErrorBackoff
// up to maxErrorBackoff and resets on the first clean cycle.
const (
	minErrorBackoff = 10 * time.Millisecond
	maxErrorBackoff = time.Second
)

// Run drives e with back-to-back scan cycles, or one cycle per interval when
// interval is positive, until ctx is done. Scan errors are logged and the
// loop carries on after backing off.
func Run(ctx context.Context, e *Engine, interval time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	var backoff time.Duration
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := e.Scan(); err != nil {
			backoff = min(max(2*backoff, minErrorBackoff), maxErrorBackoff)
			logger.Warn("scan cycle", "error", err, "retry_in", backoff)
			if !sleep(ctx, max(backoff, interval)) {
				return nil
			}
			continue
		}
		backoff = 0
		if tick == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
		}
	}
}

// sleep waits d or until ctx is done; it reports whether ctx is still live.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
