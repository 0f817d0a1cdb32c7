// Package scheduler repeats sweeps on an interval.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pass is one unit of scheduled work. Its error is logged; it never stops the loop.
type Pass func(ctx context.Context) error

// Repeat runs pass immediately, then on every tick of interval until ctx is
// done. A zero interval runs a single pass and returns its error.
func Repeat(ctx context.Context, logger *zap.Logger, interval time.Duration, pass Pass) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		return pass(ctx)
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	n := 1
	runOnce(ctx, logger, n, pass)
	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler_stopped", zap.Int("passes", n))
			return nil
		case <-t.C:
			n++
			runOnce(ctx, logger, n, pass)
		}
	}
}

func runOnce(ctx context.Context, logger *zap.Logger, n int, pass Pass) {
	start := time.Now()
	if err := pass(ctx); err != nil && ctx.Err() == nil {
		logger.Warn("scheduler_pass_error", zap.Int("pass", n), zap.Error(err))
		return
	}
	logger.Debug("scheduler_pass", zap.Int("pass", n), zap.Duration("elapsed", time.Since(start)))
}
