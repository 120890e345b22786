package main

import (
	"context"
	"time"
)

// reconcilePendingEvery re-verifies pending transactions on a ticker until ctx
// is cancelled. It runs once immediately. The returned channel is closed
// once the loop has exited.
func (app *application) reconcilePendingEvery(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			app.sweepPending(ctx)

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return done
}

func (app *application) sweepPending(ctx context.Context) {
	sum, err := app.reconciler.SweepPending(ctx, app.config.reconcile.batch, nil)
	if err != nil {
		app.logger.Errorw("pending sweep failed", "error", err)
		return
	}
	if sum.Checked == 0 {
		return
	}
	app.logger.Infow("pending sweep finished",
		"checked", sum.Checked,
		"recorded", sum.Recorded,
		"unchanged", sum.Unchanged,
		"failed", sum.Failed,
	)
}
