package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/cobaltline/outreach/pkg/models"

	"github.com/cobaltline/outreach/internal/httpapi"
)

// runSweepLoop drives the escalation scheduler on a fixed interval. Each tick
// dispatches every due step that clears the policy gates; the sweep itself is
// idempotent, so a slow tick overlapping a manual /sweep call is harmless.
func runSweepLoop(ctx context.Context, opts StartOptions, app *httpapi.App) {
	interval := time.Duration(opts.SweepIntervalSec * float64(time.Second))
	if interval <= 0 {
		interval = 60 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rep, err := app.Scheduler.ExecuteSends(ctx, false)
			if err != nil {
				slog.Error("send sweep failed", "err", err)
				continue
			}
			if rep.Due > 0 {
				app.Hub.Publish(models.StreamEvent{
					Type:    models.StreamSweep,
					Due:     rep.Due,
					Sent:    rep.Sent,
					Failed:  rep.Failed,
					Skipped: rep.Skipped,
				})
			}
		}
	}
}
