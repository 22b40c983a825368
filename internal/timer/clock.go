package timer

import (
	"context"
	"time"
)

// Run drives both machines from a single wall clock, one tick per interval,
// until the context is cancelled. Ticks never block each other: saves issued
// from a pomodoro completion run inline on this goroutine, which is fine for
// the one-client-per-instance model.
func Run(ctx context.Context, interval time.Duration, sw *Stopwatch, p *Pomodoro) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if sw != nil {
				sw.Tick()
			}
			if p != nil {
				p.Tick(ctx)
			}
		}
	}
}
