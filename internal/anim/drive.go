package anim

import (
	"context"
	"fmt"
	"time"
)

// MaxFrameGap bounds the time one Drive frame may advance the engine, so a
// stalled frame source (a suspended process, a blocked terminal) resumes
// where it stopped instead of jumping.
const MaxFrameGap = 100 * time.Millisecond

// Settle ticks at a fixed step until the engine is idle or limit engine time
// has elapsed. It reports whether the engine went idle.
func (e *Engine) Settle(ctx context.Context, step, limit time.Duration) (bool, error) {
	if step <= 0 {
		return false, fmt.Errorf("step must be positive, got %v", step)
	}
	if limit <= 0 {
		return false, fmt.Errorf("limit must be positive, got %v", limit)
	}

	deadline := e.now + limit
	for !e.Idle() {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		if e.now >= deadline {
			return false, nil
		}
		e.Tick(step)
	}
	return true, nil
}

// Drive advances the engine from a frame source until frames closes or ctx
// ends. The first frame sets the time base and ticks by zero; later frames
// tick by the wall-clock gap, capped at MaxFrameGap. All mutation happens on
// the calling goroutine, so frames may come from any timer.
func (e *Engine) Drive(ctx context.Context, frames <-chan time.Time) error {
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts, ok := <-frames:
			if !ok {
				return nil
			}
			var dt time.Duration
			if !last.IsZero() {
				dt = min(max(ts.Sub(last), 0), MaxFrameGap)
			}
			last = ts
			e.Tick(dt)
		}
	}
}
