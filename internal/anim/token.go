package anim

import "time"

type tokenState int

const (
	tokenRunning tokenState = iota
	tokenCompleted
	tokenCancelled
)

// Token is the cancellation handle of a started top-level operation.
// A nil Token is inert.
type Token struct {
	id      uint64
	engine  *Engine
	root    player
	def     *Cell
	cells   []*Cell
	onDone  func()
	state   tokenState
	started time.Duration
}

func (t *Token) ID() uint64 {
	if t == nil {
		return 0
	}
	return t.id
}

// Running reports whether the operation is still in flight.
func (t *Token) Running() bool { return t != nil && t.state == tokenRunning }

func (t *Token) Completed() bool { return t != nil && t.state == tokenCompleted }
func (t *Token) Cancelled() bool { return t != nil && t.state == tokenCancelled }

// Cancel stops the operation. Cells keep their current values and the
// completion callback never runs. Cancel is synchronous and idempotent.
func (t *Token) Cancel() {
	if t == nil || t.state != tokenRunning {
		return
	}
	t.engine.cancel(t)
}

func (t *Token) stopped() bool { return t.state != tokenRunning }

func (t *Token) write(c *Cell, v float64) {
	if t.state != tokenRunning {
		return
	}
	c.set(v)
}

func (t *Token) emit(kind EventKind, op string, c *Cell, at time.Duration) {
	ev := Event{Kind: kind, Op: op, Token: t.id, At: at}
	if c != nil {
		ev.Cell = c.id
		ev.Value = c.value
	}
	t.engine.emit(ev)
}
