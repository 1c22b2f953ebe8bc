package anim

import (
	"time"

	"github.com/san-kum/kinetic/internal/easing"
	"github.com/san-kum/kinetic/internal/spring"
)

// player is the runtime state of one operation node. advance consumes up to
// dt of engine time starting at now and returns the unused remainder once
// the node completes.
type player interface {
	advance(now, dt time.Duration) (time.Duration, bool)
	cancel(now time.Duration)
}

func (t *Token) build(op Operation, def *Cell) player {
	switch o := normalize(op).(type) {
	case Timing:
		curve := o.Curve
		if curve == nil {
			curve = easing.Linear
		}
		return &timingPlayer{tok: t, cell: targetOf(o.Cell, def), op: o, curve: curve}
	case Spring:
		return &springPlayer{tok: t, cell: targetOf(o.Cell, def), op: o}
	case Delay:
		return &delayPlayer{tok: t, duration: o.Duration}
	case Set:
		return &setPlayer{tok: t, cell: targetOf(o.Cell, def), value: o.Value}
	case Sequence:
		return &sequencePlayer{tok: t, ops: o.Ops, def: def}
	case Parallel:
		children := make([]player, len(o.Ops))
		for i, child := range o.Ops {
			children[i] = t.build(child, def)
		}
		return newParallel(t, children)
	case Stagger:
		children := make([]player, len(o.Ops))
		for i, child := range o.Ops {
			offset := Delay{Duration: time.Duration(i) * o.Interval}
			children[i] = &sequencePlayer{tok: t, ops: []Operation{offset, child}, def: def}
		}
		return newParallel(t, children)
	case Loop:
		return &loopPlayer{tok: t, op: o.Op, def: def, iterations: o.Iterations, cont: o.Continue}
	}
	// unreachable after validate
	return &delayPlayer{tok: t}
}

type timingPlayer struct {
	tok     *Token
	cell    *Cell
	op      Timing
	curve   easing.Func
	started bool
	done    bool
	from    float64
	elapsed time.Duration
}

func (p *timingPlayer) advance(now, dt time.Duration) (time.Duration, bool) {
	if !p.started {
		p.started = true
		p.from = p.cell.value
		p.tok.emit(EventBegin, "timing", p.cell, now)
	}

	p.elapsed += dt
	if p.elapsed >= p.op.Duration {
		left := p.elapsed - p.op.Duration
		p.tok.write(p.cell, p.op.To)
		p.done = true
		p.tok.emit(EventComplete, "timing", p.cell, now+dt-left)
		return left, true
	}

	frac := float64(p.elapsed) / float64(p.op.Duration)
	p.tok.write(p.cell, p.from+(p.op.To-p.from)*p.curve(frac))
	return 0, false
}

func (p *timingPlayer) cancel(now time.Duration) {
	if p.started && !p.done {
		p.tok.emit(EventCancel, "timing", p.cell, now)
	}
}

type springPlayer struct {
	tok      *Token
	cell     *Cell
	op       Spring
	solver   spring.Solver
	started  bool
	done     bool
	pos, vel float64
	elapsed  time.Duration
}

func (p *springPlayer) advance(now, dt time.Duration) (time.Duration, bool) {
	e := p.tok.engine
	if !p.started {
		p.started = true
		p.pos, p.vel = p.cell.value, p.op.Velocity
		p.solver = e.solver(spring.Params{Tension: p.op.Tension, Friction: p.op.Friction})
		p.tok.emit(EventBegin, "spring", p.cell, now)

		if e.settled(p.pos, p.vel, p.op.To) {
			return p.finish(now+dt, EventComplete), true
		}
	}

	if dt <= 0 {
		return 0, false
	}

	p.pos, p.vel = p.solver.Step(p.pos, p.vel, p.op.To, dt)
	p.elapsed += dt

	if !finite(p.pos) || !finite(p.vel) || p.elapsed >= e.cfg.MaxSpringDuration {
		e.logger.Warn("spring forced to target",
			"err", ErrNonConvergentSpring,
			"cell", p.cell.id,
			"target", p.op.To,
			"elapsed", p.elapsed,
			"tension", p.op.Tension,
			"friction", p.op.Friction,
		)
		return p.finish(now+dt, EventForced), true
	}

	if e.settled(p.pos, p.vel, p.op.To) {
		return p.finish(now+dt, EventComplete), true
	}

	p.tok.write(p.cell, p.pos)
	return 0, false
}

func (p *springPlayer) finish(at time.Duration, kind EventKind) time.Duration {
	p.done = true
	p.pos, p.vel = p.op.To, 0
	p.tok.write(p.cell, p.op.To)
	p.tok.emit(kind, "spring", p.cell, at)
	return 0
}

func (p *springPlayer) cancel(now time.Duration) {
	if p.started && !p.done {
		p.tok.emit(EventCancel, "spring", p.cell, now)
	}
}

type delayPlayer struct {
	tok      *Token
	duration time.Duration
	started  bool
	done     bool
	elapsed  time.Duration
}

func (p *delayPlayer) advance(now, dt time.Duration) (time.Duration, bool) {
	if !p.started {
		p.started = true
		p.tok.emit(EventBegin, "delay", nil, now)
	}
	p.elapsed += dt
	if p.elapsed >= p.duration {
		left := p.elapsed - p.duration
		p.done = true
		p.tok.emit(EventComplete, "delay", nil, now+dt-left)
		return left, true
	}
	return 0, false
}

func (p *delayPlayer) cancel(now time.Duration) {
	if p.started && !p.done {
		p.tok.emit(EventCancel, "delay", nil, now)
	}
}

type setPlayer struct {
	tok   *Token
	cell  *Cell
	value float64
}

func (p *setPlayer) advance(now, dt time.Duration) (time.Duration, bool) {
	p.tok.emit(EventBegin, "set", p.cell, now)
	p.tok.write(p.cell, p.value)
	p.tok.emit(EventComplete, "set", p.cell, now)
	return dt, true
}

func (p *setPlayer) cancel(time.Duration) {}

type sequencePlayer struct {
	tok *Token
	ops []Operation
	def *Cell
	idx int
	cur player
}

func (p *sequencePlayer) advance(now, dt time.Duration) (time.Duration, bool) {
	for p.idx < len(p.ops) {
		if p.tok.stopped() {
			return 0, false
		}
		if p.cur == nil {
			p.cur = p.tok.build(p.ops[p.idx], p.def)
		}
		left, done := p.cur.advance(now, dt)
		if !done {
			return 0, false
		}
		now += dt - left
		dt = left
		p.cur = nil
		p.idx++
	}
	return dt, true
}

func (p *sequencePlayer) cancel(now time.Duration) {
	if p.cur != nil {
		p.cur.cancel(now)
	}
}

type parallelPlayer struct {
	tok       *Token
	children  []player
	done      []bool
	remaining int
}

func newParallel(t *Token, children []player) *parallelPlayer {
	return &parallelPlayer{
		tok:       t,
		children:  children,
		done:      make([]bool, len(children)),
		remaining: len(children),
	}
}

func (p *parallelPlayer) advance(now, dt time.Duration) (time.Duration, bool) {
	left := dt
	for i, child := range p.children {
		if p.done[i] {
			continue
		}
		if p.tok.stopped() {
			return 0, false
		}
		childLeft, done := child.advance(now, dt)
		if done {
			p.done[i] = true
			p.remaining--
			if childLeft < left {
				left = childLeft
			}
		}
	}
	if p.remaining > 0 {
		return 0, false
	}
	return left, true
}

func (p *parallelPlayer) cancel(now time.Duration) {
	for i, child := range p.children {
		if !p.done[i] {
			child.cancel(now)
		}
	}
}

type loopPlayer struct {
	tok        *Token
	op         Operation
	def        *Cell
	iterations int
	cont       bool
	started    bool
	count      int
	cur        player
	cells      []*Cell
	snapshot   []float64
	// engine time the current iteration began
	iterStart time.Duration
}

func (p *loopPlayer) advance(now, dt time.Duration) (time.Duration, bool) {
	if !p.started {
		p.started = true
		if !p.cont {
			p.cells = cellsOf(p.op, p.def)
			p.snapshot = make([]float64, len(p.cells))
			for i, c := range p.cells {
				p.snapshot[i] = c.value
			}
		}
	}

	for {
		if p.tok.stopped() {
			return 0, false
		}
		if p.cur == nil {
			if p.count > 0 && !p.cont {
				for i, c := range p.cells {
					p.tok.write(c, p.snapshot[i])
				}
			}
			p.cur = p.tok.build(p.op, p.def)
			p.iterStart = now
		}

		left, done := p.cur.advance(now, dt)
		if !done {
			return 0, false
		}
		p.cur = nil
		p.count++

		if p.iterations != Infinite && p.count >= p.iterations {
			return left, true
		}
		// an iteration that took no time waits for the next tick
		if left == dt {
			return 0, false
		}
		end := now + dt - left
		left = p.skip(end-p.iterStart, left)
		now, dt = now+dt-left, left
	}
}

// skip jumps over whole iterations of length period that fit in left,
// keeping one full iteration plus the remainder to replay so the cells end
// where a played-out iteration leaves them. A finite loop always plays its
// last iteration. It returns the time left to replay.
func (p *loopPlayer) skip(period, left time.Duration) time.Duration {
	if period <= 0 || left < 2*period {
		return left
	}
	n := int64(left/period) - 1
	if p.iterations != Infinite {
		n = min(n, int64(p.iterations-p.count-1))
	}
	if n <= 0 {
		return left
	}
	p.count += int(n)
	return left - time.Duration(n)*period
}

func (p *loopPlayer) cancel(now time.Duration) {
	if p.cur != nil {
		p.cur.cancel(now)
	}
}
