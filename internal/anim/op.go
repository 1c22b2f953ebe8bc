package anim

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/kinetic/internal/easing"
	"github.com/san-kum/kinetic/internal/spring"
)

// Infinite marks a Loop that only ends when cancelled.
const Infinite = -1

// Operation describes how one or more cells evolve over time. The set of
// operations is closed: Timing, Spring, Delay, Set, Sequence, Parallel,
// Stagger and Loop (or pointers to them).
type Operation interface {
	operation()
}

// Timing interpolates Cell from its value at begin to To over Duration.
// A nil Curve is linear.
type Timing struct {
	Cell     *Cell
	To       float64
	Duration time.Duration
	Curve    easing.Func
}

// Spring drives Cell toward To with spring physics. Duration is emergent;
// the engine bounds it by its maximum spring duration.
type Spring struct {
	Cell     *Cell
	To       float64
	Tension  float64
	Friction float64
	Velocity float64
}

// Delay holds for Duration without touching any cell.
type Delay struct {
	Duration time.Duration
}

// Set jumps Cell to Value without consuming time.
type Set struct {
	Cell  *Cell
	Value float64
}

// Sequence runs Ops strictly in order.
type Sequence struct {
	Ops []Operation
}

// Parallel starts all Ops on the same tick and completes with the slowest.
type Parallel struct {
	Ops []Operation
}

// Stagger starts Ops[i] at i*Interval after the stagger begins.
type Stagger struct {
	Ops      []Operation
	Interval time.Duration
}

// Loop re-runs Op. Iterations is a positive count or Infinite. Unless
// Continue is set, every cell touched by Op is reset to its loop-start value
// before each iteration after the first.
type Loop struct {
	Op         Operation
	Iterations int
	Continue   bool
}

func (Timing) operation()   {}
func (Spring) operation()   {}
func (Delay) operation()    {}
func (Set) operation()      {}
func (Sequence) operation() {}
func (Parallel) operation() {}
func (Stagger) operation()  {}
func (Loop) operation()     {}

func Seq(ops ...Operation) Sequence { return Sequence{Ops: ops} }
func Par(ops ...Operation) Parallel { return Parallel{Ops: ops} }

func normalize(op Operation) Operation {
	switch o := op.(type) {
	case *Timing:
		if o != nil {
			return *o
		}
	case *Spring:
		if o != nil {
			return *o
		}
	case *Delay:
		if o != nil {
			return *o
		}
	case *Set:
		if o != nil {
			return *o
		}
	case *Sequence:
		if o != nil {
			return *o
		}
	case *Parallel:
		if o != nil {
			return *o
		}
	case *Stagger:
		if o != nil {
			return *o
		}
	case *Loop:
		if o != nil {
			return *o
		}
	default:
		return op
	}
	return nil
}

func kindOf(op Operation) string {
	switch op.(type) {
	case Timing:
		return "timing"
	case Spring:
		return "spring"
	case Delay:
		return "delay"
	case Set:
		return "set"
	case Sequence:
		return "sequence"
	case Parallel:
		return "parallel"
	case Stagger:
		return "stagger"
	case Loop:
		return "loop"
	default:
		return "unknown"
	}
}

func join(path, kind string) string {
	if path == "" {
		return kind
	}
	return path + "." + kind
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validate checks the whole tree before anything is scheduled.
func (e *Engine) validate(op Operation, path string, def *Cell) error {
	op = normalize(op)
	if op == nil {
		return &OperationError{Path: join(path, "nil"), Reason: "nil operation"}
	}
	p := join(path, kindOf(op))

	switch o := op.(type) {
	case Timing:
		if err := e.checkCell(o.Cell, def, p); err != nil {
			return err
		}
		if !finite(o.To) {
			return &OperationError{Path: p, Reason: fmt.Sprintf("target %v is not finite", o.To)}
		}
		if o.Duration < 0 {
			return &OperationError{Path: p, Reason: fmt.Sprintf("negative duration %v", o.Duration)}
		}

	case Spring:
		if err := e.checkCell(o.Cell, def, p); err != nil {
			return err
		}
		if !finite(o.To) || !finite(o.Velocity) {
			return &OperationError{Path: p, Reason: "target and velocity must be finite"}
		}
		params := spring.Params{Tension: o.Tension, Friction: o.Friction}
		if err := params.Validate(); err != nil {
			return &OperationError{Path: p, Reason: err.Error()}
		}

	case Delay:
		if o.Duration < 0 {
			return &OperationError{Path: p, Reason: fmt.Sprintf("negative duration %v", o.Duration)}
		}

	case Set:
		if err := e.checkCell(o.Cell, def, p); err != nil {
			return err
		}
		if !finite(o.Value) {
			return &OperationError{Path: p, Reason: fmt.Sprintf("value %v is not finite", o.Value)}
		}

	case Sequence:
		return e.validateAll(o.Ops, p, def)

	case Parallel:
		return e.validateAll(o.Ops, p, def)

	case Stagger:
		if o.Interval < 0 {
			return &OperationError{Path: p, Reason: fmt.Sprintf("negative interval %v", o.Interval)}
		}
		return e.validateAll(o.Ops, p, def)

	case Loop:
		if o.Iterations == 0 || o.Iterations < Infinite {
			return &OperationError{Path: p, Reason: fmt.Sprintf("iterations must be positive or Infinite, got %d", o.Iterations)}
		}
		return e.validate(o.Op, p, def)

	default:
		return &OperationError{Path: p, Reason: fmt.Sprintf("unsupported operation %T", op)}
	}
	return nil
}

func (e *Engine) validateAll(ops []Operation, path string, def *Cell) error {
	for i, child := range ops {
		if err := e.validate(child, index(path, i), def); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) checkCell(c, def *Cell, path string) error {
	if c == nil {
		c = def
	}
	if c == nil {
		return &OperationError{Path: path, Reason: "no target cell"}
	}
	if c.engine != e {
		return &OperationError{Path: path, Reason: "cell belongs to another engine"}
	}
	if c.disposed {
		return &CellError{Cell: c.id, Wrapped: ErrDisposedCell}
	}
	return nil
}

// cellsOf lists the distinct cells touched by op in declaration order.
func cellsOf(op Operation, def *Cell) []*Cell {
	var cells []*Cell
	seen := make(map[*Cell]struct{})

	add := func(c *Cell) {
		if c == nil {
			c = def
		}
		if c == nil {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		cells = append(cells, c)
	}

	var walk func(Operation)
	walk = func(op Operation) {
		switch o := normalize(op).(type) {
		case Timing:
			add(o.Cell)
		case Spring:
			add(o.Cell)
		case Set:
			add(o.Cell)
		case Sequence:
			for _, c := range o.Ops {
				walk(c)
			}
		case Parallel:
			for _, c := range o.Ops {
				walk(c)
			}
		case Stagger:
			for _, c := range o.Ops {
				walk(c)
			}
		case Loop:
			walk(o.Op)
		}
	}
	walk(op)
	return cells
}

func targetOf(c, def *Cell) *Cell {
	if c == nil {
		return def
	}
	return c
}
