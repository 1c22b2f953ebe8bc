package anim

// CellID identifies a cell within its engine. Zero means "no cell".
type CellID uint64

// Cell is an owned animatable value. Cells are created by a Scope and live
// until the scope is disposed.
type Cell struct {
	id       CellID
	engine   *Engine
	scope    *Scope
	value    float64
	active   *Token
	views    []viewUpdater
	disposed bool
}

func (c *Cell) ID() CellID      { return c.id }
func (c *Cell) Value() float64  { return c.value }
func (c *Cell) Disposed() bool  { return c.disposed }
func (c *Cell) Engine() *Engine { return c.engine }
func (c *Cell) Active() *Token  { return c.active }
func (c *Cell) Animating() bool { return c.active != nil && c.active.state == tokenRunning }
func (c *Cell) Scope() *Scope   { return c.scope }

// Start runs op with c as the target of every primitive that names no cell.
// Any top-level operation claiming a cell touched by op is cancelled first.
func (c *Cell) Start(op Operation, onComplete func()) (*Token, error) {
	return c.engine.start(op, c, onComplete)
}

// SetValue cancels any operation claiming c and jumps to v.
func (c *Cell) SetValue(v float64) error {
	if c.disposed {
		return &CellError{Cell: c.id, Wrapped: ErrDisposedCell}
	}
	if c.active != nil {
		c.active.Cancel()
	}
	c.set(v)
	return nil
}

func (c *Cell) set(v float64) {
	if c.disposed {
		return
	}
	c.value = v
	for _, view := range c.views {
		view.update(v)
	}
}

// Scope is the arena owning the cells of one component instance.
type Scope struct {
	engine   *Engine
	cells    []*Cell
	disposed bool
}

// NewCell allocates a cell with no active operation. Cells created on a
// disposed scope are born disposed.
func (s *Scope) NewCell(initial float64) *Cell {
	s.engine.nextCell++
	c := &Cell{
		id:       s.engine.nextCell,
		engine:   s.engine,
		scope:    s,
		value:    initial,
		disposed: s.disposed,
	}
	if !s.disposed {
		s.cells = append(s.cells, c)
	}
	return c
}

func (s *Scope) Cells() []*Cell { return s.cells }
func (s *Scope) Disposed() bool { return s.disposed }

// Dispose cancels every operation touching the scope's cells and tears the
// cells down. It is safe to call more than once.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	for _, c := range s.cells {
		if c.active != nil {
			c.active.Cancel()
		}
	}
	for _, c := range s.cells {
		c.disposed = true
		c.views = nil
	}
	s.cells = nil
}
