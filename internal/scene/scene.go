// Package scene runs preset animations headlessly over named cells and
// records what they do.
package scene

import (
	"fmt"
	"time"

	"github.com/san-kum/kinetic/internal/anim"
	"github.com/san-kum/kinetic/internal/preset"
)

// CellSpec declares one cell. Target is where the cell should rest once the
// scene has played out.
type CellSpec struct {
	Name    string
	Initial float64
	Target  float64
}

// Cells maps cell names to the live cells of an instance.
type Cells map[string]*anim.Cell

// Step starts the operation built by Build At engine time after the scene
// begins. When Cell is set the operation is started on that cell, binding
// primitives that name no cell.
type Step struct {
	At    time.Duration
	Cell  string
	Build func(lib *preset.Library, cells Cells) anim.Operation
}

type Scene struct {
	Name        string
	Description string
	Cells       []CellSpec
	Steps       []Step
	// Infinite scenes never go idle and run until the limit.
	Infinite bool
}

func (s *Scene) CellNames() []string {
	names := make([]string, len(s.Cells))
	for i, c := range s.Cells {
		names[i] = c.Name
	}
	return names
}

// Instance is a scene bound to an engine: one scope of cells plus a cursor
// over the scene's steps.
type Instance struct {
	scene  *Scene
	engine *anim.Engine
	lib    *preset.Library
	scope  *anim.Scope
	cells  []*anim.Cell
	byName Cells
	origin time.Duration
	next   int
}

func NewInstance(s *Scene, lib *preset.Library, e *anim.Engine) *Instance {
	in := &Instance{scene: s, engine: e, lib: lib}
	in.Restart()
	return in
}

func (in *Instance) Scene() *Scene               { return in.scene }
func (in *Instance) Engine() *anim.Engine        { return in.engine }
func (in *Instance) Cells() []*anim.Cell         { return in.cells }
func (in *Instance) Cell(name string) *anim.Cell { return in.byName[name] }

// Restart disposes the current cells, cancelling anything in flight, and
// replays the scene from its first step at the current engine time.
func (in *Instance) Restart() {
	if in.scope != nil {
		in.scope.Dispose()
	}
	in.scope = in.engine.NewScope()
	in.cells = make([]*anim.Cell, len(in.scene.Cells))
	in.byName = make(Cells, len(in.scene.Cells))
	for i, spec := range in.scene.Cells {
		c := in.scope.NewCell(spec.Initial)
		in.cells[i] = c
		in.byName[spec.Name] = c
	}
	in.origin = in.engine.Now()
	in.next = 0
}

// SetLibrary swaps the preset library used by steps started from now on.
func (in *Instance) SetLibrary(lib *preset.Library) { in.lib = lib }

// Elapsed is the engine time since the scene (re)started.
func (in *Instance) Elapsed() time.Duration { return in.engine.Now() - in.origin }

func (in *Instance) Pending() bool { return in.next < len(in.scene.Steps) }

// Done reports whether every step has started and the engine is idle.
func (in *Instance) Done() bool { return !in.Pending() && in.engine.Idle() }

// Advance starts the steps that are due and then ticks the engine by dt.
func (in *Instance) Advance(dt time.Duration) error {
	if err := in.startDue(); err != nil {
		return err
	}
	in.engine.Tick(dt)
	return nil
}

func (in *Instance) startDue() error {
	for in.Pending() && in.scene.Steps[in.next].At <= in.Elapsed() {
		idx := in.next
		step := in.scene.Steps[idx]
		in.next++

		op := step.Build(in.lib, in.byName)
		var err error
		if step.Cell != "" {
			c, ok := in.byName[step.Cell]
			if !ok {
				return fmt.Errorf("scene %s step %d: unknown cell %q", in.scene.Name, idx, step.Cell)
			}
			_, err = c.Start(op, nil)
		} else {
			_, err = in.engine.Start(op, nil)
		}
		if err != nil {
			return fmt.Errorf("scene %s step %d: %w", in.scene.Name, idx, err)
		}
	}
	return nil
}
