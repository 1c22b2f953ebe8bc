// Package preset builds the composite animations used across the UI from the
// primitives in package anim.
//
// A Library captures one configuration table at construction. Its methods are
// pure: the same cells and arguments always yield the same operation tree,
// and nothing outside the captured table is consulted.
package preset

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/kinetic/internal/anim"
	"github.com/san-kum/kinetic/internal/config"
	"github.com/san-kum/kinetic/internal/easing"
)

type Library struct {
	table    *config.Table
	standard easing.Func
	gentle   easing.Func
	sharp    easing.Func
}

// New validates t and keeps a private copy. A nil table means the defaults.
func New(t *config.Table) (*Library, error) {
	if t == nil {
		t = config.Default()
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("preset table: %w", err)
	}

	l := &Library{table: t.Clone()}
	curves := []struct {
		spec string
		dst  *easing.Func
	}{
		{t.Curves.Standard, &l.standard},
		{t.Curves.Gentle, &l.gentle},
		{t.Curves.Sharp, &l.sharp},
	}
	for _, c := range curves {
		fn, err := easing.Parse(c.spec)
		if err != nil {
			return nil, err
		}
		*c.dst = fn
	}
	return l, nil
}

// Override returns a library built from a copy of the table with fn applied.
func (l *Library) Override(fn func(*config.Table)) (*Library, error) {
	t := l.table.Clone()
	fn(t)
	return New(t)
}

// Table returns a copy of the captured table.
func (l *Library) Table() *config.Table { return l.table.Clone() }

func (l *Library) spring(c *anim.Cell, to float64, s config.SpringConfig) anim.Spring {
	return anim.Spring{Cell: c, To: to, Tension: s.Tension, Friction: s.Friction}
}

// Entrance fades opacity in while scale and the optional translate cell
// spring home.
func (l *Library) Entrance(opacity, scale, translate *anim.Cell) anim.Parallel {
	ops := []anim.Operation{
		anim.Timing{Cell: opacity, To: 1, Duration: l.table.Durations.Fast(), Curve: l.gentle},
		l.spring(scale, 1, l.table.Springs.Gentle),
	}
	if translate != nil {
		ops = append(ops, l.spring(translate, 0, l.table.Springs.Soft))
	}
	return anim.Par(ops...)
}

// Exit mirrors Entrance: opacity to 0, scale down to the exit scale and the
// optional translate cell out to offset.
func (l *Library) Exit(opacity, scale, translate *anim.Cell, offset float64) anim.Parallel {
	d := l.table.Durations.Normal()
	ops := []anim.Operation{
		anim.Timing{Cell: opacity, To: 0, Duration: d, Curve: l.standard},
		anim.Timing{Cell: scale, To: l.table.Scales.Exit, Duration: d, Curve: l.sharp},
	}
	if translate != nil {
		ops = append(ops, anim.Timing{Cell: translate, To: offset, Duration: d, Curve: l.standard})
	}
	return anim.Par(ops...)
}

// PressFeedback squeezes to the tap scale and bounces back to 1 from
// wherever the cell currently is.
func (l *Library) PressFeedback(scale *anim.Cell) anim.Sequence {
	return anim.Seq(
		l.spring(scale, l.table.Scales.Tap, l.table.Springs.Responsive),
		l.spring(scale, 1, l.table.Springs.Bouncy),
	)
}

// Pulse pops count times. A count below one yields an empty sequence.
func (l *Library) Pulse(scale *anim.Cell, count int) anim.Sequence {
	var ops []anim.Operation
	for i := 0; i < count; i++ {
		ops = append(ops,
			l.spring(scale, l.table.Scales.Pop, l.table.Springs.Bouncy),
			l.spring(scale, 1, l.table.Springs.Gentle),
		)
	}
	return anim.Seq(ops...)
}

// LoadingRotation turns rotation from 0 to 1 forever. Map the cell to
// degrees with InterpolateString or Arc.
func (l *Library) LoadingRotation(rotation *anim.Cell) anim.Loop {
	return anim.Loop{
		Op: anim.Seq(
			anim.Set{Cell: rotation, Value: 0},
			anim.Timing{Cell: rotation, To: 1, Duration: l.table.Durations.Rotation(), Curve: l.standard},
		),
		Iterations: anim.Infinite,
		Continue:   true,
	}
}

// RevealItem is one row of a staggered list. Translate may be nil.
type RevealItem struct {
	Opacity   *anim.Cell
	Translate *anim.Cell
}

// StaggeredReveal enters items in order, interval apart. An interval of
// zero or less uses the table's stagger interval.
func (l *Library) StaggeredReveal(items []RevealItem, interval time.Duration) anim.Stagger {
	if interval <= 0 {
		interval = l.table.Stagger.Interval()
	}
	ops := make([]anim.Operation, len(items))
	for i, it := range items {
		entry := []anim.Operation{
			anim.Timing{Cell: it.Opacity, To: 1, Duration: l.table.Durations.Normal(), Curve: l.gentle},
		}
		if it.Translate != nil {
			entry = append(entry, l.spring(it.Translate, 0, l.table.Springs.Soft))
		}
		ops[i] = anim.Par(entry...)
	}
	return anim.Stagger{Ops: ops, Interval: interval}
}

// Progress eases a progress cell to fraction, clamped to [0, 1].
func (l *Library) Progress(cell *anim.Cell, fraction float64) anim.Timing {
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return anim.Timing{Cell: cell, To: fraction, Duration: l.table.Durations.Slow(), Curve: l.standard}
}

// Success pops a badge in and then draws its check mark.
func (l *Library) Success(scale, check *anim.Cell) anim.Sequence {
	return anim.Seq(
		l.spring(scale, 1, l.table.Springs.Bouncy),
		anim.Timing{Cell: check, To: 1, Duration: l.table.Durations.Normal(), Curve: l.standard},
	)
}
