// Package metrics scores the trajectory of a single animated cell.
package metrics

import "time"

// Metric accumulates one score over a sampled trajectory.
type Metric interface {
	Name() string
	Observe(value float64, t time.Duration)
	Value() float64
	Reset()
}

// Standard returns the metrics recorded for every cell of a run.
func Standard(target, tolerance float64) []Metric {
	return []Metric{
		NewSettle(target, tolerance),
		NewOvershoot(target),
		NewTravel(),
		NewFrames(),
	}
}
