package metrics

import (
	"math"
	"time"
)

// Settle reports, in milliseconds, the time after which the trajectory never
// again leaves target±tolerance. It is -1 while the last sample is outside.
type Settle struct {
	name      string
	target    float64
	tolerance float64
	settledAt time.Duration
	inside    bool
	samples   int
}

func NewSettle(target, tolerance float64) *Settle {
	return &Settle{
		name:      "settle_ms",
		target:    target,
		tolerance: tolerance,
	}
}

func (s *Settle) Name() string { return s.name }

func (s *Settle) Observe(value float64, t time.Duration) {
	s.samples++
	in := math.Abs(value-s.target) <= s.tolerance
	if in && !s.inside {
		s.settledAt = t
	}
	s.inside = in
}

func (s *Settle) Value() float64 {
	if s.samples == 0 || !s.inside {
		return -1
	}
	return float64(s.settledAt) / float64(time.Millisecond)
}

func (s *Settle) Reset() {
	s.settledAt = 0
	s.inside = false
	s.samples = 0
}
