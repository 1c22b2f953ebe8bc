package metrics

import (
	"math"
	"time"
)

// Overshoot is the largest excursion past target in the direction of travel,
// as a fraction of the distance from the first sample to target. A trajectory
// that starts on target reports its largest absolute deviation instead.
type Overshoot struct {
	name    string
	target  float64
	start   float64
	peak    float64
	samples int
}

func NewOvershoot(target float64) *Overshoot {
	return &Overshoot{
		name:   "overshoot",
		target: target,
	}
}

func (o *Overshoot) Name() string { return o.name }

func (o *Overshoot) Observe(value float64, t time.Duration) {
	if o.samples == 0 {
		o.start = value
	}
	o.samples++

	dist := o.target - o.start
	var past float64
	switch {
	case dist > 0:
		past = value - o.target
	case dist < 0:
		past = o.target - value
	default:
		past = math.Abs(value - o.target)
	}
	o.peak = math.Max(o.peak, past)
}

func (o *Overshoot) Value() float64 {
	dist := math.Abs(o.target - o.start)
	if dist == 0 {
		return o.peak
	}
	return o.peak / dist
}

func (o *Overshoot) Reset() {
	o.start = 0
	o.peak = 0
	o.samples = 0
}
