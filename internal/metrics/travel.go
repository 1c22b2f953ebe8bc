package metrics

import (
	"math"
	"time"
)

// Travel is the total distance covered by the value.
type Travel struct {
	name    string
	last    float64
	total   float64
	samples int
}

func NewTravel() *Travel {
	return &Travel{name: "travel"}
}

func (tr *Travel) Name() string { return tr.name }

func (tr *Travel) Observe(value float64, t time.Duration) {
	if tr.samples > 0 {
		tr.total += math.Abs(value - tr.last)
	}
	tr.last = value
	tr.samples++
}

func (tr *Travel) Value() float64 { return tr.total }

func (tr *Travel) Reset() {
	tr.last = 0
	tr.total = 0
	tr.samples = 0
}

// Frames counts the samples on which the value changed.
type Frames struct {
	name    string
	last    float64
	changed int
	samples int
}

func NewFrames() *Frames {
	return &Frames{name: "frames"}
}

func (f *Frames) Name() string { return f.name }

func (f *Frames) Observe(value float64, t time.Duration) {
	if f.samples > 0 && value != f.last {
		f.changed++
	}
	f.last = value
	f.samples++
}

func (f *Frames) Value() float64 { return float64(f.changed) }

func (f *Frames) Reset() {
	f.last = 0
	f.changed = 0
	f.samples = 0
}
