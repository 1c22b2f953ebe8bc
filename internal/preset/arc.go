package preset

import "math"

// ArcVisible is the share of an indeterminate ring that is drawn; the rest
// stays hidden.
const ArcVisible = 0.25

// Arc is the visible segment of an indeterminate progress ring, in degrees
// clockwise from twelve o'clock.
type Arc struct {
	Start float64
	Sweep float64
}

func (a Arc) End() float64 { return math.Mod(a.Start+a.Sweep, 360) }

// Contains reports whether the ring angle deg (degrees) is drawn.
func (a Arc) Contains(deg float64) bool {
	d := math.Mod(deg-a.Start, 360)
	if d < 0 {
		d += 360
	}
	return d < a.Sweep
}

// ArcAt maps a loading-rotation cell value in [0, 1) to the drawn segment.
func ArcAt(rotation float64) Arc {
	start := math.Mod(rotation*360, 360)
	if start < 0 {
		start += 360
	}
	return Arc{Start: start, Sweep: ArcVisible * 360}
}
