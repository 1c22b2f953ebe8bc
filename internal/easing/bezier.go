package easing

import "math"

const (
	bezierEpsilon    = 1e-7
	newtonIterations = 8
)

type unitBezier struct {
	ax, bx, cx float64
	ay, by, cy float64
}

// Bezier returns the curve of a cubic bezier anchored at (0,0) and (1,1).
func Bezier(x1, y1, x2, y2 float64) Func {
	b := unitBezier{}
	b.cx = 3 * x1
	b.bx = 3*(x2-x1) - b.cx
	b.ax = 1 - b.cx - b.bx
	b.cy = 3 * y1
	b.by = 3*(y2-y1) - b.cy
	b.ay = 1 - b.cy - b.by

	return func(t float64) float64 {
		if t <= 0 || math.IsNaN(t) {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return b.sampleY(b.solveX(t))
	}
}

func (b unitBezier) sampleX(t float64) float64 { return ((b.ax*t+b.bx)*t + b.cx) * t }
func (b unitBezier) sampleY(t float64) float64 { return ((b.ay*t+b.by)*t + b.cy) * t }
func (b unitBezier) slopeX(t float64) float64  { return (3*b.ax*t+2*b.bx)*t + b.cx }

func (b unitBezier) solveX(x float64) float64 {
	t := x
	for i := 0; i < newtonIterations; i++ {
		err := b.sampleX(t) - x
		if math.Abs(err) < bezierEpsilon {
			return t
		}
		d := b.slopeX(t)
		if math.Abs(d) < 1e-6 {
			break
		}
		t -= err / d
	}

	lo, hi := 0.0, 1.0
	t = x
	for lo < hi {
		v := b.sampleX(t)
		if math.Abs(v-x) < bezierEpsilon {
			return t
		}
		if x > v {
			lo = t
		} else {
			hi = t
		}
		t = (hi-lo)/2 + lo
		if hi-lo < bezierEpsilon {
			break
		}
	}
	return t
}
