package analysis

import (
	"math"
	"time"
)

// Point is one sample in the phase plane: X is the value, Y its velocity in
// units per second.
type Point struct {
	X, Y float64
}

// Portrait pairs each sample with its velocity. Interior velocities use
// central differences, the ends use one-sided ones.
func Portrait(samples []float64, step time.Duration) []Point {
	n := len(samples)
	if n < 2 || step <= 0 {
		return nil
	}
	dt := step.Seconds()

	pts := make([]Point, n)
	for i, v := range samples {
		var vel float64
		switch i {
		case 0:
			vel = (samples[1] - samples[0]) / dt
		case n - 1:
			vel = (samples[n-1] - samples[n-2]) / dt
		default:
			vel = (samples[i+1] - samples[i-1]) / (2 * dt)
		}
		pts[i] = Point{X: v, Y: vel}
	}
	return pts
}

// Bounds returns the extent of pts. Empty input gives all zeros.
func Bounds(pts []Point) (minX, maxX, minY, maxY float64) {
	if len(pts) == 0 {
		return 0, 0, 0, 0
	}
	minX, maxX = math.Inf(1), math.Inf(-1)
	minY, maxY = math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return minX, maxX, minY, maxY
}

// Crossings counts sign changes of samples-rest. Samples within tol of rest
// neither start nor end a crossing.
func Crossings(samples []float64, rest, tol float64) int {
	count := 0
	side := 0
	for _, v := range samples {
		d := v - rest
		if math.Abs(d) <= tol {
			continue
		}
		s := 1
		if d < 0 {
			s = -1
		}
		if side != 0 && s != side {
			count++
		}
		side = s
	}
	return count
}
