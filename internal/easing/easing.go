// Package easing provides monotonic easing curves mapping elapsed fraction to
// eased fraction on [0, 1].
package easing

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Func maps an elapsed fraction in [0, 1] to an eased fraction.
type Func func(t float64) float64

func Linear(t float64) float64 { return clamp01(t) }

func InQuad(t float64) float64 {
	t = clamp01(t)
	return t * t
}

func OutQuad(t float64) float64 {
	t = clamp01(t)
	return t * (2 - t)
}

func InOutQuad(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func InCubic(t float64) float64 {
	t = clamp01(t)
	return t * t * t
}

func OutCubic(t float64) float64 {
	t = clamp01(t) - 1
	return t*t*t + 1
}

func InOutCubic(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 2*t - 2
	return 0.5*u*u*u + 1
}

func InSine(t float64) float64  { return 1 - math.Cos(clamp01(t)*math.Pi/2) }
func OutSine(t float64) float64 { return math.Sin(clamp01(t) * math.Pi / 2) }
func InOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*clamp01(t)) - 1) / 2
}

var named = map[string]Func{
	"linear":         Linear,
	"in-quad":        InQuad,
	"out-quad":       OutQuad,
	"in-out-quad":    InOutQuad,
	"in-cubic":       InCubic,
	"out-cubic":      OutCubic,
	"in-out-cubic":   InOutCubic,
	"in-sine":        InSine,
	"out-sine":       OutSine,
	"in-out-sine":    InOutSine,
	"ease":           Bezier(0.25, 0.1, 0.25, 1),
	"ease-in":        Bezier(0.42, 0, 1, 1),
	"ease-out":       Bezier(0, 0, 0.58, 1),
	"ease-in-out":    Bezier(0.42, 0, 0.58, 1),
	"standard":       Bezier(0.4, 0, 0.2, 1),
	"decelerate":     Bezier(0, 0, 0.2, 1),
	"accelerate":     Bezier(0.4, 0, 1, 1),
	"sharp":          Bezier(0.4, 0, 0.6, 1),
	"emphasized-out": Bezier(0.05, 0.7, 0.1, 1),
}

// Lookup returns the named curve.
func Lookup(name string) (Func, bool) {
	fn, ok := named[strings.ToLower(strings.TrimSpace(name))]
	return fn, ok
}

// Names lists the registered curve names in sorted order.
func Names() []string {
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse resolves either a registered name or a "cubic-bezier(x1,y1,x2,y2)"
// expression. Every control coordinate must lie in [0, 1], which keeps the
// curve monotonic.
func Parse(s string) (Func, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if fn, ok := named[spec]; ok {
		return fn, nil
	}

	if !strings.HasPrefix(spec, "cubic-bezier(") || !strings.HasSuffix(spec, ")") {
		return nil, fmt.Errorf("easing: unknown curve %q", s)
	}

	args := strings.Split(spec[len("cubic-bezier("):len(spec)-1], ",")
	if len(args) != 4 {
		return nil, fmt.Errorf("easing: cubic-bezier needs 4 values, got %d", len(args))
	}

	var p [4]float64
	for i, a := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return nil, fmt.Errorf("easing: cubic-bezier value %q: %w", a, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("easing: cubic-bezier value %q is not finite", a)
		}
		p[i] = v
	}

	if p[0] < 0 || p[0] > 1 || p[2] < 0 || p[2] > 1 {
		return nil, fmt.Errorf("easing: cubic-bezier x values must be in [0,1], got %v", p)
	}
	if p[1] < 0 || p[1] > 1 || p[3] < 0 || p[3] > 1 {
		return nil, fmt.Errorf("easing: cubic-bezier y values must be in [0,1], got %v", p)
	}

	return Bezier(p[0], p[1], p[2], p[3]), nil
}

func clamp01(t float64) float64 {
	if t <= 0 || math.IsNaN(t) {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t
}
