package anim

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

type viewUpdater interface {
	update(v float64)
}

// Derived is a read-only mapping of a cell's value, recomputed synchronously
// on every change of the cell.
type Derived[T comparable] struct {
	mapper    func(float64) T
	value     T
	listeners []func(T)
}

// Subscribe registers mapper on c. Views of a disposed cell keep their last
// value and never update.
func Subscribe[T comparable](c *Cell, mapper func(float64) T) *Derived[T] {
	d := &Derived[T]{mapper: mapper, value: mapper(c.value)}
	if !c.disposed {
		c.views = append(c.views, d)
	}
	return d
}

func (d *Derived[T]) Value() T { return d.value }

// OnChange registers fn to run whenever the mapped output changes.
func (d *Derived[T]) OnChange(fn func(T)) {
	d.listeners = append(d.listeners, fn)
}

func (d *Derived[T]) update(v float64) {
	out := d.mapper(v)
	if out == d.value {
		return
	}
	d.value = out
	for _, fn := range d.listeners {
		fn(out)
	}
}

// Interpolator builds a piecewise-linear mapping from in to out. Inputs
// outside the range clamp to the nearest output boundary.
func Interpolator(in, out []float64) (func(float64) float64, error) {
	if err := checkRange(in, len(out)); err != nil {
		return nil, err
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: output[%d] is not finite", ErrInvalidRange, i)
		}
	}

	in = append([]float64(nil), in...)
	out = append([]float64(nil), out...)

	return func(v float64) float64 {
		i, t := locate(in, v)
		if t <= 0 {
			return out[i]
		}
		return out[i] + (out[i+1]-out[i])*t
	}, nil
}

// Interpolate subscribes a clamped numeric view.
func (c *Cell) Interpolate(in, out []float64) (*Derived[float64], error) {
	fn, err := Interpolator(in, out)
	if err != nil {
		return nil, err
	}
	return Subscribe(c, fn), nil
}

// InterpolateColor subscribes a view blending hex colors in RGB space. The
// view yields "#rrggbb" strings.
func (c *Cell) InterpolateColor(in []float64, hexColors []string) (*Derived[string], error) {
	if err := checkRange(in, len(hexColors)); err != nil {
		return nil, err
	}

	colors := make([]colorful.Color, len(hexColors))
	for i, h := range hexColors {
		col, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("%w: color %q: %v", ErrInvalidRange, h, err)
		}
		colors[i] = col
	}
	in = append([]float64(nil), in...)

	return Subscribe(c, func(v float64) string {
		i, t := locate(in, v)
		if t <= 0 {
			return colors[i].Hex()
		}
		return colors[i].BlendRgb(colors[i+1], t).Clamped().Hex()
	}), nil
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?`)

// InterpolateString subscribes a view interpolating the numbers embedded in
// patterns such as "0deg" -> "360deg". Every pattern must carry the same
// count of numbers; the text around them comes from the first pattern.
func (c *Cell) InterpolateString(in []float64, patterns []string) (*Derived[string], error) {
	if err := checkRange(in, len(patterns)); err != nil {
		return nil, err
	}

	skeleton := numberPattern.Split(patterns[0], -1)
	slots := len(skeleton) - 1
	columns := make([][]float64, slots)
	for i := range columns {
		columns[i] = make([]float64, len(patterns))
	}

	for p, pattern := range patterns {
		nums := numberPattern.FindAllString(pattern, -1)
		if len(nums) != slots {
			return nil, fmt.Errorf("%w: pattern %q has %d numbers, want %d", ErrInvalidRange, pattern, len(nums), slots)
		}
		for j, n := range nums {
			v, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidRange, pattern, err)
			}
			columns[j][p] = v
		}
	}

	mappers := make([]func(float64) float64, slots)
	for j := range columns {
		fn, err := Interpolator(in, columns[j])
		if err != nil {
			return nil, err
		}
		mappers[j] = fn
	}

	return Subscribe(c, func(v float64) string {
		var sb strings.Builder
		for j, part := range skeleton {
			sb.WriteString(part)
			if j < slots {
				n := math.Round(mappers[j](v)*1e6) / 1e6
				sb.WriteString(strconv.FormatFloat(n, 'f', -1, 64))
			}
		}
		return sb.String()
	}), nil
}

func checkRange(in []float64, outLen int) error {
	if len(in) < 2 {
		return fmt.Errorf("%w: need at least 2 input points, got %d", ErrInvalidRange, len(in))
	}
	if len(in) != outLen {
		return fmt.Errorf("%w: input has %d points, output has %d", ErrInvalidRange, len(in), outLen)
	}
	for i, v := range in {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: input[%d] is not finite", ErrInvalidRange, i)
		}
		if i > 0 && v < in[i-1] {
			return fmt.Errorf("%w: input range must be non-decreasing", ErrInvalidRange)
		}
	}
	return nil
}

// locate returns the segment index and fraction for v. A fraction of zero
// means "use out[i]" exactly; values outside the range clamp.
func locate(in []float64, v float64) (int, float64) {
	last := len(in) - 1
	if math.IsNaN(v) || v <= in[0] {
		return 0, 0
	}
	if v >= in[last] {
		return last, 0
	}
	for i := 0; i < last; i++ {
		if v <= in[i+1] {
			span := in[i+1] - in[i]
			if span == 0 {
				return i + 1, 0
			}
			return i, (v - in[i]) / span
		}
	}
	return last, 0
}
