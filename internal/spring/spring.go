// Package spring models damped springs used by spring animations.
//
// A spring is described by tension (stiffness), friction (damping) and an
// optional mass, pulled toward a target. Two solvers advance it:
//
//   - "analytic": closed-form damped harmonic motion (charmbracelet/harmonica)
//   - "rk4": the oscillator ODE integrated with classic Runge-Kutta
package spring

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	KindAnalytic = "analytic"
	KindRK4      = "rk4"

	DefaultMass             = 1.0
	DefaultRestDisplacement = 0.001
	DefaultRestSpeed        = 0.001
	DefaultMaxSubstep       = 4 * time.Millisecond
)

type Params struct {
	Tension  float64
	Friction float64
	Mass     float64
}

func (p Params) mass() float64 {
	if p.Mass <= 0 {
		return DefaultMass
	}
	return p.Mass
}

// AngularFrequency is sqrt(k/m) in rad/s.
func (p Params) AngularFrequency() float64 {
	return math.Sqrt(p.Tension / p.mass())
}

// DampingRatio is c / (2*sqrt(k*m)); 1 is critically damped.
func (p Params) DampingRatio() float64 {
	return p.Friction / (2 * math.Sqrt(p.Tension*p.mass()))
}

func (p Params) Validate() error {
	if math.IsNaN(p.Tension) || math.IsInf(p.Tension, 0) || p.Tension <= 0 {
		return fmt.Errorf("tension must be positive and finite, got %v", p.Tension)
	}
	if math.IsNaN(p.Friction) || math.IsInf(p.Friction, 0) || p.Friction < 0 {
		return fmt.Errorf("friction must be non-negative and finite, got %v", p.Friction)
	}
	if math.IsNaN(p.Mass) || math.IsInf(p.Mass, 0) || p.Mass < 0 {
		return fmt.Errorf("mass must be non-negative and finite, got %v", p.Mass)
	}
	return nil
}

// Solver advances a spring toward target by dt.
type Solver interface {
	Step(pos, vel, target float64, dt time.Duration) (float64, float64)
}

// NewSolver builds a solver of the given kind. maxSubstep bounds the
// integration step of iterative solvers.
func NewSolver(kind string, p Params, maxSubstep time.Duration) (Solver, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if maxSubstep <= 0 {
		maxSubstep = DefaultMaxSubstep
	}

	switch kind {
	case KindAnalytic, "":
		return NewAnalytic(p), nil
	case KindRK4:
		return NewRK4(p, maxSubstep), nil
	default:
		return nil, fmt.Errorf("unknown spring solver: %s", kind)
	}
}

// Kinds lists the available solver kinds.
func Kinds() []string {
	kinds := []string{KindAnalytic, KindRK4}
	sort.Strings(kinds)
	return kinds
}

// Settled reports whether a spring is at rest on its target.
func Settled(pos, vel, target, restDisplacement, restSpeed float64) bool {
	return math.Abs(pos-target) <= restDisplacement && math.Abs(vel) <= restSpeed
}
