package spring

import (
	"math"
	"time"
)

// State is [position, velocity].
type State [2]float64

// Oscillator is a damped mass on a spring pulled toward Target.
type Oscillator struct {
	Params
	Target float64
}

func (o *Oscillator) Derive(x State) State {
	force := -o.Tension*(x[0]-o.Target) - o.Friction*x[1]
	return State{x[1], force / o.mass()}
}

// Energy is the kinetic plus potential energy relative to Target.
func (o *Oscillator) Energy(x State) float64 {
	stretch := x[0] - o.Target
	return 0.5*o.mass()*x[1]*x[1] + 0.5*o.Tension*stretch*stretch
}

// RK4 integrates the oscillator with fixed substeps no longer than maxSubstep.
type RK4 struct {
	osc        Oscillator
	maxSubstep time.Duration
}

func NewRK4(p Params, maxSubstep time.Duration) *RK4 {
	if maxSubstep <= 0 {
		maxSubstep = DefaultMaxSubstep
	}
	return &RK4{osc: Oscillator{Params: p}, maxSubstep: maxSubstep}
}

func (r *RK4) Step(pos, vel, target float64, dt time.Duration) (float64, float64) {
	if dt <= 0 {
		return pos, vel
	}
	r.osc.Target = target

	n := int(math.Ceil(float64(dt) / float64(r.maxSubstep)))
	h := dt.Seconds() / float64(n)

	x := State{pos, vel}
	for i := 0; i < n; i++ {
		x = r.step(x, h)
	}
	return x[0], x[1]
}

func (r *RK4) step(x State, h float64) State {
	k1 := r.osc.Derive(x)
	k2 := r.osc.Derive(State{x[0] + h*0.5*k1[0], x[1] + h*0.5*k1[1]})
	k3 := r.osc.Derive(State{x[0] + h*0.5*k2[0], x[1] + h*0.5*k2[1]})
	k4 := r.osc.Derive(State{x[0] + h*k3[0], x[1] + h*k3[1]})

	h6 := h / 6.0
	return State{
		x[0] + h6*(k1[0]+2*k2[0]+2*k3[0]+k4[0]),
		x[1] + h6*(k1[1]+2*k2[1]+2*k3[1]+k4[1]),
	}
}
