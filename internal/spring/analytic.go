package spring

import (
	"time"

	"github.com/charmbracelet/harmonica"
)

// Analytic steps a spring with harmonica's closed-form damped oscillator.
// The coefficients are recomputed only when dt changes.
type Analytic struct {
	freq    float64
	damping float64
	lastDt  time.Duration
	spring  harmonica.Spring
}

func NewAnalytic(p Params) *Analytic {
	return &Analytic{
		freq:    p.AngularFrequency(),
		damping: p.DampingRatio(),
		lastDt:  -1,
	}
}

func (a *Analytic) Step(pos, vel, target float64, dt time.Duration) (float64, float64) {
	if dt <= 0 {
		return pos, vel
	}
	if dt != a.lastDt {
		a.spring = harmonica.NewSpring(dt.Seconds(), a.freq, a.damping)
		a.lastDt = dt
	}
	return a.spring.Update(pos, vel, target)
}
