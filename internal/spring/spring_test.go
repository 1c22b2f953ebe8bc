package spring

import (
	"math"
	"testing"
	"time"
)

func settle(t *testing.T, s Solver, from, to float64, step, limit time.Duration) (time.Duration, float64) {
	t.Helper()
	pos, vel := from, 0.0
	for elapsed := time.Duration(0); elapsed < limit; elapsed += step {
		pos, vel = s.Step(pos, vel, to, step)
		if Settled(pos, vel, to, DefaultRestDisplacement, DefaultRestSpeed) {
			return elapsed + step, pos
		}
	}
	t.Fatalf("spring did not settle within %v (pos=%v vel=%v)", limit, pos, vel)
	return 0, 0
}

func TestSolversConverge(t *testing.T) {
	params := []Params{
		{Tension: 120, Friction: 14},
		{Tension: 400, Friction: 28},
		{Tension: 180, Friction: 8},
		{Tension: 40, Friction: 40},
	}

	for _, kind := range Kinds() {
		for _, p := range params {
			s, err := NewSolver(kind, p, 0)
			if err != nil {
				t.Fatalf("NewSolver(%s): %v", kind, err)
			}
			_, pos := settle(t, s, 0, 1, 16*time.Millisecond, 20*time.Second)
			if math.Abs(pos-1) > DefaultRestDisplacement {
				t.Errorf("%s %+v: settled at %v", kind, p, pos)
			}
		}
	}
}

func TestSolversAgree(t *testing.T) {
	p := Params{Tension: 180, Friction: 12}
	a, _ := NewSolver(KindAnalytic, p, 0)
	r, _ := NewSolver(KindRK4, p, time.Millisecond)

	ap, av := 0.0, 0.0
	rp, rv := 0.0, 0.0
	for i := 0; i < 60; i++ {
		ap, av = a.Step(ap, av, 1, 16*time.Millisecond)
		rp, rv = r.Step(rp, rv, 1, 16*time.Millisecond)
		if math.Abs(ap-rp) > 1e-3 {
			t.Fatalf("step %d: analytic %.6f vs rk4 %.6f", i, ap, rp)
		}
	}
	if math.Abs(av-rv) > 1e-2 {
		t.Errorf("final velocities differ: %.6f vs %.6f", av, rv)
	}
}

func TestOscillatorEnergyDecays(t *testing.T) {
	p := Params{Tension: 100, Friction: 5}
	osc := Oscillator{Params: p, Target: 0}
	r := NewRK4(p, time.Millisecond)

	x := State{1, 0}
	e0 := osc.Energy(x)
	for i := 0; i < 100; i++ {
		x[0], x[1] = r.Step(x[0], x[1], 0, 10*time.Millisecond)
	}
	if e1 := osc.Energy(x); e1 >= e0 {
		t.Errorf("expected damped energy to decay: %v -> %v", e0, e1)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name  string
		p     Params
		valid bool
	}{
		{"normal", Params{Tension: 100, Friction: 10}, true},
		{"undamped", Params{Tension: 100, Friction: 0}, true},
		{"zero tension", Params{Tension: 0, Friction: 10}, false},
		{"negative friction", Params{Tension: 100, Friction: -1}, false},
		{"nan tension", Params{Tension: math.NaN(), Friction: 1}, false},
		{"inf friction", Params{Tension: 1, Friction: math.Inf(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err == nil) != tt.valid {
				t.Errorf("Validate() = %v, valid=%v", err, tt.valid)
			}
		})
	}
}

func TestNewSolverUnknownKind(t *testing.T) {
	if _, err := NewSolver("verlet", Params{Tension: 1, Friction: 1}, 0); err == nil {
		t.Error("expected error for unknown solver")
	}
}

func TestDampingRatio(t *testing.T) {
	p := Params{Tension: 100, Friction: 20}
	if got := p.DampingRatio(); math.Abs(got-1) > 1e-12 {
		t.Errorf("DampingRatio() = %v, want 1", got)
	}
	if got := p.AngularFrequency(); math.Abs(got-10) > 1e-12 {
		t.Errorf("AngularFrequency() = %v, want 10", got)
	}
}
