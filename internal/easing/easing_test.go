package easing

import (
	"math"
	"testing"
)

func TestCurvesEndpoints(t *testing.T) {
	for _, name := range Names() {
		fn, _ := Lookup(name)
		t.Run(name, func(t *testing.T) {
			if got := fn(0); math.Abs(got) > 1e-6 {
				t.Errorf("f(0) = %v, want 0", got)
			}
			if got := fn(1); math.Abs(got-1) > 1e-6 {
				t.Errorf("f(1) = %v, want 1", got)
			}
			if got := fn(-0.5); math.Abs(got) > 1e-6 {
				t.Errorf("f(-0.5) = %v, want 0", got)
			}
			if got := fn(1.5); math.Abs(got-1) > 1e-6 {
				t.Errorf("f(1.5) = %v, want 1", got)
			}
		})
	}
}

func TestCurvesMonotonic(t *testing.T) {
	for _, name := range Names() {
		fn, _ := Lookup(name)
		prev := fn(0)
		for i := 1; i <= 200; i++ {
			v := fn(float64(i) / 200)
			if v < prev-1e-6 {
				t.Errorf("%s not monotonic at %d: %v < %v", name, i, v, prev)
				break
			}
			prev = v
		}
	}
}

func TestBezierLinear(t *testing.T) {
	fn := Bezier(0, 0, 1, 1)
	for _, x := range []float64{0.1, 0.25, 0.5, 0.9} {
		if got := fn(x); math.Abs(got-x) > 1e-5 {
			t.Errorf("linear bezier(%v) = %v", x, got)
		}
	}
}

func TestBezierMatchesKnownValue(t *testing.T) {
	// ease-in-out is symmetric around the midpoint
	fn, _ := Lookup("ease-in-out")
	if got := fn(0.5); math.Abs(got-0.5) > 1e-4 {
		t.Errorf("ease-in-out(0.5) = %v, want 0.5", got)
	}
	if a, b := fn(0.2), fn(0.8); math.Abs(a+b-1) > 1e-4 {
		t.Errorf("ease-in-out not symmetric: %v + %v", a, b)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"linear", false},
		{"  Ease-Out ", false},
		{"cubic-bezier(0.4,0,0.2,1)", false},
		{"cubic-bezier(0.4, 0, 0.2, 1)", false},
		{"cubic-bezier(0.4,0,0.2)", true},
		{"cubic-bezier(1.5,0,0.2,1)", true},
		{"cubic-bezier(0,2,1,-1)", true},
		{"cubic-bezier(0.3,1.4,0.6,1)", true},
		{"cubic-bezier(1,1,0,0)", false},
		{"cubic-bezier(a,0,0.2,1)", true},
		{"bouncy", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			fn, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := fn(1); math.Abs(got-1) > 1e-6 {
				t.Errorf("f(1) = %v", got)
			}
		})
	}
}

func TestParsedCurvesAreMonotonic(t *testing.T) {
	for _, in := range []string{"cubic-bezier(1,1,0,0)", "cubic-bezier(0,1,1,0)", "cubic-bezier(0.9,0.1,0.1,0.9)"} {
		fn, err := Parse(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		prev := fn(0)
		for i := 1; i <= 1000; i++ {
			v := fn(float64(i) / 1000)
			if v < prev-1e-6 {
				t.Errorf("%s decreases at t=%v: %v < %v", in, float64(i)/1000, v, prev)
				break
			}
			prev = v
		}
	}
}
