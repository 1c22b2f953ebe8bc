package metrics

import (
	"math"
	"testing"
	"time"
)

func observe(m Metric, values ...float64) {
	for i, v := range values {
		m.Observe(v, time.Duration(i)*10*time.Millisecond)
	}
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"never settles", []float64{0, 0.5, 0.8}, -1},
		{"settles once", []float64{0, 0.5, 0.99, 1}, 20},
		{"leaves and returns", []float64{0, 1, 1.2, 1, 1}, 30},
		{"starts settled", []float64{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSettle(1, 0.05)
			observe(m, tt.values...)
			if got := m.Value(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestOvershoot(t *testing.T) {
	tests := []struct {
		name   string
		target float64
		values []float64
		want   float64
	}{
		{"rising with overshoot", 1, []float64{0, 0.8, 1.1, 0.98, 1}, 0.1},
		{"falling with overshoot", 0, []float64{2, 1, -0.5, 0}, 0.25},
		{"no overshoot", 1, []float64{0, 0.5, 1}, 0},
		{"starts on target", 1, []float64{1, 0.95, 1.02, 1}, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewOvershoot(tt.target)
			observe(m, tt.values...)
			if got := m.Value(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTravelAndFrames(t *testing.T) {
	travel, frames := NewTravel(), NewFrames()
	for _, m := range []Metric{travel, frames} {
		observe(m, 0, 1, 1, 0.5, 0.5, 1)
	}

	if math.Abs(travel.Value()-2) > 1e-9 {
		t.Errorf("expected travel 2, got %v", travel.Value())
	}
	if frames.Value() != 3 {
		t.Errorf("expected 3 changed frames, got %v", frames.Value())
	}
}

func TestReset(t *testing.T) {
	for _, m := range Standard(1, 0.01) {
		observe(m, 0, 1.3, 1)
		m.Reset()
		observe(m, 1, 1)

		switch m.Name() {
		case "settle_ms", "overshoot", "travel", "frames":
		default:
			t.Fatalf("unexpected metric %s", m.Name())
		}
		if m.Name() != "settle_ms" && m.Value() != 0 {
			t.Errorf("%s: expected 0 after reset, got %v", m.Name(), m.Value())
		}
	}
}
