package scene

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/kinetic/internal/anim"
	"github.com/san-kum/kinetic/internal/preset"
)

func newRunner(t *testing.T) *Runner {
	t.Helper()
	lib, err := preset.New(nil)
	if err != nil {
		t.Fatalf("preset library: %v", err)
	}
	return NewRunner(lib, anim.DefaultConfig(), nil)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	names := r.List()
	if len(names) != 9 {
		t.Fatalf("expected 9 scenes, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("scenes not sorted: %v", names)
		}
	}

	if _, err := r.Get("entrance"); err != nil {
		t.Errorf("entrance: %v", err)
	}
	if _, err := r.Get("nonexistent"); err == nil {
		t.Error("expected error for unknown scene")
	}
}

func TestRunEntrance(t *testing.T) {
	s, _ := NewRegistry().Get("entrance")
	res, err := newRunner(t).Run(context.Background(), s, DefaultConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !res.Settled {
		t.Fatal("entrance did not settle")
	}
	if len(res.Samples) != len(res.Times) {
		t.Errorf("%d sample rows for %d times", len(res.Samples), len(res.Times))
	}
	if res.Times[0] != 0 || res.Samples[0][0] != 0 || res.Samples[0][1] != 0.9 {
		t.Errorf("first row should hold initial values, got %v at %v", res.Samples[0], res.Times[0])
	}

	final := res.Final()
	if final["opacity"] != 1 || final["scale"] != 1 || final["translate"] != 0 {
		t.Errorf("unexpected final values %v", final)
	}
	if res.Metrics["opacity"]["settle_ms"] < 0 {
		t.Error("opacity never settled according to metrics")
	}
	if got := res.Series("translate"); len(got) != len(res.Times) || got[0] != 20 {
		t.Errorf("translate series malformed: len %d", len(got))
	}
	if res.Series("missing") != nil {
		t.Error("expected nil series for unknown cell")
	}
}

func TestRunPressTwiceCancelsFirst(t *testing.T) {
	s, _ := NewRegistry().Get("press-twice")
	res, err := newRunner(t).Run(context.Background(), s, DefaultConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	cancels := 0
	for _, ev := range res.Events {
		if ev.Kind == anim.EventCancel && ev.Op == "spring" {
			cancels++
			if ev.At != 80*time.Millisecond {
				t.Errorf("first press cancelled at %v, want 80ms", ev.At)
			}
		}
	}
	if cancels != 1 {
		t.Errorf("expected 1 cancelled spring, got %d", cancels)
	}
	if res.Final()["scale"] != 1 {
		t.Errorf("final scale %v", res.Final()["scale"])
	}
}

func TestRunInfiniteStopsAtLimit(t *testing.T) {
	s, _ := NewRegistry().Get("loading")
	cfg := DefaultConfig()
	cfg.Limit = 2 * time.Second

	res, err := newRunner(t).Run(context.Background(), s, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Settled {
		t.Error("infinite scene reported settled")
	}
	if res.Duration < cfg.Limit || res.Duration > cfg.Limit+cfg.Step {
		t.Errorf("expected to stop at %v, stopped at %v", cfg.Limit, res.Duration)
	}
}

func TestRunValidatesConfig(t *testing.T) {
	s, _ := NewRegistry().Get("press")
	runner := newRunner(t)

	for _, cfg := range []Config{
		{Step: 0, Limit: time.Second},
		{Step: time.Millisecond, Limit: 0},
		{Step: time.Millisecond, Limit: time.Second, Tolerance: -1},
	} {
		if _, err := runner.Run(context.Background(), s, cfg); err == nil {
			t.Errorf("expected error for %+v", cfg)
		}
	}
}

func TestRunHonoursContext(t *testing.T) {
	s, _ := NewRegistry().Get("loading")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newRunner(t).Run(ctx, s, DefaultConfig()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunReportsStepErrors(t *testing.T) {
	s := &Scene{
		Name:  "broken",
		Cells: []CellSpec{{Name: "x"}},
		Steps: []Step{{
			Cell: "x",
			Build: func(*preset.Library, Cells) anim.Operation {
				return anim.Timing{To: 1, Duration: -time.Second}
			},
		}},
	}
	_, err := newRunner(t).Run(context.Background(), s, DefaultConfig())
	if !errors.Is(err, anim.ErrInvalidOperation) {
		t.Errorf("expected ErrInvalidOperation, got %v", err)
	}
}

func TestRunAllReachesTargets(t *testing.T) {
	reg := NewRegistry()
	scenes := reg.All()

	results, err := newRunner(t).RunAll(context.Background(), scenes, DefaultConfig())
	if err != nil {
		t.Fatalf("run all failed: %v", err)
	}
	if len(results) != len(scenes) {
		t.Fatalf("expected %d results, got %d", len(scenes), len(results))
	}

	for i, res := range results {
		s := scenes[i]
		if res.Scene != s.Name {
			t.Errorf("result %d is %s, want %s", i, res.Scene, s.Name)
		}
		if s.Infinite {
			continue
		}
		if !res.Settled {
			t.Errorf("%s did not settle", s.Name)
			continue
		}
		final := res.Final()
		for _, spec := range s.Cells {
			if math.Abs(final[spec.Name]-spec.Target) > 1e-9 {
				t.Errorf("%s.%s = %v, want %v", s.Name, spec.Name, final[spec.Name], spec.Target)
			}
		}
	}
}

func TestInstanceRestart(t *testing.T) {
	lib, _ := preset.New(nil)
	s, _ := NewRegistry().Get("entrance")
	e := anim.New()
	in := NewInstance(s, lib, e)

	for i := 0; i < 5; i++ {
		if err := in.Advance(16 * time.Millisecond); err != nil {
			t.Fatal(err)
		}
	}
	if in.Cell("opacity").Value() == 0 {
		t.Fatal("entrance did not start")
	}
	old := in.Cell("opacity")

	in.Restart()
	if !old.Disposed() {
		t.Error("restart should dispose the previous cells")
	}
	if in.Cell("opacity").Value() != 0 || !in.Pending() || in.Elapsed() != 0 {
		t.Error("restart should replay from the initial values")
	}
	if !e.Idle() {
		t.Error("restart should cancel in-flight operations")
	}
}
