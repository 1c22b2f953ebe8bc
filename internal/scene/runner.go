package scene

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/kinetic/internal/anim"
	"github.com/san-kum/kinetic/internal/metrics"
	"github.com/san-kum/kinetic/internal/preset"
)

type Config struct {
	Step      time.Duration
	Limit     time.Duration
	Tolerance float64
}

func DefaultConfig() Config {
	return Config{
		Step:      16 * time.Millisecond,
		Limit:     15 * time.Second,
		Tolerance: 0.01,
	}
}

// Result is the recording of one run. Samples[i][j] is cell j after
// Times[i]; row 0 holds the initial values.
type Result struct {
	Scene    string
	Cells    []string
	Times    []time.Duration
	Samples  [][]float64
	Events   []anim.Event
	Metrics  map[string]map[string]float64
	Settled  bool
	Duration time.Duration
}

// Series returns the samples of one cell, or nil if the cell is unknown.
func (r *Result) Series(cell string) []float64 {
	for j, name := range r.Cells {
		if name != cell {
			continue
		}
		out := make([]float64, len(r.Samples))
		for i, row := range r.Samples {
			out[i] = row[j]
		}
		return out
	}
	return nil
}

// Final returns the last recorded value of every cell.
func (r *Result) Final() map[string]float64 {
	out := make(map[string]float64, len(r.Cells))
	if len(r.Samples) == 0 {
		return out
	}
	last := r.Samples[len(r.Samples)-1]
	for j, name := range r.Cells {
		out[name] = last[j]
	}
	return out
}

type Runner struct {
	lib       *preset.Library
	engine    anim.Config
	logger    *log.Logger
	observers []anim.Observer
}

func NewRunner(lib *preset.Library, engine anim.Config, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{lib: lib, engine: engine, logger: logger}
}

func (r *Runner) AddObserver(o anim.Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Run(ctx context.Context, s *Scene, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	e := anim.New(anim.WithConfig(r.engine), anim.WithLogger(r.logger))
	in := NewInstance(s, r.lib, e)

	result := &Result{
		Scene:   s.Name,
		Cells:   s.CellNames(),
		Metrics: make(map[string]map[string]float64),
	}

	perCell := make([][]metrics.Metric, len(s.Cells))
	for j, spec := range s.Cells {
		perCell[j] = metrics.Standard(spec.Target, cfg.Tolerance)
	}

	record := func(now time.Duration) {
		row := make([]float64, len(in.Cells()))
		for j, c := range in.Cells() {
			row[j] = c.Value()
			for _, m := range perCell[j] {
				m.Observe(row[j], now)
			}
		}
		result.Times = append(result.Times, now)
		result.Samples = append(result.Samples, row)
	}

	e.AddTracer(anim.TracerFunc(func(ev anim.Event) { result.Events = append(result.Events, ev) }))
	e.AddObserver(anim.ObserverFunc(record))
	for _, o := range r.observers {
		e.AddObserver(o)
	}

	record(0)
	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if in.Done() {
			result.Settled = true
			break
		}
		if e.Now() >= cfg.Limit {
			break
		}
		if err := in.Advance(cfg.Step); err != nil {
			return nil, err
		}
	}
	result.Duration = e.Now()

	for j, name := range result.Cells {
		result.Metrics[name] = make(map[string]float64)
		for _, m := range perCell[j] {
			result.Metrics[name][m.Name()] = m.Value()
		}
	}

	if !result.Settled && !s.Infinite {
		r.logger.Warn("scene did not settle", "scene", s.Name, "limit", cfg.Limit)
	}
	r.logger.Debug("scene finished", "scene", s.Name, "duration", result.Duration, "frames", len(result.Times))
	return result, nil
}

// RunAll plays independent scenes concurrently, one engine per goroutine.
// Results keep the order of scenes. Observers added to the runner are
// shared by every goroutine.
func (r *Runner) RunAll(ctx context.Context, scenes []*Scene, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(scenes))
	errs := make([]error, len(scenes))

	var wg sync.WaitGroup
	for i, s := range scenes {
		wg.Add(1)
		go func(idx int, s *Scene) {
			defer wg.Done()
			results[idx], errs[idx] = r.Run(ctx, s, cfg)
		}(i, s)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

func validateConfig(cfg Config) error {
	if cfg.Step <= 0 {
		return fmt.Errorf("step must be positive, got %v", cfg.Step)
	}
	if cfg.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %v", cfg.Limit)
	}
	if cfg.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %v", cfg.Tolerance)
	}
	return nil
}
