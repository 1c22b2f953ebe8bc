package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"time"

	"github.com/san-kum/kinetic/internal/anim"
	"github.com/san-kum/kinetic/internal/easing"
	"github.com/san-kum/kinetic/internal/spring"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFrameMs    = 16
	DefaultFastMs     = 150
	DefaultNormalMs   = 250
	DefaultSlowMs     = 400
	DefaultRotationMs = 1000
	DefaultIntervalMs = 50
	DefaultOffset     = 20.0
	DefaultMaxSpring  = 10000
)

// Table is the process-wide animation constants table. It is read-only once
// handed to a preset library; callers that need a variant take a Clone.
type Table struct {
	FrameMs   int           `yaml:"frame_ms"`
	Durations DurationTable `yaml:"durations"`
	Curves    CurveTable    `yaml:"curves"`
	Springs   SpringTable   `yaml:"springs"`
	Scales    ScaleTable    `yaml:"scales"`
	Stagger   StaggerConfig `yaml:"stagger"`
	Engine    EngineConfig  `yaml:"engine"`
}

type DurationTable struct {
	FastMs     int `yaml:"fast_ms"`
	NormalMs   int `yaml:"normal_ms"`
	SlowMs     int `yaml:"slow_ms"`
	RotationMs int `yaml:"rotation_ms"`
}

// CurveTable holds easing names or cubic-bezier(...) expressions.
type CurveTable struct {
	Standard string `yaml:"standard"`
	Gentle   string `yaml:"gentle"`
	Sharp    string `yaml:"sharp"`
}

type SpringConfig struct {
	Tension  float64 `yaml:"tension"`
	Friction float64 `yaml:"friction"`
}

type SpringTable struct {
	Gentle     SpringConfig `yaml:"gentle"`
	Soft       SpringConfig `yaml:"soft"`
	Responsive SpringConfig `yaml:"responsive"`
	Bouncy     SpringConfig `yaml:"bouncy"`
}

type ScaleTable struct {
	Tap       float64 `yaml:"tap"`
	Pop       float64 `yaml:"pop"`
	Exit      float64 `yaml:"exit"`
	EnterFrom float64 `yaml:"enter_from"`
}

type StaggerConfig struct {
	IntervalMs int     `yaml:"interval_ms"`
	Offset     float64 `yaml:"offset"`
}

type EngineConfig struct {
	Solver           string  `yaml:"solver"`
	RestDisplacement float64 `yaml:"rest_displacement"`
	RestSpeed        float64 `yaml:"rest_speed"`
	MaxSpringMs      int     `yaml:"max_spring_ms"`
	MaxSubstepMs     int     `yaml:"max_substep_ms"`
}

func Default() *Table {
	return &Table{
		FrameMs: DefaultFrameMs,
		Durations: DurationTable{
			FastMs:     DefaultFastMs,
			NormalMs:   DefaultNormalMs,
			SlowMs:     DefaultSlowMs,
			RotationMs: DefaultRotationMs,
		},
		Curves: CurveTable{
			Standard: "cubic-bezier(0.4,0,0.2,1)",
			Gentle:   "cubic-bezier(0,0,0.2,1)",
			Sharp:    "cubic-bezier(0.4,0,0.6,1)",
		},
		Springs: SpringTable{
			Gentle:     SpringConfig{Tension: 120, Friction: 14},
			Soft:       SpringConfig{Tension: 80, Friction: 12},
			Responsive: SpringConfig{Tension: 400, Friction: 28},
			Bouncy:     SpringConfig{Tension: 180, Friction: 8},
		},
		Scales: ScaleTable{
			Tap:       0.95,
			Pop:       1.1,
			Exit:      0.9,
			EnterFrom: 0.9,
		},
		Stagger: StaggerConfig{
			IntervalMs: DefaultIntervalMs,
			Offset:     DefaultOffset,
		},
		Engine: EngineConfig{
			Solver:           spring.KindAnalytic,
			RestDisplacement: spring.DefaultRestDisplacement,
			RestSpeed:        spring.DefaultRestSpeed,
			MaxSpringMs:      DefaultMaxSpring,
			MaxSubstepMs:     int(spring.DefaultMaxSubstep / time.Millisecond),
		},
	}
}

// Load reads a yaml table. Keys missing from the file keep their defaults.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Table, error) {
	t := Default()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func Save(path string, t *Table) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns an independent copy; every field is a value.
func (t *Table) Clone() *Table {
	c := *t
	return &c
}

// Validate reports every invalid field at once.
func (t *Table) Validate() error {
	var errs []error
	positive := func(field string, ms int) {
		if ms <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %d", field, ms))
		}
	}
	nonNegative := func(field string, ms int) {
		if ms < 0 {
			errs = append(errs, fmt.Errorf("%s: must not be negative, got %d", field, ms))
		}
	}

	positive("frame_ms", t.FrameMs)
	nonNegative("durations.fast_ms", t.Durations.FastMs)
	nonNegative("durations.normal_ms", t.Durations.NormalMs)
	nonNegative("durations.slow_ms", t.Durations.SlowMs)
	positive("durations.rotation_ms", t.Durations.RotationMs)

	for field, curve := range map[string]string{
		"curves.standard": t.Curves.Standard,
		"curves.gentle":   t.Curves.Gentle,
		"curves.sharp":    t.Curves.Sharp,
	} {
		if _, err := easing.Parse(curve); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	for field, s := range map[string]SpringConfig{
		"springs.gentle":     t.Springs.Gentle,
		"springs.soft":       t.Springs.Soft,
		"springs.responsive": t.Springs.Responsive,
		"springs.bouncy":     t.Springs.Bouncy,
	} {
		if err := s.Params().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	for field, v := range map[string]float64{
		"scales.tap":        t.Scales.Tap,
		"scales.pop":        t.Scales.Pop,
		"scales.exit":       t.Scales.Exit,
		"scales.enter_from": t.Scales.EnterFrom,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			errs = append(errs, fmt.Errorf("%s: must be a finite non-negative scale, got %v", field, v))
		}
	}

	nonNegative("stagger.interval_ms", t.Stagger.IntervalMs)
	if math.IsNaN(t.Stagger.Offset) || math.IsInf(t.Stagger.Offset, 0) {
		errs = append(errs, fmt.Errorf("stagger.offset: must be finite"))
	}

	if !slices.Contains(spring.Kinds(), t.Engine.Solver) {
		errs = append(errs, fmt.Errorf("engine.solver: unknown solver %q (want one of %v)", t.Engine.Solver, spring.Kinds()))
	}
	if !(t.Engine.RestDisplacement > 0) {
		errs = append(errs, fmt.Errorf("engine.rest_displacement: must be positive"))
	}
	if !(t.Engine.RestSpeed > 0) {
		errs = append(errs, fmt.Errorf("engine.rest_speed: must be positive"))
	}
	positive("engine.max_spring_ms", t.Engine.MaxSpringMs)
	positive("engine.max_substep_ms", t.Engine.MaxSubstepMs)

	return errors.Join(errs...)
}

func (t *Table) Frame() time.Duration { return ms(t.FrameMs) }

// Anim converts the engine section into engine options.
func (t *Table) Anim() anim.Config {
	return anim.Config{
		Solver:            t.Engine.Solver,
		RestDisplacement:  t.Engine.RestDisplacement,
		RestSpeed:         t.Engine.RestSpeed,
		MaxSpringDuration: ms(t.Engine.MaxSpringMs),
		MaxSubstep:        ms(t.Engine.MaxSubstepMs),
	}
}

func (d DurationTable) Fast() time.Duration     { return ms(d.FastMs) }
func (d DurationTable) Normal() time.Duration   { return ms(d.NormalMs) }
func (d DurationTable) Slow() time.Duration     { return ms(d.SlowMs) }
func (d DurationTable) Rotation() time.Duration { return ms(d.RotationMs) }

func (s StaggerConfig) Interval() time.Duration { return ms(s.IntervalMs) }

func (s SpringConfig) Params() spring.Params {
	return spring.Params{Tension: s.Tension, Friction: s.Friction}
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
