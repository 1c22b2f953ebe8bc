// Package automation loads scripted scenes from YAML so new motion can be
// tried without recompiling.
package automation

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"time"

	"github.com/san-kum/kinetic/internal/anim"
	"github.com/san-kum/kinetic/internal/easing"
	"github.com/san-kum/kinetic/internal/preset"
	"github.com/san-kum/kinetic/internal/scene"
	"github.com/san-kum/kinetic/internal/spring"
	"gopkg.in/yaml.v3"
)

// Script is a scene described in YAML:
//
//	name: card
//	cells:
//	  - {name: opacity, initial: 0, target: 1}
//	  - {name: scale, initial: 0.9, target: 1}
//	  - {name: translate, initial: 20, target: 0}
//	steps:
//	  - {preset: entrance, cells: [opacity, scale, translate]}
//	  - {at_ms: 2500, preset: pulse, cells: [scale], count: 2}
type Script struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Cells       []ScriptCell `yaml:"cells"`
	Steps       []ScriptStep `yaml:"steps"`
}

type ScriptCell struct {
	Name    string  `yaml:"name"`
	Initial float64 `yaml:"initial"`
	Target  float64 `yaml:"target"`
}

// ScriptStep starts one preset. Which of the optional fields apply depends on
// the preset; see Presets.
type ScriptStep struct {
	AtMs       int      `yaml:"at_ms"`
	Preset     string   `yaml:"preset"`
	Cells      []string `yaml:"cells"`
	Count      int      `yaml:"count,omitempty"`
	Fraction   float64  `yaml:"fraction,omitempty"`
	Offset     float64  `yaml:"offset,omitempty"`
	IntervalMs int      `yaml:"interval_ms,omitempty"`
	To         float64  `yaml:"to,omitempty"`
	DurationMs int      `yaml:"duration_ms,omitempty"`
	Curve      string   `yaml:"curve,omitempty"`
	Tension    float64  `yaml:"tension,omitempty"`
	Friction   float64  `yaml:"friction,omitempty"`
}

type builder struct {
	// cells is the required cell count, or -1 for a positive even count.
	// Up to optional more trailing cells are accepted.
	cells    int
	optional int
	build    func(st ScriptStep) (scene.Step, error)
}

// optionalCell names the i-th cell of st, or "" when it was left out.
func optionalCell(st ScriptStep, i int) string {
	if i < len(st.Cells) {
		return st.Cells[i]
	}
	return ""
}

var presets = map[string]builder{
	"entrance": {2, 1, func(st ScriptStep) (scene.Step, error) {
		o, s, tr := st.Cells[0], st.Cells[1], optionalCell(st, 2)
		return scene.Step{Build: func(lib *preset.Library, c scene.Cells) anim.Operation {
			return lib.Entrance(c[o], c[s], c[tr])
		}}, nil
	}},
	"exit": {2, 1, func(st ScriptStep) (scene.Step, error) {
		o, s, tr := st.Cells[0], st.Cells[1], optionalCell(st, 2)
		return scene.Step{Build: func(lib *preset.Library, c scene.Cells) anim.Operation {
			return lib.Exit(c[o], c[s], c[tr], st.Offset)
		}}, nil
	}},
	"press": {1, 0, func(st ScriptStep) (scene.Step, error) {
		return bound(st, func(lib *preset.Library) anim.Operation { return lib.PressFeedback(nil) }), nil
	}},
	"pulse": {1, 0, func(st ScriptStep) (scene.Step, error) {
		if st.Count < 1 {
			return scene.Step{}, fmt.Errorf("count must be at least 1, got %d", st.Count)
		}
		return bound(st, func(lib *preset.Library) anim.Operation { return lib.Pulse(nil, st.Count) }), nil
	}},
	"loading": {1, 0, func(st ScriptStep) (scene.Step, error) {
		return bound(st, func(lib *preset.Library) anim.Operation { return lib.LoadingRotation(nil) }), nil
	}},
	"progress": {1, 0, func(st ScriptStep) (scene.Step, error) {
		return bound(st, func(lib *preset.Library) anim.Operation { return lib.Progress(nil, st.Fraction) }), nil
	}},
	"success": {2, 0, func(st ScriptStep) (scene.Step, error) {
		s, ch := st.Cells[0], st.Cells[1]
		return scene.Step{Build: func(lib *preset.Library, c scene.Cells) anim.Operation {
			return lib.Success(c[s], c[ch])
		}}, nil
	}},
	"reveal": {-1, 0, func(st ScriptStep) (scene.Step, error) {
		if st.IntervalMs < 0 {
			return scene.Step{}, fmt.Errorf("interval_ms must not be negative, got %d", st.IntervalMs)
		}
		names := st.Cells
		interval := time.Duration(st.IntervalMs) * time.Millisecond
		return scene.Step{Build: func(lib *preset.Library, c scene.Cells) anim.Operation {
			items := make([]preset.RevealItem, 0, len(names)/2)
			for i := 0; i+1 < len(names); i += 2 {
				items = append(items, preset.RevealItem{Opacity: c[names[i]], Translate: c[names[i+1]]})
			}
			return lib.StaggeredReveal(items, interval)
		}}, nil
	}},
	"timing": {1, 0, func(st ScriptStep) (scene.Step, error) {
		if st.DurationMs < 0 {
			return scene.Step{}, fmt.Errorf("duration_ms must not be negative, got %d", st.DurationMs)
		}
		var curve easing.Func = easing.Linear
		if st.Curve != "" {
			var err error
			if curve, err = easing.Parse(st.Curve); err != nil {
				return scene.Step{}, err
			}
		}
		op := anim.Timing{To: st.To, Duration: time.Duration(st.DurationMs) * time.Millisecond, Curve: curve}
		return bound(st, func(*preset.Library) anim.Operation { return op }), nil
	}},
	"spring": {1, 0, func(st ScriptStep) (scene.Step, error) {
		if err := (spring.Params{Tension: st.Tension, Friction: st.Friction}).Validate(); err != nil {
			return scene.Step{}, err
		}
		op := anim.Spring{To: st.To, Tension: st.Tension, Friction: st.Friction}
		return bound(st, func(*preset.Library) anim.Operation { return op }), nil
	}},
}

// bound starts a single-cell operation on the step's only cell.
func bound(st ScriptStep, build func(*preset.Library) anim.Operation) scene.Step {
	return scene.Step{
		Cell:  st.Cells[0],
		Build: func(lib *preset.Library, _ scene.Cells) anim.Operation { return build(lib) },
	}
}

// Presets lists the preset names a script step may use.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	return &s, nil
}

// Scene compiles the script, reporting every bad step at once. Scripts that
// start a loading rotation are marked infinite.
func (s *Script) Scene() (*scene.Scene, error) {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name: must not be empty"))
	}
	if len(s.Cells) == 0 {
		errs = append(errs, errors.New("cells: at least one cell is required"))
	}

	out := &scene.Scene{Name: s.Name, Description: s.Description}
	declared := make(map[string]bool, len(s.Cells))
	for i, c := range s.Cells {
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("cells[%d]: name must not be empty", i))
			continue
		}
		if declared[c.Name] {
			errs = append(errs, fmt.Errorf("cells[%d]: duplicate cell %q", i, c.Name))
			continue
		}
		declared[c.Name] = true
		out.Cells = append(out.Cells, scene.CellSpec{Name: c.Name, Initial: c.Initial, Target: c.Target})
	}

	for i, st := range s.Steps {
		step, err := compileStep(st, declared)
		if err != nil {
			errs = append(errs, fmt.Errorf("steps[%d] (%s): %w", i, st.Preset, err))
			continue
		}
		out.Steps = append(out.Steps, step)
		if st.Preset == "loading" {
			out.Infinite = true
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	// steps start in time order
	slices.SortStableFunc(out.Steps, func(a, b scene.Step) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		}
		return 0
	})
	return out, nil
}

func compileStep(st ScriptStep, declared map[string]bool) (scene.Step, error) {
	b, ok := presets[st.Preset]
	if !ok {
		return scene.Step{}, fmt.Errorf("unknown preset (available: %v)", Presets())
	}
	if st.AtMs < 0 {
		return scene.Step{}, fmt.Errorf("at_ms must not be negative, got %d", st.AtMs)
	}

	switch {
	case b.cells < 0 && (len(st.Cells) == 0 || len(st.Cells)%2 != 0):
		return scene.Step{}, fmt.Errorf("needs opacity/translate cell pairs, got %d cells", len(st.Cells))
	case b.cells >= 0 && b.optional == 0 && len(st.Cells) != b.cells:
		return scene.Step{}, fmt.Errorf("needs %d cells, got %d", b.cells, len(st.Cells))
	case b.cells >= 0 && (len(st.Cells) < b.cells || len(st.Cells) > b.cells+b.optional):
		return scene.Step{}, fmt.Errorf("needs %d to %d cells, got %d", b.cells, b.cells+b.optional, len(st.Cells))
	}
	for _, name := range st.Cells {
		if !declared[name] {
			return scene.Step{}, fmt.Errorf("unknown cell %q", name)
		}
	}

	step, err := b.build(st)
	if err != nil {
		return scene.Step{}, err
	}
	step.At = time.Duration(st.AtMs) * time.Millisecond
	return step, nil
}
