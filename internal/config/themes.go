package config

import "sort"

var Themes = map[string]func() *Table{
	"default": Default,
	"snappy": func() *Table {
		t := Default()
		t.Durations = DurationTable{FastMs: 100, NormalMs: 180, SlowMs: 280, RotationMs: 800}
		t.Curves.Gentle = "cubic-bezier(0.2,0,0,1)"
		t.Springs = SpringTable{
			Gentle:     SpringConfig{Tension: 220, Friction: 22},
			Soft:       SpringConfig{Tension: 160, Friction: 18},
			Responsive: SpringConfig{Tension: 600, Friction: 36},
			Bouncy:     SpringConfig{Tension: 320, Friction: 14},
		}
		t.Stagger.IntervalMs = 30
		return t
	},
	"calm": func() *Table {
		t := Default()
		t.Durations = DurationTable{FastMs: 220, NormalMs: 360, SlowMs: 600, RotationMs: 1600}
		t.Springs = SpringTable{
			Gentle:     SpringConfig{Tension: 90, Friction: 15},
			Soft:       SpringConfig{Tension: 60, Friction: 12},
			Responsive: SpringConfig{Tension: 260, Friction: 26},
			Bouncy:     SpringConfig{Tension: 140, Friction: 10},
		}
		t.Scales.Pop = 1.05
		t.Stagger.IntervalMs = 80
		return t
	},
}

func GetTheme(name string) *Table {
	build, ok := Themes[name]
	if !ok {
		return nil
	}
	return build()
}

func ListThemes() []string {
	names := make([]string, 0, len(Themes))
	for name := range Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
