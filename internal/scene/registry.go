package scene

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/kinetic/internal/anim"
	"github.com/san-kum/kinetic/internal/preset"
)

const revealItems = 5

type Registry struct {
	scenes map[string]func() *Scene
}

func NewRegistry() *Registry {
	r := &Registry{scenes: make(map[string]func() *Scene)}

	r.Register("entrance", entrance)
	r.Register("exit", exit)
	r.Register("press", func() *Scene { return press("press", 0) })
	r.Register("press-twice", func() *Scene { return press("press-twice", 80*time.Millisecond) })
	r.Register("pulse", pulse)
	r.Register("loading", loading)
	r.Register("reveal", reveal)
	r.Register("progress", progress)
	r.Register("success", success)

	return r
}

func (r *Registry) Register(name string, build func() *Scene) {
	r.scenes[name] = build
}

func (r *Registry) Get(name string) (*Scene, error) {
	fn, ok := r.scenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	return fn(), nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All builds every registered scene in name order.
func (r *Registry) All() []*Scene {
	names := r.List()
	scenes := make([]*Scene, len(names))
	for i, name := range names {
		scenes[i] = r.scenes[name]()
	}
	return scenes
}

func entrance() *Scene {
	return &Scene{
		Name:        "entrance",
		Description: "fade in while scale and offset spring home",
		Cells: []CellSpec{
			{Name: "opacity", Initial: 0, Target: 1},
			{Name: "scale", Initial: 0.9, Target: 1},
			{Name: "translate", Initial: 20, Target: 0},
		},
		Steps: []Step{{
			Build: func(lib *preset.Library, c Cells) anim.Operation {
				return lib.Entrance(c["opacity"], c["scale"], c["translate"])
			},
		}},
	}
}

func exit() *Scene {
	return &Scene{
		Name:        "exit",
		Description: "fade out, shrink and slide away",
		Cells: []CellSpec{
			{Name: "opacity", Initial: 1, Target: 0},
			{Name: "scale", Initial: 1, Target: 0.9},
			{Name: "translate", Initial: 0, Target: 24},
		},
		Steps: []Step{{
			Build: func(lib *preset.Library, c Cells) anim.Operation {
				return lib.Exit(c["opacity"], c["scale"], c["translate"], 24)
			},
		}},
	}
}

// press replays press feedback; a positive again re-presses mid-flight.
func press(name string, again time.Duration) *Scene {
	build := func(lib *preset.Library, c Cells) anim.Operation { return lib.PressFeedback(nil) }
	steps := []Step{{Cell: "scale", Build: build}}
	desc := "squeeze and bounce back"
	if again > 0 {
		steps = append(steps, Step{At: again, Cell: "scale", Build: build})
		desc = "a second press supersedes the first mid-flight"
	}
	return &Scene{
		Name:        name,
		Description: desc,
		Cells:       []CellSpec{{Name: "scale", Initial: 1, Target: 1}},
		Steps:       steps,
	}
}

func pulse() *Scene {
	return &Scene{
		Name:        "pulse",
		Description: "three pops",
		Cells:       []CellSpec{{Name: "scale", Initial: 1, Target: 1}},
		Steps: []Step{{
			Cell:  "scale",
			Build: func(lib *preset.Library, c Cells) anim.Operation { return lib.Pulse(nil, 3) },
		}},
	}
}

func loading() *Scene {
	return &Scene{
		Name:        "loading",
		Description: "indeterminate rotation, runs until the limit",
		Cells:       []CellSpec{{Name: "rotation", Initial: 0, Target: 0}},
		Steps: []Step{{
			Cell:  "rotation",
			Build: func(lib *preset.Library, c Cells) anim.Operation { return lib.LoadingRotation(nil) },
		}},
		Infinite: true,
	}
}

func reveal() *Scene {
	cells := make([]CellSpec, 0, 2*revealItems)
	for i := 0; i < revealItems; i++ {
		n := strconv.Itoa(i)
		cells = append(cells,
			CellSpec{Name: "opacity" + n, Initial: 0, Target: 1},
			CellSpec{Name: "translate" + n, Initial: 20, Target: 0},
		)
	}
	return &Scene{
		Name:        "reveal",
		Description: "staggered list entrance",
		Cells:       cells,
		Steps: []Step{{
			Build: func(lib *preset.Library, c Cells) anim.Operation {
				items := make([]preset.RevealItem, revealItems)
				for i := range items {
					n := strconv.Itoa(i)
					items[i] = preset.RevealItem{Opacity: c["opacity"+n], Translate: c["translate"+n]}
				}
				return lib.StaggeredReveal(items, 0)
			},
		}},
	}
}

func progress() *Scene {
	to := func(f float64) func(*preset.Library, Cells) anim.Operation {
		return func(lib *preset.Library, c Cells) anim.Operation { return lib.Progress(nil, f) }
	}
	return &Scene{
		Name:        "progress",
		Description: "progress bar retargeted while moving",
		Cells:       []CellSpec{{Name: "progress", Initial: 0, Target: 1}},
		Steps: []Step{
			{Cell: "progress", Build: to(0.3)},
			{At: 300 * time.Millisecond, Cell: "progress", Build: to(0.75)},
			{At: 700 * time.Millisecond, Cell: "progress", Build: to(1)},
		},
	}
}

func success() *Scene {
	return &Scene{
		Name:        "success",
		Description: "badge pops in, then the check draws",
		Cells: []CellSpec{
			{Name: "scale", Initial: 0, Target: 1},
			{Name: "check", Initial: 0, Target: 1},
		},
		Steps: []Step{{
			Build: func(lib *preset.Library, c Cells) anim.Operation {
				return lib.Success(c["scale"], c["check"])
			},
		}},
	}
}
