package preset_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kinetic/internal/anim"
	"github.com/san-kum/kinetic/internal/config"
	"github.com/san-kum/kinetic/internal/preset"
)

const frame = 16 * time.Millisecond

type trace struct {
	events []anim.Event
}

func (tr *trace) OnEvent(ev anim.Event) { tr.events = append(tr.events, ev) }

func (tr *trace) count(kind anim.EventKind, op string) int {
	n := 0
	for _, ev := range tr.events {
		if ev.Kind == kind && ev.Op == op {
			n++
		}
	}
	return n
}

func settle(e *anim.Engine, step time.Duration) {
	GinkgoHelper()
	idle, err := e.Settle(context.Background(), step, 30*time.Second)
	Expect(err).NotTo(HaveOccurred())
	Expect(idle).To(BeTrue(), "engine did not settle")
}

// sample runs op on a fresh engine and records c after every frame.
func sample(build func(*preset.Library, *anim.Cell) anim.Operation, initial float64, frames int) []float64 {
	GinkgoHelper()
	lib, err := preset.New(nil)
	Expect(err).NotTo(HaveOccurred())

	e := anim.New()
	c := e.NewScope().NewCell(initial)
	_, err = c.Start(build(lib, c), nil)
	Expect(err).NotTo(HaveOccurred())

	out := make([]float64, frames)
	for i := range out {
		e.Tick(frame)
		out[i] = c.Value()
	}
	return out
}

var _ = Describe("Library", func() {
	var (
		lib    *preset.Library
		engine *anim.Engine
		scope  *anim.Scope
		tr     *trace
	)

	BeforeEach(func() {
		var err error
		lib, err = preset.New(config.Default())
		Expect(err).NotTo(HaveOccurred())

		engine = anim.New()
		tr = &trace{}
		engine.AddTracer(tr)
		scope = engine.NewScope()
	})

	It("rejects an invalid table", func() {
		bad := config.Default()
		bad.Curves.Standard = "cubic-bezier(2,0,0,1)"
		_, err := preset.New(bad)
		Expect(err).To(HaveOccurred())
	})

	It("keeps its own copy of the table", func() {
		tbl := config.Default()
		lib, err := preset.New(tbl)
		Expect(err).NotTo(HaveOccurred())

		tbl.Scales.Tap = 0.5
		Expect(lib.Table().Scales.Tap).To(Equal(0.95))
	})

	Describe("Entrance", func() {
		DescribeTable("settles to full opacity and scale regardless of frame sampling",
			func(step time.Duration) {
				opacity, scale := scope.NewCell(0), scope.NewCell(0.9)
				done := false
				_, err := engine.Start(lib.Entrance(opacity, scale, nil), func() { done = true })
				Expect(err).NotTo(HaveOccurred())

				settle(engine, step)
				Expect(done).To(BeTrue())
				Expect(opacity.Value()).To(Equal(1.0))
				Expect(scale.Value()).To(Equal(1.0))
			},
			Entry("1ms", time.Millisecond),
			Entry("16ms", 16*time.Millisecond),
			Entry("33ms", 33*time.Millisecond),
			Entry("100ms", 100*time.Millisecond),
		)

		It("springs the translate cell home", func() {
			opacity, scale, translate := scope.NewCell(0), scope.NewCell(0.9), scope.NewCell(20)
			op := lib.Entrance(opacity, scale, translate)
			Expect(op.Ops).To(HaveLen(3))

			engine.Start(op, nil)
			settle(engine, frame)
			Expect(translate.Value()).To(Equal(0.0))
		})
	})

	Describe("Exit", func() {
		It("drives opacity, scale and translate out", func() {
			opacity, scale, translate := scope.NewCell(1), scope.NewCell(1), scope.NewCell(0)
			engine.Start(lib.Exit(opacity, scale, translate, 24), nil)
			settle(engine, frame)

			Expect(opacity.Value()).To(Equal(0.0))
			Expect(scale.Value()).To(Equal(0.9))
			Expect(translate.Value()).To(Equal(24.0))
		})
	})

	Describe("PressFeedback", func() {
		DescribeTable("returns to 1 from any starting scale",
			func(start float64) {
				scale := scope.NewCell(start)
				scale.Start(lib.PressFeedback(nil), nil)
				settle(engine, frame)
				Expect(scale.Value()).To(Equal(1.0))
			},
			Entry("rest", 1.0),
			Entry("mid press", 0.96),
			Entry("overshoot", 1.08),
		)

		It("dips toward the tap scale before returning", func() {
			values := sample(func(l *preset.Library, c *anim.Cell) anim.Operation {
				return l.PressFeedback(c)
			}, 1, 240)
			Expect(values).To(ContainElement(BeNumerically("<", 0.97)))
			Expect(values[len(values)-1]).To(Equal(1.0))
		})

		It("lets a second press supersede the first", func() {
			scale := scope.NewCell(1)
			firstDone, secondDone := 0, 0

			first, err := scale.Start(lib.PressFeedback(nil), func() { firstDone++ })
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 5; i++ {
				engine.Tick(frame)
			}
			mid := scale.Value()

			_, err = scale.Start(lib.PressFeedback(nil), func() { secondDone++ })
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Cancelled()).To(BeTrue())

			var got []float64
			for i := 0; i < 240; i++ {
				engine.Tick(frame)
				got = append(got, scale.Value())
			}

			want := sample(func(l *preset.Library, c *anim.Cell) anim.Operation {
				return l.PressFeedback(c)
			}, mid, 240)

			Expect(got).To(Equal(want))
			Expect(firstDone).To(BeZero())
			Expect(secondDone).To(Equal(1))
			Expect(scale.Value()).To(Equal(1.0))
		})
	})

	Describe("Pulse", func() {
		It("runs exactly two springs per pulse and ends at 1", func() {
			scale := scope.NewCell(1)
			scale.Start(lib.Pulse(nil, 3), nil)
			settle(engine, frame)

			Expect(tr.count(anim.EventBegin, "spring")).To(Equal(6))
			Expect(tr.count(anim.EventComplete, "spring") + tr.count(anim.EventForced, "spring")).To(Equal(6))
			Expect(scale.Value()).To(Equal(1.0))
		})

		It("is empty for a non-positive count", func() {
			Expect(lib.Pulse(nil, 0).Ops).To(BeEmpty())

			scale := scope.NewCell(1)
			done := false
			scale.Start(lib.Pulse(nil, -1), func() { done = true })
			engine.Tick(frame)
			Expect(done).To(BeTrue())
		})
	})

	Describe("LoadingRotation", func() {
		It("loops from 0 to 1 until cancelled", func() {
			rotation := scope.NewCell(0.6)
			done := false
			tok, err := rotation.Start(lib.LoadingRotation(nil), func() { done = true })
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 300; i++ {
				engine.Tick(frame)
				Expect(rotation.Value()).To(BeNumerically(">=", 0))
				Expect(rotation.Value()).To(BeNumerically("<=", 1))
			}
			Expect(tok.Running()).To(BeTrue())
			Expect(tr.count(anim.EventComplete, "timing")).To(BeNumerically(">=", 4))

			tok.Cancel()
			Expect(engine.Idle()).To(BeTrue())
			Expect(done).To(BeFalse())
		})

		It("maps to a quarter-visible arc", func() {
			arc := preset.ArcAt(0.25)
			Expect(arc.Start).To(BeNumerically("~", 90, 1e-9))
			Expect(arc.Sweep).To(BeNumerically("~", 90, 1e-9))
			Expect(arc.End()).To(BeNumerically("~", 180, 1e-9))
			Expect(arc.Contains(120)).To(BeTrue())
			Expect(arc.Contains(200)).To(BeFalse())

			Expect(preset.ArcAt(1).Start).To(BeNumerically("~", 0, 1e-9))
			Expect(preset.ArcAt(0.9).Contains(10)).To(BeTrue())
		})
	})

	Describe("StaggeredReveal", func() {
		It("starts item i at i times the interval", func() {
			items := make([]preset.RevealItem, 4)
			for i := range items {
				items[i] = preset.RevealItem{Opacity: scope.NewCell(0), Translate: scope.NewCell(20)}
			}

			var begins []time.Duration
			engine.AddTracer(anim.TracerFunc(func(ev anim.Event) {
				if ev.Kind == anim.EventBegin && ev.Op == "timing" {
					begins = append(begins, ev.At)
				}
			}))

			engine.Start(lib.StaggeredReveal(items, 0), nil)
			settle(engine, frame)

			Expect(begins).To(Equal([]time.Duration{0, 50 * time.Millisecond, 100 * time.Millisecond, 150 * time.Millisecond}))
			for _, it := range items {
				Expect(it.Opacity.Value()).To(Equal(1.0))
				Expect(it.Translate.Value()).To(Equal(0.0))
			}
		})

		It("honours an explicit interval", func() {
			op := lib.StaggeredReveal([]preset.RevealItem{{}, {}}, 120*time.Millisecond)
			Expect(op.Interval).To(Equal(120 * time.Millisecond))
		})
	})

	Describe("Progress and Success", func() {
		It("clamps progress fractions", func() {
			Expect(lib.Progress(nil, 1.4).To).To(Equal(1.0))
			Expect(lib.Progress(nil, -3).To).To(Equal(0.0))
			Expect(lib.Progress(nil, 0.3).Duration).To(Equal(400 * time.Millisecond))
		})

		It("pops the badge before drawing the check", func() {
			scale, check := scope.NewCell(0), scope.NewCell(0)
			engine.Start(lib.Success(scale, check), nil)

			for i := 0; i < 1000 && check.Value() == 0; i++ {
				engine.Tick(frame)
			}
			Expect(check.Value()).To(BeNumerically(">", 0))
			Expect(scale.Value()).To(Equal(1.0))

			settle(engine, frame)
			Expect(scale.Value()).To(Equal(1.0))
			Expect(check.Value()).To(Equal(1.0))
		})
	})

	It("builds identical trajectories from identical input", func() {
		build := func(l *preset.Library, c *anim.Cell) anim.Operation { return l.Pulse(c, 2) }
		Expect(sample(build, 1, 90)).To(Equal(sample(build, 1, 90)))
	})

	It("applies overrides to a copy", func() {
		fast, err := lib.Override(func(t *config.Table) { t.Durations.SlowMs = 100 })
		Expect(err).NotTo(HaveOccurred())
		Expect(fast.Progress(nil, 1).Duration).To(Equal(100 * time.Millisecond))
		Expect(lib.Progress(nil, 1).Duration).To(Equal(400 * time.Millisecond))
	})
})
