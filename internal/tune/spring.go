// Package tune searches spring constants that meet a motion target.
package tune

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/kinetic/internal/anim"
	"github.com/san-kum/kinetic/internal/metrics"
	"github.com/san-kum/kinetic/internal/spring"
)

// overshootPenalty outweighs any settle-time error.
const overshootPenalty = 1e6

type Objective struct {
	Settle       time.Duration
	MaxOvershoot float64
	// Tolerance is the settle band as a fraction of the travel distance.
	Tolerance float64
	Step      time.Duration
}

func DefaultObjective() Objective {
	return Objective{
		Settle:       500 * time.Millisecond,
		MaxOvershoot: 0.05,
		Tolerance:    0.01,
		Step:         16 * time.Millisecond,
	}
}

type Measurement struct {
	Tension   float64
	Friction  float64
	SettleMs  float64
	Overshoot float64
	Score     float64
}

// Measure plays a unit spring from 0 to 1 and scores it against obj.
func Measure(ctx context.Context, cfg anim.Config, p spring.Params, obj Objective) (Measurement, error) {
	if err := p.Validate(); err != nil {
		return Measurement{}, err
	}
	if obj.Step <= 0 {
		return Measurement{}, fmt.Errorf("step must be positive, got %v", obj.Step)
	}

	e := anim.New(anim.WithConfig(cfg))
	c := e.NewScope().NewCell(0)

	settle := metrics.NewSettle(1, obj.Tolerance)
	overshoot := metrics.NewOvershoot(1)
	observe := func(now time.Duration) {
		settle.Observe(c.Value(), now)
		overshoot.Observe(c.Value(), now)
	}
	observe(0)
	e.AddObserver(anim.ObserverFunc(observe))

	if _, err := c.Start(anim.Spring{To: 1, Tension: p.Tension, Friction: p.Friction}, nil); err != nil {
		return Measurement{}, err
	}
	if _, err := e.Settle(ctx, obj.Step, e.Config().MaxSpringDuration+obj.Step); err != nil {
		return Measurement{}, err
	}

	m := Measurement{
		Tension:   p.Tension,
		Friction:  p.Friction,
		SettleMs:  settle.Value(),
		Overshoot: overshoot.Value(),
	}
	m.Score = obj.score(m)
	return m, nil
}

func (o Objective) score(m Measurement) float64 {
	if m.SettleMs < 0 {
		return math.Inf(1)
	}
	target := float64(o.Settle) / float64(time.Millisecond)
	s := math.Abs(m.SettleMs - target)
	if m.Overshoot > o.MaxOvershoot {
		s += overshootPenalty * (m.Overshoot - o.MaxOvershoot)
	}
	return s
}

// Springs grid-searches tension and friction for obj.
func Springs(ctx context.Context, cfg anim.Config, obj Objective, tensions, frictions []float64) (Measurement, error) {
	g := NewGridSearch([]string{"tension", "friction"}, [][]float64{tensions, frictions})

	params, _, err := g.Search(ctx, func(params map[string]float64) (float64, error) {
		m, err := Measure(ctx, cfg, spring.Params{Tension: params["tension"], Friction: params["friction"]}, obj)
		if err != nil {
			return 0, err
		}
		return m.Score, nil
	})
	if err != nil {
		return Measurement{}, err
	}
	if params == nil {
		return Measurement{}, errors.New("no candidate spring settled")
	}
	return Measure(ctx, cfg, spring.Params{Tension: params["tension"], Friction: params["friction"]}, obj)
}
