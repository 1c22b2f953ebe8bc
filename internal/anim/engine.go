package anim

import (
	"errors"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/kinetic/internal/spring"
)

type Config struct {
	Solver            string
	RestDisplacement  float64
	RestSpeed         float64
	MaxSpringDuration time.Duration
	MaxSubstep        time.Duration
}

func DefaultConfig() Config {
	return Config{
		Solver:            spring.KindAnalytic,
		RestDisplacement:  spring.DefaultRestDisplacement,
		RestSpeed:         spring.DefaultRestSpeed,
		MaxSpringDuration: 10 * time.Second,
		MaxSubstep:        spring.DefaultMaxSubstep,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Solver == "" {
		c.Solver = d.Solver
	}
	if c.RestDisplacement <= 0 {
		c.RestDisplacement = d.RestDisplacement
	}
	if c.RestSpeed <= 0 {
		c.RestSpeed = d.RestSpeed
	}
	if c.MaxSpringDuration <= 0 {
		c.MaxSpringDuration = d.MaxSpringDuration
	}
	if c.MaxSubstep <= 0 {
		c.MaxSubstep = d.MaxSubstep
	}
	return c
}

type Option func(*Engine)

func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg.withDefaults() }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine schedules operations over cells and advances them on Tick.
type Engine struct {
	cfg       Config
	logger    *log.Logger
	now       time.Duration
	active    []*Token
	nextCell  CellID
	nextToken uint64
	observers []Observer
	tracers   []Tracer
}

func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:    DefaultConfig(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if _, err := spring.NewSolver(e.cfg.Solver, spring.Params{Tension: 1}, e.cfg.MaxSubstep); err != nil {
		e.logger.Warn("falling back to analytic spring solver", "err", err)
		e.cfg.Solver = spring.KindAnalytic
	}
	return e
}

func (e *Engine) Config() Config         { return e.cfg }
func (e *Engine) Now() time.Duration     { return e.now }
func (e *Engine) Idle() bool             { return len(e.active) == 0 }
func (e *Engine) ActiveCount() int       { return len(e.active) }
func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }
func (e *Engine) AddTracer(t Tracer)     { e.tracers = append(e.tracers, t) }

// NewScope creates an arena for the cells of one component instance.
func (e *Engine) NewScope() *Scope {
	return &Scope{engine: e}
}

// Start runs an operation whose primitives all name their cells.
func (e *Engine) Start(op Operation, onComplete func()) (*Token, error) {
	return e.start(op, nil, onComplete)
}

func (e *Engine) start(op Operation, def *Cell, onComplete func()) (*Token, error) {
	if err := e.validate(op, "", def); err != nil {
		if errors.Is(err, ErrDisposedCell) {
			e.logger.Debug("start on disposed cell ignored", "err", err)
		} else {
			e.logger.Warn("rejected operation", "err", err)
		}
		return nil, err
	}

	e.nextToken++
	tok := &Token{
		id:      e.nextToken,
		engine:  e,
		def:     def,
		cells:   cellsOf(op, def),
		onDone:  onComplete,
		started: e.now,
	}

	for _, c := range tok.cells {
		if c.active != nil {
			c.active.Cancel()
		}
	}
	for _, c := range tok.cells {
		c.active = tok
	}

	tok.root = tok.build(op, def)
	e.active = append(e.active, tok)
	return tok, nil
}

// Tick advances every running operation by dt. Operations started while the
// tick runs (from callbacks) take their first step on the next tick.
func (e *Engine) Tick(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	start := e.now
	e.now += dt

	pending := slices.Clone(e.active)
	for _, tok := range pending {
		if tok.stopped() {
			continue
		}
		if _, done := tok.root.advance(start, dt); done && !tok.stopped() {
			e.finish(tok)
		}
	}

	for _, o := range e.observers {
		o.OnStep(e.now)
	}
}

func (e *Engine) finish(tok *Token) {
	tok.state = tokenCompleted
	e.release(tok)
	if tok.onDone != nil {
		tok.onDone()
	}
}

func (e *Engine) cancel(tok *Token) {
	tok.state = tokenCancelled
	if tok.root != nil {
		tok.root.cancel(e.now)
	}
	e.release(tok)
}

func (e *Engine) release(tok *Token) {
	for _, c := range tok.cells {
		if c.active == tok {
			c.active = nil
		}
	}
	e.active = slices.DeleteFunc(e.active, func(t *Token) bool { return t == tok })
}

func (e *Engine) emit(ev Event) {
	for _, t := range e.tracers {
		t.OnEvent(ev)
	}
}

func (e *Engine) solver(p spring.Params) spring.Solver {
	s, err := spring.NewSolver(e.cfg.Solver, p, e.cfg.MaxSubstep)
	if err != nil {
		// params were validated at start; only the kind can fail here
		return spring.NewAnalytic(p)
	}
	return s
}

func (e *Engine) settled(pos, vel, target float64) bool {
	return spring.Settled(pos, vel, target, e.cfg.RestDisplacement, e.cfg.RestSpeed)
}
