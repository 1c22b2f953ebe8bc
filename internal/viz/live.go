package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/kinetic/internal/anim"
	"github.com/san-kum/kinetic/internal/config"
	"github.com/san-kum/kinetic/internal/preset"
	"github.com/san-kum/kinetic/internal/scene"
)

const (
	historyCapacity = 120
	holdAfterDone   = time.Second
	maxFrameGap     = anim.MaxFrameGap
	defaultWidth    = 80
	ringCells       = 6
)

type TickMsg time.Time

// ReloadMsg carries a table read from the watched config file.
type ReloadMsg struct {
	Table *config.Table
}

// Model plays one scene at a time against wall-clock frames.
type Model struct {
	reg      *scene.Registry
	names    []string
	current  int
	table    *config.Table
	lib      *preset.Library
	engine   *anim.Engine
	inst     *scene.Instance
	logger   *log.Logger
	frame    time.Duration
	last     time.Time
	running  bool
	doneFor  time.Duration
	history  map[string][]float64
	theme    int
	showHelp bool
	width    int
	reloads  <-chan *config.Table
	reloaded int
	err      error
}

// NewModel prepares a preview of sceneName with presets built from table.
func NewModel(reg *scene.Registry, sceneName string, table *config.Table, logger *log.Logger) (Model, error) {
	if table == nil {
		table = config.Default()
	}
	lib, err := preset.New(table)
	if err != nil {
		return Model{}, err
	}

	names := reg.List()
	current := -1
	for i, name := range names {
		if name == sceneName {
			current = i
		}
	}
	if current < 0 {
		return Model{}, fmt.Errorf("unknown scene: %s", sceneName)
	}

	m := Model{
		reg:     reg,
		names:   names,
		current: current,
		table:   table,
		lib:     lib,
		logger:  logger,
		frame:   table.Frame(),
		running: true,
		width:   defaultWidth,
	}
	if err := m.load(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// WithWatch makes the model rebuild its presets from every table on ch.
func (m Model) WithWatch(ch <-chan *config.Table) Model {
	m.reloads = ch
	return m
}

func (m Model) Scene() string                 { return m.names[m.current] }
func (m Model) Instance() *scene.Instance     { return m.inst }
func (m Model) Running() bool                 { return m.running }
func (m Model) History(cell string) []float64 { return m.history[cell] }
func (m Model) Theme() Theme                  { return Themes[m.theme] }
func (m Model) Err() error                    { return m.err }

// load builds a fresh engine and instance for the current scene.
func (m *Model) load() error {
	s, err := m.reg.Get(m.names[m.current])
	if err != nil {
		return err
	}
	opts := []anim.Option{anim.WithConfig(m.table.Anim())}
	if m.logger != nil {
		opts = append(opts, anim.WithLogger(m.logger))
	}
	m.engine = anim.New(opts...)
	m.inst = scene.NewInstance(s, m.lib, m.engine)
	m.resetHistory()
	return nil
}

func (m *Model) resetHistory() {
	m.doneFor = 0
	m.history = make(map[string][]float64, len(m.inst.Scene().Cells))
	m.record()
}

func (m *Model) record() {
	for _, spec := range m.inst.Scene().Cells {
		h := append(m.history[spec.Name], m.inst.Cell(spec.Name).Value())
		if len(h) > historyCapacity {
			h = h[len(h)-historyCapacity:]
		}
		m.history[spec.Name] = h
	}
}

func (m Model) Init() tea.Cmd {
	if m.reloads != nil {
		return tea.Batch(tick(m.frame), waitForTable(m.reloads))
	}
	return tick(m.frame)
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func waitForTable(ch <-chan *config.Table) tea.Cmd {
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return ReloadMsg{Table: t}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.inst.Restart()
			m.resetHistory()
		case "n", "right":
			m.switchScene(1)
		case "p", "left":
			m.switchScene(-1)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "?":
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case ReloadMsg:
		m.reload(msg.Table)
		if m.reloads == nil {
			return m, nil
		}
		return m, waitForTable(m.reloads)

	case TickMsg:
		m.step(time.Time(msg))
		return m, tick(m.frame)
	}

	return m, nil
}

func (m *Model) switchScene(delta int) {
	n := len(m.names)
	m.current = ((m.current+delta)%n + n) % n
	if err := m.load(); err != nil {
		m.err = err
	}
}

func (m *Model) reload(t *config.Table) {
	lib, err := preset.New(t)
	if err != nil {
		m.err = err
		if m.logger != nil {
			m.logger.Warn("ignoring reloaded config", "err", err)
		}
		return
	}
	m.table, m.lib, m.frame = t, lib, t.Frame()
	m.reloaded++
	m.err = nil
	if err := m.load(); err != nil {
		m.err = err
	}
}

// step advances the scene by the wall-clock gap since the previous frame.
// Gaps are capped so a stalled terminal does not make the scene jump.
func (m *Model) step(now time.Time) {
	dt := m.frame
	if !m.last.IsZero() {
		dt = min(max(now.Sub(m.last), 0), maxFrameGap)
	}
	m.last = now
	if !m.running {
		return
	}

	if err := m.inst.Advance(dt); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.record()

	if m.inst.Done() {
		m.doneFor += dt
		if m.doneFor >= holdAfterDone {
			m.inst.Restart()
			m.resetHistory()
		}
	}
}

func (m Model) View() string {
	theme := Themes[m.theme]
	s := m.inst.Scene()

	var b strings.Builder
	b.WriteString(GradientText("kinetic", theme.Primary, theme.Accent))
	b.WriteString("  ")
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(s.Name))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Muted).Render(s.Description))
	b.WriteString("\n\n")

	b.WriteString(m.status(theme))
	b.WriteString("\n\n")

	barWidth := max(10, min(40, m.width-40))
	for _, spec := range s.Cells {
		v := m.inst.Cell(spec.Name).Value()
		lo, hi := m.span(spec)
		frac := 0.0
		if hi > lo {
			frac = (v - lo) / (hi - lo)
		}
		b.WriteString(labelStyle.Render(spec.Name))
		b.WriteString(ValueBar(frac, barWidth, theme))
		b.WriteString(valueStyle.Render(fmt.Sprintf(" %8.3f ", v)))
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Muted).Render(Sparkline(m.history[spec.Name], 20)))
		b.WriteString("\n")
	}

	if c := m.inst.Cell("rotation"); c != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Render(Ring(c.Value(), ringCells)))
		b.WriteString("\n")
	} else if len(s.Cells) > 0 {
		first := s.Cells[0].Name
		if h := m.history[first]; len(h) > 1 {
			graph := asciigraph.Plot(h,
				asciigraph.Height(6),
				asciigraph.Width(min(60, max(20, m.width-20))),
				asciigraph.Caption(first))
			b.WriteString(graphStyle.Foreground(theme.Primary).Render(graph))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(helpStyle.Render("space pause • r restart • n/p scene • t theme • ? help • q quit"))
	} else {
		b.WriteString(helpStyle.Render("? help • q quit"))
	}

	return panelStyle.Render(b.String())
}

func (m Model) status(theme Theme) string {
	var state string
	switch {
	case !m.running:
		state = statusPaused.Render("PAUSED")
	case m.inst.Done():
		state = statusDone.Render("DONE")
	default:
		state = statusRunning.Render("RUNNING")
	}

	parts := []string{
		state,
		fmt.Sprintf("t=%dms", m.inst.Elapsed().Milliseconds()),
		fmt.Sprintf("active=%d", m.engine.ActiveCount()),
		"theme=" + theme.Name,
	}
	if m.reloads != nil {
		parts = append(parts, fmt.Sprintf("reloads=%d", m.reloaded))
	}
	return strings.Join(parts, "  ")
}

// span is the value range a cell's bar covers: its declared endpoints widened
// by anything it has visited, so overshoot stays on the bar.
func (m Model) span(spec scene.CellSpec) (float64, float64) {
	lo, hi := math.Min(spec.Initial, spec.Target), math.Max(spec.Initial, spec.Target)
	for _, v := range m.history[spec.Name] {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if hi == lo {
		// rotation-style cells rest where they started
		hi = lo + 1
	}
	return lo, hi
}

// Ring draws the indeterminate progress ring for a rotation value on a
// canvas size cells wide.
func Ring(rotation float64, size int) string {
	c := NewCanvas(size, size/2)
	r := float64(min(c.Width*2, c.Height*4))/2 - 1
	cx, cy := float64(c.Width*2-1)/2, float64(c.Height*4-1)/2
	arc := preset.ArcAt(rotation)
	c.DrawArc(cx, cy, r, arc.Start, arc.Sweep)
	return c.String()
}
