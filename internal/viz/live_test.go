package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/kinetic/internal/config"
	"github.com/san-kum/kinetic/internal/scene"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, name string) Model {
	t.Helper()
	m, err := NewModel(scene.NewRegistry(), name, config.Default(), nil)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// frames sends n ticks spaced 16ms apart, continuing from *clock.
func frames(m Model, clock *time.Time, n int) Model {
	for i := 0; i < n; i++ {
		*clock = clock.Add(16 * time.Millisecond)
		m = send(m, TickMsg(*clock))
	}
	return m
}

func TestNewModelRejectsUnknownScene(t *testing.T) {
	if _, err := NewModel(scene.NewRegistry(), "nope", nil, nil); err == nil {
		t.Fatal("expected error for unknown scene")
	}
}

func TestModelPlaysAndReplays(t *testing.T) {
	m := newTestModel(t, "entrance")
	clock := epoch

	for i := 0; i < 1000 && !m.Instance().Done(); i++ {
		m = frames(m, &clock, 1)
	}
	if !m.Instance().Done() {
		t.Fatal("entrance never finished")
	}
	if got := m.Instance().Cell("opacity").Value(); got != 1 {
		t.Errorf("opacity = %v at the end, want 1", got)
	}
	if len(m.History("opacity")) < 2 {
		t.Error("history was not recorded")
	}

	m = frames(m, &clock, int(holdAfterDone/(16*time.Millisecond))+2)
	if m.Instance().Done() {
		t.Error("scene did not replay after the hold")
	}
	if m.Instance().Elapsed() >= holdAfterDone {
		t.Errorf("elapsed = %v after replay", m.Instance().Elapsed())
	}
}

func TestPauseFreezesScene(t *testing.T) {
	m := newTestModel(t, "entrance")
	clock := epoch
	m = frames(m, &clock, 3)

	m = send(m, key(" "))
	if m.Running() {
		t.Fatal("space did not pause")
	}
	elapsed := m.Instance().Elapsed()
	m = frames(m, &clock, 10)
	if m.Instance().Elapsed() != elapsed {
		t.Errorf("paused scene advanced from %v to %v", elapsed, m.Instance().Elapsed())
	}

	m = send(m, key(" "))
	m = frames(m, &clock, 1)
	if got := m.Instance().Elapsed() - elapsed; got != 16*time.Millisecond {
		t.Errorf("resumed scene advanced %v, want one frame", got)
	}
}

func TestFrameGapIsCapped(t *testing.T) {
	m := newTestModel(t, "progress")
	m = send(m, TickMsg(epoch))
	m = send(m, TickMsg(epoch.Add(5*time.Second)))

	if got := m.Instance().Elapsed(); got != 16*time.Millisecond+maxFrameGap {
		t.Errorf("elapsed = %v, want first frame plus capped gap", got)
	}
}

func TestSceneNavigationWraps(t *testing.T) {
	reg := scene.NewRegistry()
	names := reg.List()
	m := newTestModel(t, names[0])

	m = send(m, key("p"))
	if m.Scene() != names[len(names)-1] {
		t.Errorf("previous from first = %s, want %s", m.Scene(), names[len(names)-1])
	}
	m = send(m, key("n"))
	if m.Scene() != names[0] {
		t.Errorf("next from last = %s, want %s", m.Scene(), names[0])
	}
	if m.Instance().Scene().Name != names[0] {
		t.Errorf("instance plays %s", m.Instance().Scene().Name)
	}
}

func TestRestartKey(t *testing.T) {
	m := newTestModel(t, "progress")
	clock := epoch
	m = frames(m, &clock, 20)

	m = send(m, key("r"))
	if m.Instance().Elapsed() != 0 {
		t.Errorf("elapsed = %v after restart", m.Instance().Elapsed())
	}
	if got := m.Instance().Cell("progress").Value(); got != 0 {
		t.Errorf("progress = %v after restart, want 0", got)
	}
}

func TestThemeCycles(t *testing.T) {
	m := newTestModel(t, "pulse")
	for i := range Themes {
		if m.Theme().Name != Themes[i].Name {
			t.Errorf("theme %d = %s", i, m.Theme().Name)
		}
		m = send(m, key("t"))
	}
	if m.Theme().Name != Themes[0].Name {
		t.Errorf("theme did not wrap: %s", m.Theme().Name)
	}
}

func TestReloadRebuildsPresets(t *testing.T) {
	m := newTestModel(t, "progress")
	clock := epoch
	m = frames(m, &clock, 10)

	table := config.Default()
	table.Durations.SlowMs = 100
	m = send(m, ReloadMsg{Table: table})
	if m.Err() != nil {
		t.Fatalf("reload: %v", m.Err())
	}
	if m.Instance().Elapsed() != 0 {
		t.Error("reload did not restart the scene")
	}

	m = frames(m, &clock, 8)
	if got := m.Instance().Cell("progress").Value(); got != 0.3 {
		t.Errorf("progress = %v, want 0.3 with the faster table", got)
	}
}

func TestInvalidReloadKeepsScene(t *testing.T) {
	m := newTestModel(t, "pulse")
	bad := config.Default()
	bad.FrameMs = 0

	m = send(m, ReloadMsg{Table: bad})
	if m.Err() == nil {
		t.Fatal("expected an error for an invalid table")
	}
	if !strings.Contains(m.View(), "error") {
		t.Error("view does not show the error")
	}
	if m.Instance() == nil || m.Instance().Scene().Name != "pulse" {
		t.Error("scene was lost on a bad reload")
	}
}

func TestViewShowsCells(t *testing.T) {
	m := newTestModel(t, "entrance")
	clock := epoch
	m = frames(m, &clock, 5)

	view := m.View()
	for _, want := range []string{"entrance", "opacity", "scale", "translate", "RUNNING"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRingDrawsQuarterArc(t *testing.T) {
	c := NewCanvas(ringCells, ringCells/2)
	r := float64(min(c.Width*2, c.Height*4))/2 - 1
	cx, cy := float64(c.Width*2-1)/2, float64(c.Height*4-1)/2

	c.DrawArc(cx, cy, r, 0, 90)
	if tx, ty := arcPoint(cx, cy, r, 0); !c.IsSet(tx, ty) || ty > 1 {
		t.Errorf("arc does not start at twelve o'clock: (%d, %d)", tx, ty)
	}
	bx, by := arcPoint(cx, cy, r, 180)
	if c.IsSet(bx, by) {
		t.Error("quarter arc reached six o'clock")
	}
	lx, ly := arcPoint(cx, cy, r, 270)
	if c.IsSet(lx, ly) {
		t.Error("quarter arc reached nine o'clock")
	}

	if Ring(0.5, ringCells) == Ring(0, ringCells) {
		t.Error("ring did not move with rotation")
	}
}

func TestCanvasIgnoresOutOfBounds(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(-1, 0)
	c.Set(4, 0)
	c.Set(0, 4)
	if strings.Trim(c.String(), "⠀") != "" {
		t.Errorf("out of bounds dots drawn: %q", c.String())
	}

	c.DrawLine(0, 0, 3, 3)
	for i := 0; i < 4; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal dot %d not set", i)
		}
	}
}
