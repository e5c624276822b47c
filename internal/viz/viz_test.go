package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/control"
	"github.com/san-kum/hydrosim/internal/dynamo"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

type countingObserver struct{ steps int }

func (c *countingObserver) OnStep(dynamo.State, dynamo.Control, float64) { c.steps++ }

func TestCanvas(t *testing.T) {
	c := NewCanvas(2, 1)
	if w, h := c.Dots(); w != 4 || h != 4 {
		t.Fatalf("expected 4x4 dots, got %dx%d", w, h)
	}

	c.Set(0, 0)
	c.Set(1, 3)
	c.Set(-1, 0)
	c.Set(100, 100)
	if c.Grid[0][0] != rune(blank|0x1|0x80) {
		t.Errorf("expected dots 1 and 8, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != blank {
		t.Errorf("expected blank second cell, got %U", c.Grid[0][1])
	}

	c.Clear()
	c.DrawLine(0, 0, 3, 0)
	if c.Grid[0][0] != rune(blank|0x1|0x8) || c.Grid[0][1] != rune(blank|0x1|0x8) {
		t.Errorf("expected top row lit, got %q", c.String())
	}
}

func TestViewport(t *testing.T) {
	c := NewCanvas(20, 10)
	v := Viewport{Span: 4}

	x, y := v.Project(c, 0, 0)
	if x != 20 || y != 20 {
		t.Errorf("expected centre at 20,20, got %d,%d", x, y)
	}
	x, y = v.Project(c, 0, 1)
	if x != 20 || y != 10 {
		t.Errorf("expected +z to go up the screen, got %d,%d", x, y)
	}

	v.Follow(0.5, 0)
	if v.Center[0] != 0 {
		t.Errorf("expected no recentre inside the middle, got %v", v.Center)
	}
	v.Follow(3, -3)
	if v.Center[0] != 2 || v.Center[1] != -2 {
		t.Errorf("expected centre 2,-2, got %v", v.Center)
	}
}

func TestSignedBar(t *testing.T) {
	if got := SignedBar(0, -1, 1, 4); got != "[  |  ]" {
		t.Errorf("unexpected zero bar %q", got)
	}
	if got := SignedBar(1, -1, 1, 4); got != "[  |██]" {
		t.Errorf("unexpected full bar %q", got)
	}
	if got := SignedBar(-0.5, -1, 1, 4); got != "[ █|  ]" {
		t.Errorf("unexpected half bar %q", got)
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != "ocean" {
		t.Error("expected ocean fallback")
	}
	if nextTheme(ThemeMinimal).Name != Themes[0].Name {
		t.Error("expected themes to wrap")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("expected a name per theme")
	}
}

func TestModelSteps(t *testing.T) {
	obs := &countingObserver{}
	m, err := NewModel(config.GetPreset("drift"), zerolog.Nop(), obs)
	if err != nil {
		t.Fatal(err)
	}

	m = send(t, m, TickMsg(time.Now()), TickMsg(time.Now()))
	if obs.steps != 2*m.substeps {
		t.Errorf("expected %d observed steps, got %d", 2*m.substeps, obs.steps)
	}
	if m.Time() <= 0 {
		t.Error("expected time to advance")
	}
	if len(m.heave) != obs.steps || len(m.trail) != obs.steps {
		t.Errorf("expected history per step, got %d heave %d trail", len(m.heave), len(m.trail))
	}

	m = send(t, m, key(" "))
	before := m.Time()
	m = send(t, m, TickMsg(time.Now()))
	if m.Time() != before {
		t.Error("expected paused model to hold")
	}

	m = send(t, m, key("r"))
	if m.Time() != 0 || !m.running {
		t.Error("expected reset to restart at zero")
	}
}

func TestModelCommands(t *testing.T) {
	m, err := NewModel(config.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	m = send(t, m, key("w"), key("w"), key("d"), key("right"))
	if got := m.Vehicle().Motion(); got != [3]float64{0.2, 0.1, 0.1} {
		t.Errorf("expected motion 0.2 0.1 0.1, got %v", got)
	}
	m = send(t, m, key("x"))
	if got := m.Vehicle().Motion(); got != [3]float64{} {
		t.Errorf("expected stop, got %v", got)
	}

	// thrusters come first, the camera joint last
	for range 4 {
		m = send(t, m, key("tab"))
	}
	if m.actuators[m.selected] != "camera" {
		t.Fatalf("expected camera selected, got %s", m.actuators[m.selected])
	}
	m = send(t, m, key("up"))
	camera, _ := m.Vehicle().Motor("camera")
	if got := camera.Command(); got < 0.149 || got > 0.151 {
		t.Errorf("expected camera command 0.15, got %v", got)
	}

	m = send(t, m, key("o"))
	if src := camera.Source(); src.Kind != control.SourceDebugOverride || src.Value != camera.Command() {
		t.Errorf("expected camera pinned at its command, got %v", src)
	}

	view := m.View()
	if !strings.Contains(view, "DEFAULT") || !strings.Contains(view, "> camera") {
		t.Errorf("expected title and selected camera in view:\n%s", view)
	}
	if !strings.Contains(view, "override(") {
		t.Errorf("expected override marker in view:\n%s", view)
	}

	m = send(t, m, key("o"))
	if camera.Source().Kind != control.SourceLive {
		t.Error("expected camera back on the live command")
	}
}

func TestApp(t *testing.T) {
	a := NewApp(zerolog.Nop())
	if !strings.Contains(a.View(), "drift") {
		t.Error("expected preset list")
	}

	next, _ := a.Update(key("down"))
	a = next.(App)
	next, cmd := a.Update(key("enter"))
	a = next.(App)
	if a.live == nil || cmd == nil {
		t.Fatal("expected live model to start")
	}
	if a.live.cfg.Name != a.presets[1] {
		t.Errorf("expected %s, got %s", a.presets[1], a.live.cfg.Name)
	}
}
