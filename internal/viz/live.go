package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"

	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/control"
	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/vehicle"
)

const (
	canvasWidth     = 40
	canvasHeight    = 16
	historyCapacity = 300
	trailCapacity   = 600
	frameRate       = 30
	motionStep      = 0.1
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a vehicle in real time and draws it. Keyboard commands go
// through the mixer or to the selected actuator.
type Model struct {
	cfg       *config.Config
	log       zerolog.Logger
	observers []dynamo.Observer

	veh       *vehicle.Vehicle
	actuators []string
	selected  int

	t, dt    float64
	substeps int
	running  bool
	err      error

	heave    []float64
	trail    [][2]float64
	view     Viewport
	canvas   *Canvas
	theme    Theme
	styles   Styles
	showHelp bool
}

// NewModel builds and initializes the scenario's vehicle. Observers see
// every simulated step, as they would in a batch run.
func NewModel(cfg *config.Config, log zerolog.Logger, observers ...dynamo.Observer) (Model, error) {
	m := Model{
		cfg:       cfg,
		log:       log,
		observers: observers,
		dt:        cfg.Dt,
		substeps:  max(1, int(math.Round(1/(frameRate*cfg.Dt)))),
		running:   true,
		canvas:    NewCanvas(canvasWidth, canvasHeight),
		theme:     ThemeOcean,
		styles:    NewStyles(ThemeOcean),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) reset() error {
	veh, err := vehicle.Build(m.cfg.Clone(), m.log)
	if err != nil {
		return err
	}
	if err := veh.Initialize(); err != nil {
		return err
	}
	m.veh = veh
	m.actuators = veh.CommandLabels()
	m.selected = 0
	m.t = 0
	m.err = nil
	m.heave = m.heave[:0]
	m.trail = m.trail[:0]
	m.view = Viewport{Center: [2]float64{veh.Hull.Position[0], veh.Hull.Position[2]}, Span: 6}
	return nil
}

// AddObserver attaches an observer that sees every later step.
func (m *Model) AddObserver(o dynamo.Observer) { m.observers = append(m.observers, o) }

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.running {
			for i := 0; i < m.substeps && m.running; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		if m.err == nil {
			m.running = !m.running
		}
	case "r":
		if err := m.reset(); err != nil {
			m.err = err
		}
		m.running = m.err == nil
	case "w":
		m.nudgeMotion(vehicle.MotionForward, 0, motionStep)
	case "s":
		m.nudgeMotion(vehicle.MotionForward, 0, -motionStep)
	case "d":
		m.nudgeMotion(vehicle.MotionStrafe, 1, motionStep)
	case "a":
		m.nudgeMotion(vehicle.MotionStrafe, 1, -motionStep)
	case "right":
		m.nudgeMotion(vehicle.MotionYaw, 2, motionStep)
	case "left":
		m.nudgeMotion(vehicle.MotionYaw, 2, -motionStep)
	case "x":
		for _, target := range []string{vehicle.MotionForward, vehicle.MotionStrafe, vehicle.MotionYaw} {
			m.setCommand(target, 0)
		}
	case "tab":
		if len(m.actuators) > 0 {
			m.selected = (m.selected + 1) % len(m.actuators)
		}
	case "up", "k":
		m.nudgeActuator(1)
	case "down", "j":
		m.nudgeActuator(-1)
	case "o":
		m.toggleOverride()
	case "t":
		m.theme = nextTheme(m.theme)
		m.styles = NewStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) setCommand(target string, v float64) {
	if m.veh.Mixer == nil && strings.HasPrefix(target, "motion.") {
		return
	}
	if err := m.veh.SetCommand(target, v); err != nil {
		m.log.Warn().Err(err).Msg("command rejected")
	}
}

func (m *Model) nudgeMotion(target string, axis int, delta float64) {
	m.setCommand(target, m.veh.Motion()[axis]+delta)
}

// nudgeActuator moves the selected actuator's command by a twentieth of
// its range, or by 0.1 when the range is open.
func (m *Model) nudgeActuator(dir float64) {
	if len(m.actuators) == 0 {
		return
	}
	name := m.actuators[m.selected]
	motor, ok := m.veh.Motor(name)
	if !ok {
		return
	}
	lo, hi := motor.MinCommand(), motor.MaxCommand()
	step := (hi - lo) / 20
	if math.IsInf(step, 0) || math.IsNaN(step) || step <= 0 {
		step = 0.1
	}
	v := math.Max(lo, math.Min(hi, motor.Command()+dir*step))
	m.setCommand(name, v)
}

// toggleOverride pins the selected actuator at its current command, or
// hands it back to the live command.
func (m *Model) toggleOverride() {
	if len(m.actuators) == 0 {
		return
	}
	motor, ok := m.veh.Motor(m.actuators[m.selected])
	if !ok {
		return
	}
	if motor.Source().Kind == control.SourceLive {
		motor.SetSource(control.DebugOverride(motor.Command()))
	} else {
		motor.SetSource(control.Live())
	}
}

// step advances one fixed tick. Observers see the state the tick starts
// from.
func (m *Model) step() {
	x, u := m.veh.Sample(), m.veh.Commands()
	for _, obs := range m.observers {
		obs.OnStep(x, u, m.t)
	}
	if err := m.veh.Step(m.dt); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.t += m.dt

	x = m.veh.Sample()
	if !x.IsValid() {
		m.err = dynamo.SimError{Time: m.t, Message: "invalid state (NaN/Inf)"}
		m.running = false
		return
	}

	m.heave = append(m.heave, x[dynamo.PosY])
	if len(m.heave) > historyCapacity {
		m.heave = m.heave[1:]
	}
	m.trail = append(m.trail, [2]float64{x[dynamo.PosX], x[dynamo.PosZ]})
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
	m.view.Follow(x[dynamo.PosX], x[dynamo.PosZ])
}

// draw renders the top-down track and the hull outline at its heading.
func (m *Model) draw() {
	c := m.canvas
	c.Clear()
	for _, p := range m.trail {
		c.Set(m.view.Project(c, p[0], p[1]))
	}

	pos := m.veh.Hull.Position
	_, _, yaw := vehicle.Attitude(m.veh.Hull.Rotation)
	size := m.cfg.Vehicle.Hull.Size
	hw, hl := size[0]/2, size[2]/2
	sin, cos := math.Sin(yaw), math.Cos(yaw)
	// yaw is measured from +z towards +x
	corner := func(across, along float64) (int, int) {
		return m.view.Project(c, pos[0]+across*cos+along*sin, pos[2]-across*sin+along*cos)
	}
	outline := [][2]float64{{-hw, -hl}, {hw, -hl}, {hw, hl}, {0, hl * 1.4}, {-hw, hl}, {-hw, -hl}}
	for i := 1; i < len(outline); i++ {
		x0, y0 := corner(outline[i-1][0], outline[i-1][1])
		x1, y1 := corner(outline[i][0], outline[i][1])
		c.DrawLine(x0, y0, x1, y1)
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render("STOPPED: " + m.err.Error())
	case m.running:
		return m.styles.Running.Render("RUNNING")
	default:
		return m.styles.Paused.Render("PAUSED")
	}
}

func (m Model) View() string {
	m.draw()
	st := m.styles
	x := m.veh.Sample()

	var s strings.Builder
	s.WriteString(st.Header.Render(strings.ToUpper(m.cfg.Name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	row := func(label, format string, args ...any) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(fmt.Sprintf(format, args...)) + "\n")
	}
	row("time", "%.2fs", m.t)
	row("position", "%6.2f %6.2f %6.2f", x[dynamo.PosX], x[dynamo.PosY], x[dynamo.PosZ])
	row("velocity", "%6.2f %6.2f %6.2f", x[dynamo.VelX], x[dynamo.VelY], x[dynamo.VelZ])
	row("attitude", "%6.1f %6.1f %6.1f", deg(x[dynamo.Roll]), deg(x[dynamo.Pitch]), deg(x[dynamo.Yaw]))
	row("volume", "%.4f m3", x[dynamo.Volume])
	motion := m.veh.Motion()
	row("motion", "fwd %+.1f  str %+.1f  yaw %+.1f", motion[0], motion[1], motion[2])

	s.WriteString("\n")
	for i, name := range m.actuators {
		motor, _ := m.veh.Motor(name)
		line := fmt.Sprintf("%-7s %s %7.2f", name, SignedBar(motor.Command(), motor.MinCommand(), motor.MaxCommand(), 12), motor.Command())
		if src := motor.Source(); src.Kind != control.SourceLive {
			line += " " + src.String()
		}
		if i == m.selected {
			s.WriteString(st.Selected.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.Value.Render(line) + "\n")
		}
	}
	stats := st.Panel.Render(s.String())

	left := st.Canvas.Render(m.canvas.String())
	if len(m.heave) > 1 {
		graph := asciigraph.Plot(m.heave, asciigraph.Height(5), asciigraph.Width(canvasWidth), asciigraph.Caption("heave (m)"))
		left = lipgloss.JoinVertical(lipgloss.Left, left, st.Graph.Render(graph))
	}

	view := lipgloss.JoinHorizontal(lipgloss.Top, left, stats)
	if !m.showHelp {
		return view + "\n" + st.Help.Render("? help  q quit")
	}
	return view + "\n" + st.Help.Render("w/s fwd  a/d strafe  ←/→ yaw  x stop  tab select  ↑/↓ command  o override\nspace pause  r reset  t theme ("+m.theme.Name+")  q quit")
}

func deg(r float64) float64 { return r * 180 / math.Pi }

// Time returns the simulated time.
func (m Model) Time() float64 { return m.t }

// Vehicle returns the vehicle being driven.
func (m Model) Vehicle() *vehicle.Vehicle { return m.veh }

// Err returns the error that stopped the run, if any.
func (m Model) Err() error { return m.err }
