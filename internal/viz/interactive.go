package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/dynamo"
)

var presetInfo = map[string]string{
	"drift":   "released above the surface, settles to float",
	"surge":   "forward run then stop",
	"strafe":  "sideways run",
	"spin":    "yaw in place",
	"waves":   "holding station in a swell",
	"current": "drifting in a steady current",
	"sink":    "no buoyancy",
	"pan":     "camera joint steps",
}

// App lets the user pick a preset and then drives it live.
type App struct {
	presets   []string
	cursor    int
	log       zerolog.Logger
	observers []dynamo.Observer
	live      *Model
	err       error
	styles    Styles
}

func NewApp(log zerolog.Logger, observers ...dynamo.Observer) App {
	return App{
		presets:   config.ListPresets(),
		log:       log,
		observers: observers,
		styles:    NewStyles(ThemeOcean),
	}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.live != nil {
		next, cmd := a.live.Update(msg)
		live := next.(Model)
		a.live = &live
		return a, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		cfg := config.GetPreset(a.presets[a.cursor])
		live, err := NewModel(cfg, a.log, a.observers...)
		if err != nil {
			a.err = err
			return a, nil
		}
		a.live = &live
		return a, live.Init()
	}
	return a, nil
}

func (a App) View() string {
	if a.live != nil {
		return a.live.View()
	}
	st := a.styles
	var s strings.Builder
	s.WriteString(st.Header.Render("HYDROSIM") + "\n\n")
	for i, name := range a.presets {
		line := fmt.Sprintf("%-8s %s", name, presetInfo[name])
		if i == a.cursor {
			s.WriteString(st.Selected.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.Value.Render(line) + "\n")
		}
	}
	if a.err != nil {
		s.WriteString("\n" + st.Error.Render(a.err.Error()) + "\n")
	}
	s.WriteString("\n" + st.Help.Render("↑/↓ select  enter start  q quit"))
	return st.Panel.Render(s.String())
}
