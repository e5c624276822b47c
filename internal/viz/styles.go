package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are derived from a theme whenever the theme changes.
type Styles struct {
	Header   lipgloss.Style
	Panel    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Selected lipgloss.Style
	Graph    lipgloss.Style
	Help     lipgloss.Style
	Running  lipgloss.Style
	Paused   lipgloss.Style
	Error    lipgloss.Style
	Canvas   lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		Label:    lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		Value:    lipgloss.NewStyle().Foreground(t.Text),
		Selected: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Graph:    lipgloss.NewStyle().Foreground(t.Primary),
		Help:     lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Running:  lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		Paused:   lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		Canvas:   lipgloss.NewStyle().Foreground(t.Secondary).Padding(0, 1),
	}
}

// SignedBar draws v within [lo, hi] as a bar growing left or right from
// the centre mark.
func SignedBar(v, lo, hi float64, width int) string {
	half := width / 2
	if half < 1 {
		return ""
	}
	span := math.Max(math.Abs(lo), math.Abs(hi))
	if span == 0 || math.IsInf(span, 0) {
		span = 1
	}
	n := int(math.Round(math.Min(1, math.Abs(v)/span) * float64(half)))

	left := strings.Repeat(" ", half)
	right := strings.Repeat(" ", half)
	if v < 0 {
		left = strings.Repeat(" ", half-n) + strings.Repeat("█", n)
	} else {
		right = strings.Repeat("█", n) + strings.Repeat(" ", half-n)
	}
	return "[" + left + "|" + right + "]"
}
