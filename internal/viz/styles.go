package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Panel         lipgloss.Style
	Title         lipgloss.Style
	Label         lipgloss.Style
	Value         lipgloss.Style
	Graph         lipgloss.Style
	Help          lipgloss.Style
	StatusRunning lipgloss.Style
	StatusPaused  lipgloss.Style
	StatusError   lipgloss.Style
	SparkHigh     lipgloss.Style
	SparkMid      lipgloss.Style
	SparkLow      lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 2),
		Title:         lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).MarginBottom(1),
		Label:         lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		Value:         lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Graph:         lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 0),
		Help:          lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		StatusRunning: lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		StatusPaused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		StatusError:   lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		SparkHigh:     lipgloss.NewStyle().Foreground(t.Error),
		SparkMid:      lipgloss.NewStyle().Foreground(t.Warning),
		SparkLow:      lipgloss.NewStyle().Foreground(t.Success),
	}
}

// ProgressBar renders a fill fraction, colored by how full it is.
func (s Styles) ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	filled = max(0, min(width, filled))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if percent > 0.8 {
		return s.SparkHigh.Render(bar)
	} else if percent > 0.4 {
		return s.SparkMid.Render(bar)
	}
	return s.SparkLow.Render(bar)
}

// Sparkline renders values as a one-line bar chart, sampled to fit width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		idx := int((values[i*step] - lo) / rng * float64(len(chars)-1))
		idx = max(0, min(len(chars)-1, idx))
		result.WriteRune(chars[idx])
	}
	return result.String()
}
