package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/pidf/internal/sim"
)

const (
	frameInterval = 50 * time.Millisecond
	historyLen    = 240
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// integralReporter is implemented by controllers that expose their
// accumulator, such as *control.PID.
type integralReporter interface {
	Integral() float64
	IntegralLimit() float64
}

// Model is the Bubble Tea model of a live closed loop.
type Model struct {
	title   string
	sim     *sim.Simulator
	x0      sim.State
	cfg     sim.Config
	session *sim.Session

	theme  Theme
	styles Styles

	setpointStep  float64
	stepsPerFrame int

	paused bool
	done   bool
	err    error

	last        sim.Sample
	measurement []float64
	setpoint    []float64
	output      []float64

	width  int
	height int
}

// NewModel starts a session of s and wraps it for display. The loop advances
// in real time: each frame covers frameInterval of simulated time.
func NewModel(title string, s *sim.Simulator, x0 sim.State, cfg sim.Config) (Model, error) {
	m := Model{
		title:         title,
		sim:           s,
		x0:            x0.Clone(),
		cfg:           cfg,
		theme:         Themes[0],
		styles:        NewStyles(Themes[0]),
		setpointStep:  1,
		stepsPerFrame: 1,
		width:         80,
		height:        24,
	}
	if err := m.restart(); err != nil {
		return Model{}, err
	}
	m.stepsPerFrame = max(1, int(math.Round(frameInterval.Seconds()/cfg.Dt)))
	return m, nil
}

// WithTheme selects a theme by name.
func (m Model) WithTheme(name string) Model {
	m.theme = GetTheme(name)
	m.styles = NewStyles(m.theme)
	return m
}

// WithSetpointStep sets how far +/- move the setpoint.
func (m Model) WithSetpointStep(step float64) Model {
	if step > 0 {
		m.setpointStep = step
	}
	return m
}

// Err is the error that stopped the loop, if any.
func (m Model) Err() error { return m.err }

func (m Model) Theme() Theme { return m.theme }

func (m Model) Paused() bool { return m.paused }

func (m Model) Last() sim.Sample { return m.last }

func (m Model) History() (measurement, setpoint, output []float64) {
	return m.measurement, m.setpoint, m.output
}

func (m *Model) restart() error {
	session, err := m.sim.Start(m.x0, m.cfg)
	if err != nil {
		return err
	}
	m.session = session
	m.done = false
	m.err = nil
	m.last = sim.Sample{}
	m.measurement = make([]float64, 0, historyLen)
	m.setpoint = make([]float64, 0, historyLen)
	m.output = make([]float64, 0, historyLen)
	return nil
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.paused && !m.done {
			m.advance(m.stepsPerFrame)
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "p":
		m.paused = !m.paused
	case "r":
		if err := m.restart(); err != nil {
			m.err = err
			m.done = true
		}
	case "+", "=":
		m.session.SetSetpoint(m.session.Setpoint() + m.setpointStep)
	case "-", "_":
		m.session.SetSetpoint(m.session.Setpoint() - m.setpointStep)
	case "t":
		m.theme = NextTheme(m.theme)
		m.styles = NewStyles(m.theme)
	}
	return m, nil
}

func (m *Model) advance(steps int) {
	for i := 0; i < steps; i++ {
		if m.cfg.Duration > 0 && m.session.Time() >= m.cfg.Duration {
			m.done = true
			return
		}

		sample, err := m.session.Step()
		m.record(sample)
		if err != nil {
			m.err = err
			m.done = true
			return
		}
	}
}

func (m *Model) record(s sim.Sample) {
	m.last = s
	m.measurement = pushBounded(m.measurement, s.Measurement)
	m.setpoint = pushBounded(m.setpoint, s.Setpoint)
	m.output = pushBounded(m.output, s.Output)
}

func pushBounded(buf []float64, v float64) []float64 {
	buf = append(buf, v)
	if len(buf) > historyLen {
		buf = buf[len(buf)-historyLen:]
	}
	return buf
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(fmt.Sprintf("%s  t=%.2fs", m.title, m.session.Time())))
	b.WriteString("  " + m.status() + "\n")

	cw := max(40, m.width-30)
	ch := max(8, m.height-14)
	if len(m.measurement) > 1 {
		chart := Plot("measurement / setpoint", cw, ch, m.measurement, m.setpoint)
		b.WriteString(m.styles.Graph.Render(chart))
	} else {
		b.WriteString(m.styles.Graph.Render("waiting for samples..."))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Panel.Render(m.panel()))
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("space pause  r reset  +/- setpoint  t theme  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) status() string {
	switch {
	case m.err != nil && errors.Is(m.err, sim.ErrDiverged):
		return m.styles.StatusError.Render("● diverged")
	case m.err != nil:
		return m.styles.StatusError.Render("● " + m.err.Error())
	case m.done:
		return m.styles.StatusPaused.Render("○ finished")
	case m.paused:
		return m.styles.StatusPaused.Render("○ paused")
	}
	return m.styles.StatusRunning.Render("● running")
}

func (m Model) panel() string {
	row := func(label string, v float64) string {
		return m.styles.Label.Render(label) + m.styles.Value.Render(fmt.Sprintf("%10.3f", v))
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		row("setpoint", m.session.Setpoint()),
		row("measured", m.last.Measurement),
		row("error", m.last.Error()),
		row("output", m.last.Output),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		row("P", m.last.Terms.P),
		row("I", m.last.Terms.I),
		row("D", m.last.Terms.D),
		row("F", m.last.Terms.F),
	)
	panel := lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)

	lines := []string{panel, ""}
	if ir, ok := m.sim.Controller().(integralReporter); ok && ir.IntegralLimit() > 0 {
		frac := math.Abs(ir.Integral()) / ir.IntegralLimit()
		lines = append(lines, m.styles.Label.Render("integral")+m.styles.ProgressBar(frac, 24)+
			fmt.Sprintf(" %3.0f%%", 100*frac))
	}
	lines = append(lines, m.styles.Label.Render("output")+Sparkline(m.output, 24))
	return strings.Join(lines, "\n")
}
