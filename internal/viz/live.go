package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ratetune/internal/autotune"
	"github.com/san-kum/ratetune/internal/dynamo"
	"github.com/san-kum/ratetune/internal/flight"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(8)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	satStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives a tuning flight interactively: the simulation steps in
// wall-clock time while the view tracks gains, regimes and the FF history.
type Model struct {
	dyn        dynamo.System
	integrator dynamo.Integrator
	harness    *flight.Harness

	state    dynamo.State
	t        float64
	dt       float64
	duration float64
	speed    int

	running   bool
	done      bool
	ffHistory [autotune.AxisCount][]float64
}

func NewModel(dyn dynamo.System, integ dynamo.Integrator, harness *flight.Harness, dt, duration float64) Model {
	m := Model{
		dyn:        dyn,
		integrator: integ,
		harness:    harness,
		state:      dynamo.State{0, 0, 0},
		dt:         dt,
		duration:   duration,
		speed:      8,
		running:    true,
	}
	for axis := range m.ffHistory {
		m.ffHistory[axis] = make([]float64, 0, historyCapacity)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			if m.speed < 64 {
				m.speed *= 2
			}
		case "-", "_":
			if m.speed > 1 {
				m.speed /= 2
			}
		}
	case TickMsg:
		if m.running && !m.done {
			for i := 0; i < m.speed; i++ {
				m.step()
				if m.done {
					break
				}
			}
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) step() {
	if m.t >= m.duration {
		m.done = true
		return
	}

	u := m.harness.Compute(m.state, m.t)
	m.harness.OnStep(m.state, u, m.t)

	next := m.integrator.Step(m.dyn, m.state, u, m.t, m.dt)
	if !next.IsValid() {
		m.done = true
		return
	}

	m.state = next
	m.t += m.dt

	for axis := autotune.AxisRoll; axis < autotune.AxisCount; axis++ {
		h := append(m.ffHistory[axis], m.harness.Bank().Gains(axis).FF)
		if len(h) > historyCapacity {
			h = h[1:]
		}
		m.ffHistory[axis] = h
	}
}

func (m Model) View() string {
	var b strings.Builder

	status := idleStyle.Render("inactive")
	session := m.harness.Session()
	if session.Active() {
		status = activeStyle.Render("tuning")
	}
	if m.done {
		status = idleStyle.Render("finished")
	} else if !m.running {
		status = idleStyle.Render("paused")
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("ratetune  t=%.1fs/%.0fs  %s  x%d", m.t, m.duration, status, m.speed)))
	b.WriteString("\n")

	states := session.AxisStates()
	for axis := autotune.AxisRoll; axis < autotune.AxisCount; axis++ {
		g := m.harness.Bank().Gains(axis)
		achieved := 0.0
		if int(axis) < len(m.state) {
			achieved = m.state[axis]
		}

		line := labelStyle.Render(axis.String()) +
			valueStyle.Render(fmt.Sprintf("rate %7.1f  P %5.1f  I %5.1f  FF %6.1f", achieved, g.P, g.I, g.FF))
		if session.Active() {
			line += "  " + valueStyle.Render(states[axis].Regime.String())
			if states[axis].Saturated {
				line += "  " + satStyle.Render("SAT")
			}
		}
		b.WriteString(line + "\n")
	}

	if len(m.ffHistory[autotune.AxisRoll]) > 2 {
		graph := asciigraph.Plot(m.ffHistory[autotune.AxisRoll],
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("roll FF"))
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space pause  +/- speed  q quit"))
	b.WriteString("\n")

	return b.String()
}

// Run starts the interactive tuning view and blocks until it exits.
func Run(dyn dynamo.System, integ dynamo.Integrator, harness *flight.Harness, dt, duration float64) error {
	p := tea.NewProgram(NewModel(dyn, integ, harness, dt, duration), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
