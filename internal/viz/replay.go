package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/compassim/internal/dynamic"
)

const (
	dialWidth    = 30
	dialHeight   = 15
	graphSamples = 300
	frameRate    = 60
)

type TickMsg time.Time

// Replay plays a stored run back on a compass dial. Angles are shown in
// degrees whatever unit the run was stored in.
type Replay struct {
	name    string
	times   []float64
	angles  []float64
	omegas  []float64
	limit   float64
	tho     *float64
	head    int
	speed   int
	running bool
	dial    *Dial
}

func NewReplay(run *dynamic.Run, limitDeg float64, tho *float64) Replay {
	angles := run.Angles()
	if run.Unit() == dynamic.Radians {
		for i := range angles {
			angles[i] *= 180 / math.Pi
		}
	}
	return Replay{
		name:    run.Name(),
		times:   run.Times(),
		angles:  angles,
		omegas:  run.AngularVelocity(),
		limit:   limitDeg,
		tho:     tho,
		speed:   2,
		running: true,
		dial:    NewDial(dialWidth, dialHeight),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Replay) Init() tea.Cmd {
	return tick()
}

func (m Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.head = 0
			m.running = true
		case "[":
			m.running = false
			m.seek(-1)
		case "]":
			m.running = false
			m.seek(1)
		case "+", "=":
			m.speed = min(m.speed*2, 64)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "t":
			nextTheme()
		}
	case TickMsg:
		if m.running {
			m.seek(m.speed)
			if m.head == len(m.times)-1 {
				m.running = false
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Replay) seek(d int) {
	m.head = max(0, min(m.head+d, len(m.times)-1))
}

// Head is the index of the sample on screen.
func (m Replay) Head() int { return m.head }

func (m Replay) Running() bool { return m.running }

func (m Replay) View() string {
	if len(m.times) == 0 {
		return "empty run\n"
	}
	angle := m.angles[m.head]
	dial := dialStyle().Render(m.dial.Draw(angle, m.limit))

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.name)) + "\n\n")
	status := "PLAYING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(fmt.Sprintf("%s  x%d\n\n", status, m.speed))
	s.WriteString(row("time", fmt.Sprintf("%.2f s", m.times[m.head])))
	s.WriteString(row("angle", fmt.Sprintf("%+.2f°", angle)))
	s.WriteString(row("rate", fmt.Sprintf("%+.3f rad/s", m.omegas[m.head])))
	within := math.Abs(angle) <= m.limit
	s.WriteString(labelStyle().Render("band") + statusStyle(within).Render(fmt.Sprintf("±%g°", m.limit)) + "\n")
	s.WriteString(row("tho", optional(m.tho, "%.3f s")))

	from := max(0, m.head+1-graphSamples)
	if m.head-from > 1 {
		s.WriteString("\n" + asciigraph.Plot(m.angles[from:m.head+1],
			asciigraph.Height(6),
			asciigraph.Width(40),
			asciigraph.Caption("angle (deg)"),
		) + "\n")
	}
	s.WriteString(hintStyle().Render("SP:Pause [ ]:Step +/-:Speed R:Restart T:Theme Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, dial, panelStyle().Render(s.String()))
}
