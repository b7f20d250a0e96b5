package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/orbfield/internal/frame"
	"github.com/san-kum/orbfield/internal/particle"
	"github.com/san-kum/orbfield/internal/renderer"
	"github.com/san-kum/orbfield/internal/surface"
)

const (
	defaultCols     = 80
	defaultRows     = 24
	footerRows      = 2
	graphRows       = 6
	historyCapacity = 240

	// A terminal cell stands in for an 8x16 pixel block, so an 80 column
	// terminal is a 640 unit wide viewport.
	CellWidth  = 8.0
	CellHeight = 16.0
)

var (
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type FrameMsg time.Time

// Options configures the live view.
type Options struct {
	Renderer  renderer.Options
	RefreshHz int
	Theme     string
	Seed      int64
	Rand      particle.Source
}

// Model is the Bubble Tea model for the live particle view.
type Model struct {
	win      *renderer.Window
	canvas   *surface.Braille
	pump     *frame.Pump
	r        *renderer.Renderer
	hud      *hud
	refresh  time.Duration
	theme    Theme
	cols     int
	rows     int
	showHelp bool
	graph    bool
	seed     int64
	mounted  bool
	mountErr error
}

type hud struct {
	last    renderer.FrameStats
	prev    time.Time
	fps     float64
	history []float64
}

func (h *hud) OnFrame(s renderer.FrameStats) {
	if !h.prev.IsZero() {
		if dt := s.Time.Sub(h.prev).Seconds(); dt > 0 {
			h.fps = 0.9*h.fps + 0.1/dt
		}
	}
	h.prev = s.Time
	h.last = s
	h.history = append(h.history, float64(s.Links))
	if len(h.history) > historyCapacity {
		h.history = h.history[len(h.history)-historyCapacity:]
	}
}

// NewModel builds the view. The renderer is mounted on the first window
// size message, so the particle count follows the real terminal width.
func NewModel(opts Options) Model {
	hz := opts.RefreshHz
	if hz <= 0 {
		hz = 60
	}
	m := Model{
		canvas:  surface.NewBraille(CellWidth, CellHeight),
		pump:    frame.NewPump(),
		hud:     &hud{},
		refresh: time.Second / time.Duration(hz),
		theme:   GetTheme(opts.Theme),
		cols:    defaultCols,
		rows:    defaultRows - footerRows,
		seed:    opts.Seed,
	}
	m.win = renderer.NewWindow(m.viewport())
	m.r = renderer.New(surface.Static(m.canvas), m.pump, opts.Rand, opts.Renderer)
	m.r.AddObserver(m.hud)
	return m
}

func (m *Model) mount() {
	m.mounted = true
	m.mountErr = m.r.Start(m.win)
}

func (m Model) viewport() (float64, float64) {
	return float64(m.cols) * CellWidth, float64(m.rows) * CellHeight
}

func (m Model) nextFrame() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return FrameMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.nextFrame()
}

// Update handles input, resizes and repaint messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// no mount after quitting
			m.mounted = true
			m.r.Stop()
			return m, tea.Quit
		case "t":
			m.theme = NextTheme(m.theme)
		case "g":
			m.graph = !m.graph
			m.resize(m.cols, m.rows+m.reserved(!m.graph))
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if !m.mounted {
			m.mount()
			if m.mountErr != nil {
				return m, tea.Quit
			}
		}
	case FrameMsg:
		if !m.mounted {
			return m, m.nextFrame()
		}
		if m.r.State() != renderer.Running {
			return m, nil
		}
		m.pump.Frame(time.Time(msg))
		return m, m.nextFrame()
	}
	return m, nil
}

func (m Model) reserved(graph bool) int {
	if graph {
		return footerRows + graphRows
	}
	return footerRows
}

func (m *Model) resize(width, height int) {
	rows := height - m.reserved(m.graph)
	if rows < 1 {
		rows = 1
	}
	if width < 1 {
		width = 1
	}
	m.cols, m.rows = width, rows
	m.win.Resize(m.viewport())
}

func (m Model) View() string {
	if m.mountErr != nil {
		return fmt.Sprintf("orbfield: %v\n", m.mountErr)
	}

	orb := lipgloss.NewStyle().Foreground(m.theme.Orb)
	link := lipgloss.NewStyle().Foreground(m.theme.Link)
	body := m.canvas.Render(func(l surface.Layer, s string) string {
		switch l {
		case surface.LayerOrb:
			return orb.Render(s)
		case surface.LayerLink:
			return link.Render(s)
		}
		return s
	})

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")

	if m.graph && len(m.hud.history) > 1 {
		width := m.cols - 10
		if width < 10 {
			width = 10
		}
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Accent).Render(
			asciigraph.Plot(m.hud.history, asciigraph.Height(graphRows-2), asciigraph.Width(width), asciigraph.Caption("links"))))
		b.WriteString("\n")
	}

	text := lipgloss.NewStyle().Foreground(m.theme.Text)
	s := m.hud.last
	b.WriteString(labelStyle.Render("fps ") + text.Render(fmt.Sprintf("%-6.1f", m.hud.fps)))
	b.WriteString(labelStyle.Render("orbs ") + text.Render(fmt.Sprintf("%-4d", s.Particles)))
	b.WriteString(labelStyle.Render("links ") + text.Render(fmt.Sprintf("%-4d", s.Links)))
	b.WriteString(labelStyle.Render("frame ") + text.Render(fmt.Sprintf("%-8d", s.Frame)))
	b.WriteString(labelStyle.Render("theme ") + text.Render(m.theme.Name))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(helpStyle.Render("t theme  g graph  ? help  q quit"))
	} else {
		b.WriteString(helpStyle.Render(fmt.Sprintf("seed %d  ? help", m.seed)))
	}
	return b.String()
}

// Renderer exposes the mounted renderer.
func (m Model) Renderer() *renderer.Renderer { return m.r }

// RunLive runs the live view until the user quits.
func RunLive(opts Options) error {
	m := NewModel(opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if fm, ok := final.(Model); ok {
		fm.r.Stop()
		if fm.mountErr != nil {
			return fm.mountErr
		}
	}
	return err
}
