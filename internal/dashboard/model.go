package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pvdash/internal/telemetry"
)

// Width breakpoints for the card grid.
const (
	BreakpointTwoColumn = 100
	HeightMinimal       = 20
)

// Series is a copy of one panel's history, safe to hand to another goroutine.
type Series struct {
	ID      string
	Label   string
	Color   lipgloss.Color
	Samples []float64
}

// Exporter writes the given series somewhere and returns what it wrote.
type Exporter func(series []Series) ([]string, error)

// Model is the Bubble Tea model for the live dashboard.
//
// Scheduling follows the engine's cadence: a cycle's completion arms one
// tick, the tick starts the next cycle. seq numbers the armed tick so a
// manual refresh can supersede it without two timers ever driving cycles.
type Model struct {
	ctx    context.Context
	engine *Engine
	now    func() time.Time

	inFlight     bool
	cycleStarted time.Time
	seq          int
	nextAt       time.Time

	width    int
	height   int
	selected int
	viewMode ViewMode
	showHelp bool
	quitting bool

	exporter Exporter
	notice   string

	spinner        spinner.Model
	detailViewport viewport.Model
	viewportReady  bool
}

// tickMsg fires when the delay armed after a cycle elapses.
type tickMsg struct{ seq int }

// cycleResultMsg carries a finished fetch back to the update loop.
type cycleResultMsg struct {
	started time.Time
	snap    *telemetry.Snapshot
	err     error
}

// exportResultMsg reports the outcome of an export.
type exportResultMsg struct {
	paths []string
	err   error
}

// NewModel creates a dashboard model driving engine. ctx bounds every fetch.
func NewModel(ctx context.Context, engine *Engine) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"◐", "◓", "◑", "◒"},
		FPS:    time.Second / 8,
	}
	sp.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	// The first cycle is in flight from the start; Init issues its fetch.
	return Model{
		ctx:          ctx,
		engine:       engine,
		now:          time.Now,
		inFlight:     true,
		cycleStarted: time.Now(),
		spinner:      sp,
	}
}

// SetExporter enables the export key.
func (m *Model) SetExporter(e Exporter) {
	m.exporter = e
}

// Init starts the first cycle immediately.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(m.cycleStarted), m.spinner.Tick)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}
		if m.viewMode == ViewDetail && m.viewportReady {
			var cmd tea.Cmd
			m.detailViewport, cmd = m.detailViewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		footerHeight := 2
		viewportHeight := max(m.height-headerHeight-footerHeight, 1)
		if !m.viewportReady {
			m.detailViewport = viewport.New(m.width, viewportHeight)
			m.detailViewport.YPosition = headerHeight
			m.viewportReady = true
		} else {
			m.detailViewport.Width = m.width
			m.detailViewport.Height = viewportHeight
		}
		if m.viewMode == ViewDetail {
			m.updateDetailViewportContent()
		}

	case tickMsg:
		if msg.seq != m.seq || m.inFlight {
			// Superseded by a manual refresh.
			return m, nil
		}
		return m, m.startCycle()

	case cycleResultMsg:
		return m, m.completeCycle(msg)

	case exportResultMsg:
		m.notice = exportNotice(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// startCycle marks a cycle in flight and returns the command that fetches.
func (m *Model) startCycle() tea.Cmd {
	if m.inFlight {
		return nil
	}
	m.inFlight = true
	m.cycleStarted = m.now()
	return m.fetchCmd(m.cycleStarted)
}

// fetchCmd fetches one cycle's payloads. Only engine.Fetch runs off the
// update goroutine; it touches no panel state.
func (m Model) fetchCmd(started time.Time) tea.Cmd {
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		snap, err := engine.Fetch(ctx)
		return cycleResultMsg{started: started, snap: snap, err: err}
	}
}

// completeCycle applies a fetch result and arms the next tick.
func (m *Model) completeCycle(msg cycleResultMsg) tea.Cmd {
	o := m.engine.Complete(msg.started, msg.snap, msg.err)
	m.inFlight = false
	m.seq++
	m.nextAt = o.Finished.Add(o.NextDelay)

	if m.viewMode == ViewDetail {
		m.updateDetailViewportContent()
	}

	seq := m.seq
	return tea.Tick(o.NextDelay, func(time.Time) tea.Msg {
		return tickMsg{seq: seq}
	})
}

// refresh starts a cycle now unless one is already running. The pending
// tick is invalidated so the cadence restarts from this cycle.
func (m *Model) refresh() tea.Cmd {
	if m.inFlight {
		return nil
	}
	m.seq++
	return m.startCycle()
}

// exportCmd snapshots every panel's history and exports it off the update goroutine.
func (m *Model) exportCmd() tea.Cmd {
	if m.exporter == nil {
		m.notice = "export is not configured"
		return nil
	}
	series := m.engine.Series()
	export := m.exporter
	m.notice = "exporting..."
	return func() tea.Msg {
		paths, err := export(series)
		return exportResultMsg{paths: paths, err: err}
	}
}

// InFlight reports whether a cycle is running.
func (m Model) InFlight() bool {
	return m.inFlight
}

// Status is the current aggregate status.
func (m Model) Status() Status {
	return m.engine.Status()
}

// SelectedPanel returns the selected panel, or nil.
func (m Model) SelectedPanel() *Panel {
	panels := m.engine.Panels()
	if m.selected >= 0 && m.selected < len(panels) {
		return panels[m.selected]
	}
	return nil
}

// NextIn is the time left until the next scheduled cycle.
func (m Model) NextIn() time.Duration {
	if m.inFlight || m.nextAt.IsZero() {
		return 0
	}
	return max(m.nextAt.Sub(m.now()), 0)
}

// SinceUpdate is how long ago the last cycle completed.
func (m Model) SinceUpdate() time.Duration {
	last := m.engine.Last()
	if last == nil {
		return 0
	}
	return m.now().Sub(last.Finished)
}

// ShowFooter returns true if the terminal is tall enough to show the footer.
func (m Model) ShowFooter() bool {
	return m.height == 0 || m.height >= HeightMinimal
}
