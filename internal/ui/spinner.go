package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerState represents the current state of a spinner.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerInProgress
	SpinnerSuccess
	SpinnerFailed
)

// Same quarter-circle frames as the live dashboard.
var spinnerFrames = []string{"◐", "◓", "◑", "◒"}

// Spinner displays an animated status indicator with a label while a
// one-shot command waits on the upstreams.
type Spinner struct {
	mu           sync.Mutex
	label        string
	state        SpinnerState
	frame        int
	startTime    time.Time
	stopChan     chan struct{}
	doneChan     chan struct{}
	w            io.Writer
	running      bool
	lastRendered string
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(label string, w io.Writer) *Spinner {
	return &Spinner{
		label: label,
		state: SpinnerPending,
		w:     w,
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.state = SpinnerInProgress
	s.startTime = time.Now()
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	s.mu.Unlock()

	s.render()

	go s.animate()
}

// Stop halts the spinner animation without changing state.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	<-s.doneChan
}

// Success stops the spinner and marks it as successful.
func (s *Spinner) Success() {
	s.finish(SpinnerSuccess, "")
}

// Fail stops the spinner and marks it as failed, printing detail after the label.
func (s *Spinner) Fail(detail string) {
	s.finish(SpinnerFailed, detail)
}

// State returns the current spinner state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Spinner) finish(state SpinnerState, detail string) {
	s.Stop()
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.renderFinal(detail)
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()
	defer close(s.doneChan)

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.mu.Unlock()
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	style := lipgloss.NewStyle().Foreground(ColorAccent)
	line := fmt.Sprintf("%s %s...", style.Render(spinnerFrames[s.frame]), s.label)
	s.clearLocked()
	fmt.Fprint(s.w, "\r"+line)
	s.lastRendered = line
}

func (s *Spinner) renderFinal(detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol := SymbolPending
	style := lipgloss.NewStyle().Foreground(ColorMuted)
	switch s.state {
	case SpinnerSuccess:
		symbol = SymbolSuccess
		style = lipgloss.NewStyle().Foreground(ColorSuccess)
	case SpinnerFailed:
		symbol = SymbolFail
		style = lipgloss.NewStyle().Foreground(ColorError)
	}

	timing := lipgloss.NewStyle().Foreground(ColorMuted).Render(formatDuration(time.Since(s.startTime)))
	s.clearLocked()

	line := style.Render(symbol) + " " + s.label + " " + timing
	if detail != "" {
		line += "\n  " + lipgloss.NewStyle().Foreground(ColorError).Render(detail)
	}
	fmt.Fprintln(s.w, line)
}

// clearLocked blanks the previously rendered line.
func (s *Spinner) clearLocked() {
	if s.lastRendered == "" {
		return
	}
	n := lipgloss.Width(s.lastRendered)
	fmt.Fprint(s.w, "\r"+strings.Repeat(" ", n)+"\r")
	s.lastRendered = ""
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
