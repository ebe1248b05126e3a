package dashboard

import tea "github.com/charmbracelet/bubbletea"

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyRefresh     = "r"
	KeyExport      = "e"
	KeySelectPrev  = "up"
	KeySelectPrevK = "k"
	KeySelectNext  = "down"
	KeySelectNextJ = "j"
	KeyExpand      = "enter"
	KeyCollapse    = "esc"
	KeyToggleHelp  = "?"
)

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// Help toggle takes priority
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		return true, m.refresh()

	case KeyExport:
		return true, m.exportCmd()

	case KeyExpand:
		if m.viewMode == ViewList && m.SelectedPanel() != nil {
			m.viewMode = ViewDetail
			m.updateDetailViewportContent()
		}
		return true, nil

	case KeyCollapse:
		m.viewMode = ViewList
		return true, nil
	}

	// Up/down scroll the payload viewport in detail view.
	if m.viewMode == ViewDetail {
		return false, nil
	}

	switch key {
	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
		}
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < len(m.engine.Panels())-1 {
			m.selected++
		}
		return true, nil
	}

	return false, nil
}
