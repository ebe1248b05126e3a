package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Cycle completed
	SymbolFail     = "✗" // Cycle failed
	SymbolPending  = "○" // No data yet
	SymbolProgress = "◐" // Polling
	SymbolComplete = "●" // Vehicle reporting
	SymbolSkipped  = "⊘" // Vehicle idle
)
