package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolPending  = "○" // disconnected
	SymbolProgress = "◐" // connecting
	SymbolComplete = "●" // connected
	SymbolSkipped  = "⊘" // disconnecting
	SymbolMissing  = "--"
)
