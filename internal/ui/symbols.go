package ui

// Unicode symbols for run status lines.
const (
	SymbolSuccess = "✓" // Task completed successfully
	SymbolFail    = "✗" // Task failed
	SymbolPending = "○" // Task not yet started
	SymbolSkipped = "⊘" // Task skipped by context rule or completion state
)
