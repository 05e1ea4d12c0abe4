package ui

import "github.com/charmbracelet/lipgloss"

// ANSI palette; plain color codes keep output legible on both light and
// dark terminals.

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Shared styles for run output.
var (
	HeaderStyle = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarning)
)
