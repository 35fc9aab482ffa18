package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette for light and dark terminals.
var (
	accent  = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"}
	gold    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	danger  = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	subtle  = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	surface = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#1F2937"}
	ink     = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"}
)

var (
	styleMutedText = lipgloss.NewStyle().Foreground(subtle)

	styleHeader    = lipgloss.NewStyle().Bold(true).Foreground(ink).Background(accent).Padding(0, 1)
	styleTab       = styleMutedText.Padding(0, 2)
	styleTabActive = lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true).Padding(0, 2)
	styleHelp      = styleMutedText.Padding(0, 1)
	styleError     = lipgloss.NewStyle().Bold(true).Foreground(danger)

	styleTableHeader      = styleHeader
	styleTableRow         = lipgloss.NewStyle().Padding(0, 1)
	styleTableRowSelected = styleTableRow.Foreground(ink).Background(surface)

	styleBox   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(surface).Padding(1, 2)
	styleLabel = styleMutedText.Width(16)
	styleValue = lipgloss.NewStyle().Foreground(ink)

	stylePositive = lipgloss.NewStyle().Foreground(accent)
	styleWarning  = lipgloss.NewStyle().Foreground(gold)
)

func styleMuted() lipgloss.Style { return styleMutedText }

// ProgressBar draws percent (clamped to 0..100) as a bar of width cells.
func ProgressBar(percent float64, width int) string {
	percent = min(max(percent, 0), 100)
	filled := int(float64(width)*percent/100 + 0.5)
	return stylePositive.Render(strings.Repeat("■", filled)) +
		styleMutedText.Render(strings.Repeat("·", width-filled))
}
