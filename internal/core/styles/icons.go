package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/spotcheck/internal/core/task"
)

// Status icons for task rows.
var (
	IconPending       = "○"
	IconCompleted     = "✓"
	IconAutoCompleted = "◎"
	IconIgnored       = "–"
	IconCancelled     = "✗"
	IconZone          = "▣"
)

// StatusIcon returns the icon for a task status.
func StatusIcon(s task.Status) string {
	switch s {
	case task.StatusPending:
		return IconPending
	case task.StatusCompleted:
		return IconCompleted
	case task.StatusAutoCompleted:
		return IconAutoCompleted
	case task.StatusIgnored:
		return IconIgnored
	case task.StatusCancelled:
		return IconCancelled
	default:
		return "?"
	}
}

// StatusStyle returns the style for a task status.
func StatusStyle(s task.Status) lipgloss.Style {
	switch s {
	case task.StatusPending:
		return WarnStyle
	case task.StatusCompleted, task.StatusAutoCompleted:
		return PassStyle
	case task.StatusIgnored, task.StatusCancelled:
		return MutedStyle
	default:
		return ValueStyle
	}
}
