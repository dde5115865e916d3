package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Output styles. lipgloss drops colors when stdout is not a terminal.
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	attrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// levelStyle returns the style a diagnostics level is printed in.
func levelStyle(level string) lipgloss.Style {
	switch strings.ToLower(level) {
	case "trace", "debug":
		return mutedStyle
	case "information", "info":
		return headerStyle.UnsetBold()
	case "warning", "warn":
		return warnStyle
	case "error", "critical":
		return errorStyle
	default:
		return lipgloss.NewStyle()
	}
}

// field renders a padded "label value" line.
func field(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-16s", label)) + " " + value
}
