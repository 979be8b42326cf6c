// Package ui provides consistent styling for the Flick CLI
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette, consistent across the application
var (
	ColorPrimary = lipgloss.Color("39")  // Bright blue
	ColorSuccess = lipgloss.Color("82")  // Green
	ColorWarning = lipgloss.Color("214") // Orange
	ColorError   = lipgloss.Color("196") // Red
	ColorInfo    = lipgloss.Color("86")  // Cyan
	ColorText    = lipgloss.Color("252") // Light gray
	ColorSubtle  = lipgloss.Color("241") // Medium gray
)

var (
	TextStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubheaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(1, 2)
)

// FormatAppHeader renders the standard two-part command header
func FormatAppHeader(title, subtitle string) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("FLICK " + title))
	if subtitle != "" {
		b.WriteString(" ")
		b.WriteString(SubtleStyle.Render(subtitle))
	}
	return b.String()
}

// FormatStatus renders a running/stopped indicator with a label
func FormatStatus(running bool, status string) string {
	if running {
		return SuccessStyle.Render("●") + " " + status
	}
	return ErrorStyle.Render("○") + " " + status
}

// FormatField renders a label/value pair for status boxes
func FormatField(label, value string) string {
	return SubheaderStyle.Render(label+": ") + TextStyle.Render(value)
}
