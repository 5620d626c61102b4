package tui

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	ColorTitle  = lipgloss.Color("86")
	ColorLabel  = lipgloss.Color("245")
	ColorMuted  = lipgloss.Color("241")
	ColorError  = lipgloss.Color("196")
	ColorStatus = lipgloss.Color("236")
)

// Styles.
var (
	TitleStyle   = lipgloss.NewStyle().Foreground(ColorTitle).Bold(true)
	StatusStyle  = lipgloss.NewStyle().Background(ColorStatus).Foreground(ColorLabel)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	HelpKeyStyle = lipgloss.NewStyle().Foreground(ColorLabel).Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
)
