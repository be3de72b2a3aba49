package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the network picker
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, selection
	SuccessColor = lipgloss.Color("#43BF6D") // Green - connected, strong signal
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors
	WarningColor = lipgloss.Color("#FFA500") // Orange - weak signal
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

var (
	// TitleStyle is for the picker header
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(PrimaryColor).
			Bold(true).
			Padding(0, 1)

	// SelectedStyle highlights the focused network
	SelectedStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	// NormalStyle is for unfocused list entries
	NormalStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// DimStyle is for secondary line content (auth mode, channel)
	DimStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// StatusStyle is for transient status lines
	StatusStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// SuccessStyle is for the connected message
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	// ErrorStyle is for failure messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// PromptStyle frames the password prompt
	PromptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(1, 2)

	// HelpStyle is for the key hint line
	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor)
)

// signalStyle picks a color for an RSSI reading.
func signalStyle(rssi int) lipgloss.Style {
	switch {
	case rssi >= -60:
		return lipgloss.NewStyle().Foreground(SuccessColor)
	case rssi >= -75:
		return lipgloss.NewStyle().Foreground(WarningColor)
	default:
		return lipgloss.NewStyle().Foreground(ErrorColor)
	}
}
