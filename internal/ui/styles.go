package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors. The tool keeps the phosphor-green bench aesthetic.
	Primary   = lipgloss.Color("46")  // Bright green
	Secondary = lipgloss.Color("42")  // Sea green
	Success   = lipgloss.Color("40")  // Green
	Warning   = lipgloss.Color("214") // Orange
	Error     = lipgloss.Color("196") // Red
	Subtle    = lipgloss.Color("241") // Gray
	Surface   = lipgloss.Color("236") // Dark gray
	Text      = lipgloss.Color("252") // Light gray
	TextDim   = lipgloss.Color("245") // Dimmer text

	// Sidebar styles
	SidebarStyle = lipgloss.NewStyle().
			Width(20).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderRight(true).
			BorderTop(false).
			BorderBottom(false).
			BorderLeft(false).
			BorderForeground(Surface).
			Padding(1, 1)

	SidebarItemStyle = lipgloss.NewStyle().
				Foreground(TextDim).
				PaddingLeft(1)

	SidebarActiveStyle = lipgloss.NewStyle().
				Foreground(Primary).
				Bold(true).
				PaddingLeft(1)

	// Content area
	ContentStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextDim).
			Background(Surface).
			Padding(0, 1)

	StatusBarKeyStyle = lipgloss.NewStyle().
				Foreground(Text).
				Background(Surface).
				Bold(true)

	// Page title
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			MarginBottom(1)

	// General
	BoldStyle    = lipgloss.NewStyle().Bold(true)
	DimStyle     = lipgloss.NewStyle().Foreground(TextDim)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
)
