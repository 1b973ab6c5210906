package render

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Amber     = lipgloss.Color("#D97706")
	DimGray   = lipgloss.Color("#6B7280")
	LightGray = lipgloss.Color("#9CA3AF")
	White     = lipgloss.Color("#F9FAFB")
	Green     = lipgloss.Color("#10B981")
	Red       = lipgloss.Color("#EF4444")
)

// Text styles
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	dimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	accentStyle = lipgloss.NewStyle().
			Foreground(Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(Red)

	successStyle = lipgloss.NewStyle().
			Foreground(Green)

	badgeStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Amber).
			Padding(0, 1)

	saleStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)
)
