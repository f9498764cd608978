// Package styles holds the lipgloss styles shared by every LexAI screen.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#818CF8") // Indigo (indigo-400)
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red (red-400)
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray (gray-500)
	BlueColor      = lipgloss.Color("#60A5FA") // Blue

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)
	Surface   = lipgloss.NewStyle().Background(SurfaceColor)
	Text      = lipgloss.NewStyle().Foreground(TextColor)
	Bold      = lipgloss.NewStyle().Bold(true)

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	SectionTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor)

	// Tab styles, used for filters
	TabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			Background(PrimaryColor).
			Padding(0, 1)

	TabInactive = lipgloss.NewStyle().
			Foreground(MutedColor).
			Padding(0, 1)

	// Status badge styles
	StatusBadge = lipgloss.NewStyle().
			Padding(0, 1).
			MarginRight(1)

	// Content area
	ContentBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	ContentBoxSelected = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(PrimaryColor).
				Padding(0, 1)

	// Stat cards on the dashboard
	StatCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 2).
			Align(lipgloss.Center)

	StatValue = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	// Top bar
	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(BorderColor).
		MarginBottom(1)

	// Sidebar styles
	Sidebar = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(1, 1)

	SidebarFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(1, 1)

	SidebarItem = lipgloss.NewStyle().
			Padding(0, 1)

	SidebarItemActive = lipgloss.NewStyle().
				Bold(true).
				Foreground(TextColor).
				Background(PrimaryColor).
				Padding(0, 1)

	SidebarItemCursor = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Padding(0, 1)

	SidebarTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	SidebarUser = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor)

	// Chat bubbles
	MessageUser = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(lipgloss.Color("#3730A3")).
			Padding(0, 1)

	MessageAI = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SurfaceColor).
			Padding(0, 1)

	// Form fields
	FieldLabel = lipgloss.NewStyle().
			Foreground(MutedColor)

	FieldLabelFocused = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	Button = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(BorderColor).
		Padding(0, 2)

	ButtonFocused = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			Background(PrimaryColor).
			Padding(0, 2)

	ButtonDisabled = lipgloss.NewStyle().
			Foreground(MutedColor).
			Background(SurfaceColor).
			Padding(0, 2)

	// Error message
	ErrorMsg = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// Success message
	SuccessMsg = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	// Warning message
	WarningMsg = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	// Auth card
	AuthBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(1, 3)

	Logo = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)
)

// StatusColor returns the color for a case status.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "activo":
		return SecondaryColor
	case "cerrado":
		return MutedColor
	default:
		return BlueColor
	}
}

// StatusIcon returns an icon for a case status.
func StatusIcon(status string) string {
	switch status {
	case "activo":
		return "●"
	case "cerrado":
		return "✓"
	default:
		return "○"
	}
}

// PriorityColor returns the color for a case priority.
func PriorityColor(priority string) lipgloss.Color {
	switch priority {
	case "alta":
		return ErrorColor
	case "media":
		return WarningColor
	default:
		return MutedColor
	}
}

// RiskColor returns the color for a risk level found by document analysis.
func RiskColor(level string) lipgloss.Color {
	switch level {
	case "alto":
		return ErrorColor
	case "medio":
		return WarningColor
	case "bajo":
		return SecondaryColor
	default:
		return MutedColor
	}
}

// Badge renders a status badge for a case.
func Badge(status string) string {
	return StatusBadge.Foreground(StatusColor(status)).Render(StatusIcon(status) + " " + status)
}
