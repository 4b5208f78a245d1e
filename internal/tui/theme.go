package tui

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette — true-color hex values
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
)

// Semantic aliases.
const (
	colorAccent  = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(colorAccent)
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	statusStyle   = lipgloss.NewStyle().Foreground(colorSubtext0)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	successStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	hintStyle     = lipgloss.NewStyle().Foreground(colorOverlay1)
	selectedStyle = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	paidStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	dueStyle      = lipgloss.NewStyle().Foreground(colorPeach)
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface1).Padding(0, 1)
	fieldStyle    = lipgloss.NewStyle().Foreground(colorText)
	activeField   = lipgloss.NewStyle().Foreground(colorFocus).Background(colorSurface0)
)
