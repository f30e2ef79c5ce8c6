package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines a color scheme for the viewer
type Theme struct {
	Name          string
	PrimaryAccent string // Title, ON indicator
	ValueText     string // Stat values
	AlertText     string // Blocked keys, errors, OFF indicator
	LabelText     string // Labels, help text
	LogText       string // Keystroke log
	Border        string // Box borders
}

// Available themes
var Themes = map[string]Theme{
	"default": {
		Name:          "Default",
		PrimaryAccent: "#C73B3C", // Burgundy red
		ValueText:     "#5fafaf", // Teal/cyan
		AlertText:     "#ff5f5f", // Bright red
		LabelText:     "#6c6c6c", // Gray
		LogText:       "#8a8a8a", // Light gray
		Border:        "#5f87d7", // Blue
	},
	"gruvbox": {
		Name:          "Gruvbox",
		PrimaryAccent: "#d65d0e", // Gruvbox orange
		ValueText:     "#98971a", // Gruvbox green
		AlertText:     "#cc241d", // Gruvbox red
		LabelText:     "#928374", // Gruvbox gray
		LogText:       "#a89984", // Gruvbox light gray
		Border:        "#458588", // Gruvbox aqua
	},
	"tokyonight": {
		Name:          "Tokyo Night",
		PrimaryAccent: "#7aa2f7", // Tokyo Night blue
		ValueText:     "#9ece6a", // Tokyo Night green
		AlertText:     "#f7768e", // Tokyo Night red
		LabelText:     "#565f89", // Tokyo Night comment
		LogText:       "#9aa5ce", // Tokyo Night foreground dim
		Border:        "#7dcfff", // Tokyo Night cyan
	},
	"catppuccin": {
		Name:          "Catppuccin",
		PrimaryAccent: "#cba6f7", // Catppuccin Mauve
		ValueText:     "#a6e3a1", // Catppuccin Green
		AlertText:     "#f38ba8", // Catppuccin Red
		LabelText:     "#6c7086", // Catppuccin Overlay0
		LogText:       "#9399b2", // Catppuccin Overlay2
		Border:        "#89b4fa", // Catppuccin Blue
	},
	"dracula": {
		Name:          "Dracula",
		PrimaryAccent: "#bd93f9", // Dracula purple
		ValueText:     "#50fa7b", // Dracula green
		AlertText:     "#ff5555", // Dracula red
		LabelText:     "#6272a4", // Dracula comment
		LogText:       "#f8f8f2", // Dracula foreground
		Border:        "#8be9fd", // Dracula cyan
	},
}

// ThemeNames returns the list of available theme names
var ThemeNames = []string{"default", "gruvbox", "tokyonight", "catppuccin", "dracula"}

// CurrentTheme holds the active theme
var CurrentTheme = Themes["default"]

// SetTheme updates the current theme and regenerates all styles
func SetTheme(name string) error {
	theme, ok := Themes[name]
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", name, ThemeNames)
	}
	CurrentTheme = theme
	regenerateStyles()
	return nil
}

// regenerateStyles updates all lipgloss styles with current theme colors
func regenerateStyles() {
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(CurrentTheme.PrimaryAccent)).
		MarginBottom(1)

	statLabelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.LabelText))

	statValueStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(CurrentTheme.ValueText))

	boxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(CurrentTheme.Border)).
		Padding(0, 2)

	logStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.LogText))

	blockedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.AlertText)).
		Strikethrough(true)

	alertStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.AlertText))

	statusOnStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(CurrentTheme.PrimaryAccent))

	statusOffStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(CurrentTheme.AlertText))

	helpStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.LabelText)).
		MarginTop(1)
}

// Initialize styles with default theme
func init() {
	regenerateStyles()
}
