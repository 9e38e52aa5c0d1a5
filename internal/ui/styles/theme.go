package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the color scheme for the application.
type Theme struct {
	Name string

	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary lipgloss.Color
	Accent  lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border    lipgloss.Color
	Selection lipgloss.Color
}

// TokyoNight is the default color theme.
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary: lipgloss.Color("#7aa2f7"),
	Accent:  lipgloss.Color("#bb9af7"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),

	Border:    lipgloss.Color("#3b4261"),
	Selection: lipgloss.Color("#283457"),
}

// Styles holds the pre-built lipgloss styles used by the views.
type Styles struct {
	Title      lipgloss.Style
	Header     lipgloss.Style
	Item       lipgloss.Style
	ItemDone   lipgloss.Style
	Selected   lipgloss.Style
	DueSoon    lipgloss.Style
	Overdue    lipgloss.Style
	TagPill    lipgloss.Style
	StatusBar  lipgloss.Style
	StatusWarn lipgloss.Style
	Help       lipgloss.Style
}

// New builds the style set for a theme.
func New(t Theme) *Styles {
	return &Styles{
		Title:      lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Header:     lipgloss.NewStyle().Foreground(t.Foreground).Bold(true),
		Item:       lipgloss.NewStyle().Foreground(t.Foreground),
		ItemDone:   lipgloss.NewStyle().Foreground(t.ForegroundDim).Strikethrough(true),
		Selected:   lipgloss.NewStyle().Background(t.Selection).Foreground(t.Foreground),
		DueSoon:    lipgloss.NewStyle().Foreground(t.Warning),
		Overdue:    lipgloss.NewStyle().Foreground(t.Error),
		TagPill:    lipgloss.NewStyle().Foreground(t.Accent),
		StatusBar:  lipgloss.NewStyle().Foreground(t.ForegroundDim),
		StatusWarn: lipgloss.NewStyle().Foreground(t.Warning),
		Help:       lipgloss.NewStyle().Foreground(t.ForegroundDim),
	}
}
