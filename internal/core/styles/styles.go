// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"sort"

	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

// themes holds the built-in named palettes.
var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    lipgloss.Color("#7aa2f7"),
		Secondary:  lipgloss.Color("#7dcfff"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#3b4261"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
	},
	"gruvbox": {
		Primary:    lipgloss.Color("#83a598"),
		Secondary:  lipgloss.Color("#8ec07c"),
		Foreground: lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#665c54"),
		Background: lipgloss.Color("#282828"),
		Surface:    lipgloss.Color("#3c3836"),
		Success:    lipgloss.Color("#b8bb26"),
		Warning:    lipgloss.Color("#fabd2f"),
		Error:      lipgloss.Color("#fb4934"),
	},
	"catppuccin": {
		Primary:    lipgloss.Color("#89b4fa"), // Blue
		Secondary:  lipgloss.Color("#94e2d5"), // Teal
		Foreground: lipgloss.Color("#cdd6f4"), // Text
		Muted:      lipgloss.Color("#6c7086"), // Overlay0
		Background: lipgloss.Color("#1e1e2e"), // Base
		Surface:    lipgloss.Color("#313244"), // Surface0
		Success:    lipgloss.Color("#a6e3a1"), // Green
		Warning:    lipgloss.Color("#f9e2af"), // Yellow
		Error:      lipgloss.Color("#f38ba8"), // Red
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases for convenience.
var (
	ColorPrimary    lipgloss.Color
	ColorSecondary  lipgloss.Color
	ColorForeground lipgloss.Color
	ColorMuted      lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
	ColorSuccess    lipgloss.Color
	ColorWarning    lipgloss.Color
	ColorError      lipgloss.Color
)

// Style exports.
var (
	// CLI styles.
	HeaderStyle  lipgloss.Style
	LabelStyle   lipgloss.Style
	ValueStyle   lipgloss.Style
	DividerStyle lipgloss.Style
	PassStyle    lipgloss.Style
	WarnStyle    lipgloss.Style
	FailStyle    lipgloss.Style

	// TUI shared styles.
	TitleStyle         lipgloss.Style
	SelectedStyle      lipgloss.Style
	MutedStyle         lipgloss.Style
	StatusBarStyle     lipgloss.Style
	TableHeaderStyle   lipgloss.Style
	TableSelectedStyle lipgloss.Style
)

// SetTheme activates a palette and rebuilds all exported styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	HeaderStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	LabelStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	ValueStyle = lipgloss.NewStyle().Foreground(ColorForeground)
	DividerStyle = lipgloss.NewStyle().Foreground(ColorSurface)
	PassStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarnStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	FailStyle = lipgloss.NewStyle().Foreground(ColorError)

	TitleStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Padding(0, 1)
	SelectedStyle = lipgloss.NewStyle().Foreground(ColorForeground).Background(ColorSurface)
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	StatusBarStyle = lipgloss.NewStyle().Foreground(ColorMuted).Padding(0, 1)
	TableHeaderStyle = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	TableSelectedStyle = lipgloss.NewStyle().Foreground(ColorForeground).Background(ColorSurface).Bold(true)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

// Dim blends a color halfway toward the active background, for
// de-emphasized rows. Falls back to the muted color on parse failure.
func Dim(c lipgloss.Color) lipgloss.Color {
	fg, err := colorful.Hex(string(c))
	if err != nil {
		return ColorMuted
	}
	bg, err := colorful.Hex(string(ColorBackground))
	if err != nil {
		return ColorMuted
	}
	return lipgloss.Color(fg.BlendLab(bg, 0.5).Hex())
}

func colorHexPtr(c lipgloss.Color) *string {
	if c == "" {
		return nil
	}
	cc, err := colorful.Hex(string(c))
	if err != nil {
		return nil
	}
	hex := cc.Hex()
	return &hex
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := colorHexPtr(ColorForeground)
	primary := colorHexPtr(ColorPrimary)
	secondary := colorHexPtr(ColorSecondary)
	muted := colorHexPtr(ColorMuted)
	surface := colorHexPtr(ColorSurface)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = surface
	cfg.H2.Color = primary
	cfg.H3.Color = primary
	cfg.H4.Color = primary
	cfg.H5.Color = primary
	cfg.H6.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	cfg.Table.Color = fg

	return cfg
}
