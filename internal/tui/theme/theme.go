// Package theme defines the color themes of the subcal timeline.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color roles used by the timeline.
type Theme struct {
	Name          string
	Background    lipgloss.Color // app background
	Surface       lipgloss.Color // cards and panels
	SurfaceBright lipgloss.Color // cursor column
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // focused cards
	TextDim       lipgloss.Color // hints, empty cells
	TextMuted     lipgloss.Color // labels
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color
	AccentDim     lipgloss.Color // selected columns
	Today         lipgloss.Color
	Charge        lipgloss.Color // billing day markers
	Warning       lipgloss.Color
	Error         lipgloss.Color

	// Bars is the palette for subscriptions without a color of their own.
	Bars []lipgloss.Color
}

// BarColor picks the bar color for the i-th subscription row. A valid
// "#rrggbb" override wins over the palette.
func (t Theme) BarColor(i int, override string) lipgloss.Color {
	if isHexColor(override) {
		return lipgloss.Color(override)
	}
	if len(t.Bars) == 0 {
		return t.Accent
	}
	if i < 0 {
		i = -i
	}
	return t.Bars[i%len(t.Bars)]
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	return strings.Trim(strings.ToLower(s[1:]), "0123456789abcdef") == ""
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	AccentDim:     lipgloss.Color("#1A3533"),
	Today:         lipgloss.Color("#879A39"),
	Charge:        lipgloss.Color("#D0A215"),
	Warning:       lipgloss.Color("#DA702C"),
	Error:         lipgloss.Color("#D14D41"),
	Bars: []lipgloss.Color{
		"#4385BE", "#CE5D97", "#879A39", "#DA702C", "#8B7EC8", "#24837B",
	},
}

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Background:    lipgloss.Color("#1E1E2E"),
	Surface:       lipgloss.Color("#313244"),
	SurfaceBright: lipgloss.Color("#585B70"),
	Border:        lipgloss.Color("#585B70"),
	BorderAccent:  lipgloss.Color("#89B4FA"),
	TextDim:       lipgloss.Color("#6C7086"),
	TextMuted:     lipgloss.Color("#A6ADC8"),
	TextPrimary:   lipgloss.Color("#CDD6F4"),
	Accent:        lipgloss.Color("#89B4FA"),
	AccentBright:  lipgloss.Color("#B4D0FB"),
	AccentDim:     lipgloss.Color("#293147"),
	Today:         lipgloss.Color("#A6E3A1"),
	Charge:        lipgloss.Color("#F9E2AF"),
	Warning:       lipgloss.Color("#FAB387"),
	Error:         lipgloss.Color("#F38BA8"),
	Bars: []lipgloss.Color{
		"#89B4FA", "#F5C2E7", "#A6E3A1", "#FAB387", "#CBA6F7", "#94E2D5",
	},
}

// TokyoNight is a cool blue and purple theme.
var TokyoNight = Theme{
	Name:          "tokyo-night",
	Background:    lipgloss.Color("#1A1B26"),
	Surface:       lipgloss.Color("#24283B"),
	SurfaceBright: lipgloss.Color("#414868"),
	Border:        lipgloss.Color("#565F89"),
	BorderAccent:  lipgloss.Color("#7AA2F7"),
	TextDim:       lipgloss.Color("#565F89"),
	TextMuted:     lipgloss.Color("#A9B1D6"),
	TextPrimary:   lipgloss.Color("#C0CAF5"),
	Accent:        lipgloss.Color("#7AA2F7"),
	AccentBright:  lipgloss.Color("#A9C1FF"),
	AccentDim:     lipgloss.Color("#252B3F"),
	Today:         lipgloss.Color("#9ECE6A"),
	Charge:        lipgloss.Color("#E0AF68"),
	Warning:       lipgloss.Color("#FF9E64"),
	Error:         lipgloss.Color("#F7768E"),
	Bars: []lipgloss.Color{
		"#7AA2F7", "#BB9AF7", "#9ECE6A", "#FF9E64", "#7DCFFF", "#F7768E",
	},
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	AccentDim:     lipgloss.Color("4"),
	Today:         lipgloss.Color("2"),
	Charge:        lipgloss.Color("3"),
	Warning:       lipgloss.Color("3"),
	Error:         lipgloss.Color("1"),
	Bars: []lipgloss.Color{
		"4", "5", "2", "3", "6", "12",
	},
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
