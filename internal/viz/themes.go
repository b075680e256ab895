package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the panel and the canvas.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Spring  lipgloss.Color
	Select  lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Primary: lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ff00ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Spring:  lipgloss.Color("#8888aa"),
		Select:  lipgloss.Color("#ffff00"),
		Warning: lipgloss.Color("#ff8800"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Spring:  lipgloss.Color("#00aa00"),
		Select:  lipgloss.Color("#ffff00"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemePaper = Theme{
		Name:    "paper",
		Primary: lipgloss.Color("#222222"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#111111"),
		Muted:   lipgloss.Color("#888888"),
		Spring:  lipgloss.Color("#555555"),
		Select:  lipgloss.Color("#ff6600"),
		Warning: lipgloss.Color("#aa6600"),
		Error:   lipgloss.Color("#cc0000"),
	}

	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemePaper,
	}
)

// atomPalette maps the color names scenes use to terminal colors. Unknown
// names are passed through, so hex values work too.
var atomPalette = map[string]lipgloss.Color{
	"red":    lipgloss.Color("#ff4444"),
	"blue":   lipgloss.Color("#4488ff"),
	"green":  lipgloss.Color("#44dd66"),
	"violet": lipgloss.Color("#bb66ff"),
	"yellow": lipgloss.Color("#ffdd33"),
	"cyan":   lipgloss.Color("#33dddd"),
	"orange": lipgloss.Color("#ff9933"),
	"pink":   lipgloss.Color("#ff77bb"),
}

// AtomColors is the order in which new atoms are colored.
var AtomColors = []string{"red", "blue", "green", "violet", "yellow", "cyan", "orange", "pink"}

// Ink resolves a canvas ink name. The empty name and the names spring,
// select and cursor come from the current theme.
func Ink(name string) lipgloss.Color {
	switch name {
	case "":
		return CurrentTheme.Primary
	case "spring":
		return CurrentTheme.Spring
	case "select":
		return CurrentTheme.Select
	case "cursor":
		return CurrentTheme.Accent
	}
	if c, ok := atomPalette[name]; ok {
		return c
	}
	return lipgloss.Color(name)
}

func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
