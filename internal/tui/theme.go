package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Danondso/wallhit/internal/config"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name       string
	Primary    lipgloss.Color // title, inside badge, meter bars
	Secondary  lipgloss.Color // labels, key hints, border
	Accent     lipgloss.Color // selected sound, notices
	Error      lipgloss.Color // disabled badge
	Success    lipgloss.Color // outside badge
	Warning    lipgloss.Color // hit flash, debug category
	Background lipgloss.Color // panel background
	Text       lipgloss.Color // body text
	Dimmed     lipgloss.Color // help text, debug text, meter track
	Separator  lipgloss.Color // debug separator
}

// palette builds a Theme from hex strings in field order.
func palette(name string, hex ...string) Theme {
	c := make([]lipgloss.Color, 10)
	for i := range c {
		if i < len(hex) {
			c[i] = lipgloss.Color(hex[i])
		}
	}
	return Theme{
		Name: name, Primary: c[0], Secondary: c[1], Accent: c[2], Error: c[3], Success: c[4],
		Warning: c[5], Background: c[6], Text: c[7], Dimmed: c[8], Separator: c[9],
	}
}

// themes is the cycle order. Built-ins come first; custom themes are appended.
var themes = []Theme{
	//                     primary    secondary  accent     error      success    warning    background text       dimmed     separator
	palette("Synthwave", "#FF6AC1", "#00E5FF", "#B388FF", "#FF8A80", "#64FFDA", "#FFAB40", "#1A1A2E", "#E0E0E0", "#666666", "#444444"),
	palette("Everforest", "#A7C080", "#7FBBB3", "#D699B6", "#E67E80", "#83C092", "#DBBC7F", "#2D353B", "#D3C6AA", "#859289", "#4F585E"),
	palette("Gruvbox", "#FB4934", "#83A598", "#D3869B", "#FB4934", "#B8BB26", "#FABD2F", "#282828", "#EBDBB2", "#928374", "#504945"),
	palette("Arena", "#FF5F1F", "#FFD23F", "#3BCEAC", "#EE4266", "#3BCEAC", "#FFD23F", "#0E0E14", "#F2F2F2", "#6B6B80", "#2E2E3A"),
	palette("Monochrome", "#FFFFFF", "#CCCCCC", "#AAAAAA", "#FF0000", "#FFFFFF", "#CCCCCC", "#000000", "#FFFFFF", "#888888", "#444444"),
}

func themeIndex(name string) int {
	for i, t := range themes {
		if strings.EqualFold(t.Name, name) {
			return i
		}
	}
	return -1
}

// ThemeNames returns the lower-case names of all themes in cycle order.
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = strings.ToLower(t.Name)
	}
	return names
}

// LoadTheme returns the theme with the given name (case-insensitive), or the
// first theme if the name is not recognized.
func LoadTheme(name string) Theme {
	if i := themeIndex(name); i >= 0 {
		return themes[i]
	}
	return themes[0]
}

// NextTheme returns the theme after current in the cycle, wrapping.
func NextTheme(current string) Theme {
	return themes[(themeIndex(current)+1)%len(themes)]
}

// RegisterCustomThemes appends config themes to the cycle. Entries with an
// empty name or a name already taken are skipped.
func RegisterCustomThemes(custom []config.CustomTheme) {
	for _, ct := range custom {
		if ct.Name == "" || themeIndex(ct.Name) >= 0 {
			continue
		}
		themes = append(themes, palette(ct.Name,
			ct.Primary, ct.Secondary, ct.Accent, ct.Error, ct.Success,
			ct.Warning, ct.Background, ct.Text, ct.Dimmed, ct.Separator))
	}
}

func init() {
	applyTheme(themes[0])
}

// applyTheme updates all TUI style variables to use the given theme's colors.
func applyTheme(t Theme) {
	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Background(t.Background)
	}

	titleStyle = fg(t.Primary).Bold(true).MarginBottom(1)
	borderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Secondary).
		Padding(1, 2).
		Background(t.Background)
	labelStyle = fg(t.Secondary).Bold(true)
	bodyStyle = fg(t.Text)
	hintStyle = fg(t.Secondary)
	helpStyle = fg(t.Dimmed)
	selectedStyle = fg(t.Accent).Bold(true)
	noticeStyle = fg(t.Accent).Italic(true)

	outsideBadge = fg(t.Success).Bold(true)
	insideBadge = fg(t.Primary).Bold(true)
	hitBadge = fg(t.Warning).Bold(true).Reverse(true)
	disabledBadge = fg(t.Error).Bold(true)

	meterStyle = fg(t.Primary)
	meterTrackStyle = fg(t.Dimmed)

	debugTitleStyle = fg(t.Dimmed).Bold(true)
	debugRuleStyle = fg(t.Dimmed)
	debugHeaderStyle = fg(t.Dimmed).Bold(true)
	debugTimeStyle = fg(t.Dimmed)
	debugCategoryStyle = fg(t.Warning)
	debugMsgStyle = fg(t.Dimmed)
	debugSepStyle = fg(t.Separator)
}
