package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Danondso/wallhit/internal/contact"
	"github.com/Danondso/wallhit/internal/settings"
)

// Styles, set by applyTheme.
var (
	titleStyle    lipgloss.Style
	borderStyle   lipgloss.Style
	labelStyle    lipgloss.Style
	bodyStyle     lipgloss.Style
	hintStyle     lipgloss.Style
	helpStyle     lipgloss.Style
	selectedStyle lipgloss.Style
	noticeStyle   lipgloss.Style

	outsideBadge  lipgloss.Style
	insideBadge   lipgloss.Style
	hitBadge      lipgloss.Style
	disabledBadge lipgloss.Style

	meterStyle      lipgloss.Style
	meterTrackStyle lipgloss.Style

	debugTitleStyle    lipgloss.Style
	debugRuleStyle     lipgloss.Style
	debugHeaderStyle   lipgloss.Style
	debugTimeStyle     lipgloss.Style
	debugCategoryStyle lipgloss.Style
	debugMsgStyle      lipgloss.Style
	debugSepStyle      lipgloss.Style
)

// panelWidth is the total outer width of the main panel.
// borderStyle has: border (1+1) = 2, padding (2+2) = 4, total chrome = 6.
const panelWidth = 80
const panelWidthForStyle = panelWidth - 2 // passed to borderStyle.Width()
const panelContentWidth = panelWidth - 6  // actual usable text area

// View renders the TUI.
func (m Model) View() string {
	var b strings.Builder

	titleText := "  WALLHIT  "
	barTotal := panelContentWidth - len(titleText)
	barLeft := barTotal / 2
	title := strings.Repeat("▓", barLeft) + titleText + strings.Repeat("▓", barTotal-barLeft)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Head:    "))
	b.WriteString(m.renderBadge())
	b.WriteString(helpStyle.Render(fmt.Sprintf("   hits %d  presses %d  frame %d", m.Monitor.Hits(), m.Signal.Presses(), m.Frame)))
	b.WriteString("\n\n")

	b.WriteString(m.renderSettings(m.Settings.Snapshot()))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Sounds:"))
	b.WriteString(helpStyle.Render("  " + m.SoundDir))
	b.WriteString("\n")
	b.WriteString(m.renderSounds())
	b.WriteString("\n\n")

	keyName := strings.TrimPrefix(m.HotkeyName, "KEY_")
	b.WriteString(hintStyle.Render(fmt.Sprintf("Hotkey: %s (hold for head-in-wall)", keyName)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space toggle  e enable  +/- volume  [/] pitch  </> freq  tab sound"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("t preview  r reload  R reset  y copy path  ctrl+t theme  q quit"))

	if m.Notice != "" {
		b.WriteString("\n\n")
		b.WriteString(noticeStyle.Render(m.Notice))
	}

	if m.DebugMode || len(m.DebugEntries) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.renderDebugPanel())
	}

	return borderStyle.Width(panelWidthForStyle).Render(b.String())
}

func (m Model) renderBadge() string {
	inside := m.Monitor.State() == contact.Inside
	switch {
	case m.flashFrames > 0:
		return hitBadge.Render(" HIT! ")
	case !m.Settings.Enabled():
		if inside {
			return disabledBadge.Render("● Inside (muted)")
		}
		return disabledBadge.Render("● Outside (muted)")
	case inside:
		return insideBadge.Render("● Inside")
	default:
		return outsideBadge.Render("● Outside")
	}
}

func (m Model) renderSettings(s settings.Snapshot) string {
	enabled := "off"
	if s.Enabled {
		enabled = "on"
	}
	var b strings.Builder
	b.WriteString(labelStyle.Render("Enabled: ") + bodyStyle.Render(enabled) + "\n")
	b.WriteString(labelStyle.Render("Volume:  ") + renderMeter(s.Volume, settings.MinVolume, settings.MaxVolume) +
		bodyStyle.Render(fmt.Sprintf(" %3.0f%%", s.Volume*100)) + "\n")
	b.WriteString(labelStyle.Render("Pitch:   ") + renderMeter(s.Pitch, settings.MinPitch, settings.MaxPitch) +
		bodyStyle.Render(fmt.Sprintf(" %.2fx", s.Pitch)) + "\n")
	b.WriteString(labelStyle.Render("Beep:    ") + renderMeter(s.Frequency, settings.MinFrequency, settings.MaxFrequency) +
		bodyStyle.Render(fmt.Sprintf(" %4.0f Hz", s.Frequency)) + "\n")
	return b.String()
}

const meterWidth = 20

func renderMeter(v, lo, hi float64) string {
	frac := (v - lo) / (hi - lo)
	filled := int(math.Round(frac * meterWidth))
	filled = max(0, min(filled, meterWidth))
	return meterStyle.Render(strings.Repeat("█", filled)) + meterTrackStyle.Render(strings.Repeat("░", meterWidth-filled))
}

func (m Model) renderSounds() string {
	if len(m.Sounds) == 0 {
		return helpStyle.Render("(loading)")
	}
	selection := m.Settings.Selection()
	parts := make([]string, 0, len(m.Sounds))
	for _, name := range m.Sounds {
		if name == selection {
			parts = append(parts, selectedStyle.Render("▸ "+name))
		} else {
			parts = append(parts, bodyStyle.Render("  "+name))
		}
	}
	// Selection may name a file that has not been listed yet.
	if !listed(m.Sounds, selection) {
		parts = append(parts, selectedStyle.Render("▸ "+selection+" (missing)"))
	}
	return lipgloss.NewStyle().Width(panelContentWidth).Render(strings.Join(parts, "  "))
}

func listed(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

const debugPanelMaxLines = 5

// Debug table column widths. Row content must fit within panelContentWidth.
const (
	colTimeWidth     = 15
	colCategoryWidth = 10
	colSepWidth      = 3 // " │ "
	colMsgWidth      = panelContentWidth - colTimeWidth - colCategoryWidth - colSepWidth*2
)

func (m Model) renderDebugPanel() string {
	sep := debugSepStyle.Render(" │ ")
	rule := debugRuleStyle.Render(strings.Repeat("─", panelContentWidth))

	var db strings.Builder
	db.WriteString(debugTitleStyle.Render("Debug"))
	db.WriteString("\n")
	db.WriteString(rule)
	db.WriteString("\n")
	db.WriteString(
		debugHeaderStyle.Width(colTimeWidth).Render("TIME") +
			sep +
			debugHeaderStyle.Width(colCategoryWidth).Render("TYPE") +
			sep +
			debugHeaderStyle.Width(colMsgWidth).Render("MESSAGE"))
	db.WriteString("\n")
	db.WriteString(rule)

	entries := m.DebugEntries
	if len(entries) > debugPanelMaxLines {
		entries = entries[len(entries)-debugPanelMaxLines:]
	}
	for _, entry := range entries {
		db.WriteString("\n")
		db.WriteString(
			debugTimeStyle.Width(colTimeWidth).Render(truncate(entry.Time, colTimeWidth, "")) +
				sep +
				debugCategoryStyle.Width(colCategoryWidth).Render(truncate(entry.Category, colCategoryWidth, "")) +
				sep +
				debugMsgStyle.Width(colMsgWidth).Render(truncate(entry.Message, colMsgWidth, "...")))
	}

	return db.String()
}

// truncate cuts s to width bytes, ending in tail when it had to cut.
func truncate(s string, width int, tail string) string {
	if len(s) <= width {
		return s
	}
	return s[:width-len(tail)] + tail
}
