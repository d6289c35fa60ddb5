package tui

import (
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Danondso/wallhit/internal/clipboard"
	"github.com/Danondso/wallhit/internal/config"
	"github.com/Danondso/wallhit/internal/gate"
	"github.com/Danondso/wallhit/internal/hotkey"
	"github.com/Danondso/wallhit/internal/library"
	"github.com/Danondso/wallhit/internal/settings"
)

// Step sizes for the adjustment keys.
const (
	volumeStep    = 0.1
	pitchStep     = 0.1
	frequencyStep = 50.0
)

// Messages sent through the Bubble Tea update loop.

type frameTickMsg struct{}

// SoundsMsg carries a fresh listing of the sound directory.
type SoundsMsg struct {
	Names []string
	Err   error
}

// SoundChangedMsg reports that a file in the sound directory changed.
type SoundChangedMsg struct {
	Name string
}

type noticeTimeoutMsg struct {
	id int
}

// DebugEntry is a structured debug log entry.
type DebugEntry struct {
	Time     string // e.g. "11:27:53"
	Category string // e.g. "gate", "resolve", "sink"
	Message  string
}

// DebugLogMsg carries a structured debug log entry into the TUI.
type DebugLogMsg struct {
	Entry DebugEntry
}

const maxDebugLines = 50

// hitFlash is how long the view highlights a hit.
const hitFlash = 150 * time.Millisecond

// Model is the Bubble Tea model for the wallhit host. Each frame tick samples
// the inside/outside signal and feeds it to the monitor.
type Model struct {
	Config       *config.Config
	Settings     *settings.Store
	Gate         *gate.Gate
	Monitor      *gate.Monitor
	Signal       *hotkey.Signal
	SoundDir     string
	HotkeyName   string
	Logger       *log.Logger
	DebugMode    bool
	DebugEntries []DebugEntry

	Sounds      []string
	Frame       uint64
	LastHit     uint64 // frame number of the most recent hit
	flashFrames int
	Notice      string
	noticeID    int
	ThemeName   string

	frameInterval time.Duration
	copyText      func(string) error
}

// NewModel creates a new TUI model.
func NewModel(cfg *config.Config, st *settings.Store, g *gate.Gate, mon *gate.Monitor, sig *hotkey.Signal, soundDir string, logger *log.Logger, debug bool) Model {
	rate := cfg.Monitor.FrameRate
	if rate <= 0 {
		rate = 60
	}
	applyTheme(LoadTheme(cfg.Theme))
	return Model{
		Config:        cfg,
		Settings:      st,
		Gate:          g,
		Monitor:       mon,
		Signal:        sig,
		SoundDir:      soundDir,
		HotkeyName:    cfg.Hotkey.Key,
		Logger:        logger,
		DebugMode:     debug,
		ThemeName:     LoadTheme(cfg.Theme).Name,
		frameInterval: time.Second / time.Duration(rate),
		copyText:      clipboard.Copy,
	}
}

// Init starts the frame loop and lists the sound directory.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.frameTickCmd(), listSoundsCmd(m.SoundDir))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameTickMsg:
		m.tick()
		return m, m.frameTickCmd()

	case SoundsMsg:
		if msg.Err != nil {
			m.Logger.Printf("library: list: %v", msg.Err)
		}
		m.Sounds = msg.Names

	case SoundChangedMsg:
		if msg.Name == m.Settings.Selection() {
			m.Settings.Reload()
		}
		return m, listSoundsCmd(m.SoundDir)

	case noticeTimeoutMsg:
		if msg.id == m.noticeID {
			m.Notice = ""
		}

	case DebugLogMsg:
		m.DebugEntries = append(m.DebugEntries, msg.Entry)
		if len(m.DebugEntries) > maxDebugLines {
			m.DebugEntries = m.DebugEntries[len(m.DebugEntries)-maxDebugLines:]
		}
	}

	return m, nil
}

// tick runs one host frame.
func (m *Model) tick() {
	m.Frame++
	if m.Monitor.Tick(m.Signal.Inside()) {
		m.LastHit = m.Frame
		m.flashFrames = int(hitFlash / m.frameInterval)
	} else if m.flashFrames > 0 {
		m.flashFrames--
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.Settings
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.Signal.Toggle()
	case "e":
		st.SetEnabled(!st.Enabled())
	case "+", "=":
		st.SetVolume(st.Volume() + volumeStep)
	case "-", "_":
		st.SetVolume(st.Volume() - volumeStep)
	case "]":
		st.SetPitch(st.Pitch() + pitchStep)
	case "[":
		st.SetPitch(st.Pitch() - pitchStep)
	case ">", ".":
		st.SetFrequency(st.Frequency() + frequencyStep)
	case "<", ",":
		st.SetFrequency(st.Frequency() - frequencyStep)
	case "tab":
		st.SetSelection(cycle(m.Sounds, st.Selection(), 1))
	case "shift+tab":
		st.SetSelection(cycle(m.Sounds, st.Selection(), -1))
	case "t":
		m.Gate.Preview()
	case "r":
		st.Reload()
		var cmd tea.Cmd
		m, cmd = m.notify("Reloaded sounds")
		return m, tea.Batch(cmd, listSoundsCmd(m.SoundDir))
	case "R":
		st.Reset()
		m.Monitor.Reset()
		m.LastHit = 0
		m.flashFrames = 0
		return m.notify("Settings and hit count reset")
	case "y":
		if err := m.copyText(m.SoundDir); err != nil {
			m.Logger.Printf("clipboard: %v", err)
			return m.notify("Copy failed: " + err.Error())
		}
		return m.notify("Copied " + m.SoundDir)
	case "ctrl+t":
		next := NextTheme(m.ThemeName)
		applyTheme(next)
		m.ThemeName = next.Name
		return m.notify("Theme: " + next.Name)
	}
	return m, nil
}

// notify shows a transient message and schedules its removal.
func (m Model) notify(text string) (Model, tea.Cmd) {
	m.noticeID++
	m.Notice = text
	return m, noticeTimeoutCmd(m.noticeID)
}

// cycle returns the entry dir steps away from current in names, wrapping.
// An unknown current starts from the first entry.
func cycle(names []string, current string, dir int) string {
	if len(names) == 0 {
		return current
	}
	for i, n := range names {
		if n == current {
			return names[(i+dir+len(names))%len(names)]
		}
	}
	return names[0]
}

func (m Model) frameTickCmd() tea.Cmd {
	return tea.Tick(m.frameInterval, func(time.Time) tea.Msg {
		return frameTickMsg{}
	})
}

func listSoundsCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		names, err := library.List(dir)
		if err != nil {
			err = fmt.Errorf("list %s: %w", dir, err)
		}
		return SoundsMsg{Names: names, Err: err}
	}
}

const noticeDuration = 3 * time.Second

func noticeTimeoutCmd(id int) tea.Cmd {
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeTimeoutMsg{id: id}
	})
}
