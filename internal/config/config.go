package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// PlaybackConfig holds the user-facing sound settings.
type PlaybackConfig struct {
	Enabled       bool    `toml:"enabled"`
	SelectedClip  string  `toml:"selected_clip"`
	Volume        float64 `toml:"volume"`
	BeepFrequency float64 `toml:"beep_frequency"`
	AudioPitch    float64 `toml:"audio_pitch"`
}

// SoundsConfig holds sound directory settings.
type SoundsConfig struct {
	Dir          string `toml:"dir"`
	Bootstrap    bool   `toml:"bootstrap"`      // write default clips on startup
	FullRangeWAV bool   `toml:"full_range_wav"` // keep negative half-waves in generated files
}

// OutputConfig holds audio output settings.
type OutputConfig struct {
	Backend          string `toml:"backend"` // "beep", "portaudio" or "none"
	SampleRate       int    `toml:"sample_rate"`
	BufferMs         int    `toml:"buffer_ms"`
	DecodeTimeoutSec int    `toml:"decode_timeout_sec"`
}

// HotkeyConfig holds the key that stands in for "head inside a wall".
type HotkeyConfig struct {
	Key    string `toml:"key"`
	Device string `toml:"device"`
}

// MonitorConfig holds frame loop settings.
type MonitorConfig struct {
	FrameRate int `toml:"frame_rate"`
}

// CustomTheme is a user-defined TUI palette.
type CustomTheme struct {
	Name       string `toml:"name"`
	Primary    string `toml:"primary"`
	Secondary  string `toml:"secondary"`
	Accent     string `toml:"accent"`
	Error      string `toml:"error"`
	Success    string `toml:"success"`
	Warning    string `toml:"warning"`
	Background string `toml:"background"`
	Text       string `toml:"text"`
	Dimmed     string `toml:"dimmed"`
	Separator  string `toml:"separator"`
}

// Config is the top-level configuration.
type Config struct {
	Theme        string         `toml:"theme"`
	Playback     PlaybackConfig `toml:"playback"`
	Sounds       SoundsConfig   `toml:"sounds"`
	Output       OutputConfig   `toml:"output"`
	Hotkey       HotkeyConfig   `toml:"hotkey"`
	Monitor      MonitorConfig  `toml:"monitor"`
	CustomThemes []CustomTheme  `toml:"custom_theme"`
}

// Default returns a Config populated with all default values.
func Default() *Config {
	return &Config{
		Theme: "synthwave",
		Playback: PlaybackConfig{
			Enabled:       true,
			SelectedClip:  "beep",
			Volume:        1.0,
			BeepFrequency: 1000,
			AudioPitch:    1.0,
		},
		Sounds: SoundsConfig{
			Dir:          "",
			Bootstrap:    true,
			FullRangeWAV: true,
		},
		Output: OutputConfig{
			Backend:          "beep",
			SampleRate:       44100,
			BufferMs:         50,
			DecodeTimeoutSec: 5,
		},
		Hotkey: HotkeyConfig{
			Key:    defaultHotkeyKey,
			Device: "",
		},
		Monitor: MonitorConfig{
			FrameRate: 60,
		},
	}
}

// DefaultPath returns the default config file path (~/.config/wallhit/config.toml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "wallhit", "config.toml")
}

// DefaultSoundDir returns the default sound directory (~/.local/share/wallhit/sounds).
func DefaultSoundDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "wallhit", "sounds")
}

// SoundDir returns the configured sound directory, or the default when unset.
func (c *Config) SoundDir() string {
	if c.Sounds.Dir != "" {
		return c.Sounds.Dir
	}
	return DefaultSoundDir()
}

// Save writes the config as TOML to the given path, creating parent
// directories if needed. The file is written to a temporary sibling and
// renamed into place.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".wallhit-config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Load reads the TOML config from path. If the file does not exist,
// it returns the default config without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
