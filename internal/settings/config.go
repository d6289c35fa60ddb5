package settings

import (
	"sync"

	"github.com/Danondso/wallhit/internal/config"
)

// FromConfig reads the playback section of cfg.
func FromConfig(cfg *config.Config) Snapshot {
	return Snapshot{
		Enabled:   cfg.Playback.Enabled,
		Selection: cfg.Playback.SelectedClip,
		Volume:    cfg.Playback.Volume,
		Pitch:     cfg.Playback.AudioPitch,
		Frequency: cfg.Playback.BeepFrequency,
	}
}

// ApplyTo writes s into the playback section of cfg.
func ApplyTo(cfg *config.Config, s Snapshot) {
	cfg.Playback.Enabled = s.Enabled
	cfg.Playback.SelectedClip = s.Selection
	cfg.Playback.Volume = s.Volume
	cfg.Playback.AudioPitch = s.Pitch
	cfg.Playback.BeepFrequency = s.Frequency
}

// ConfigPersister saves settings into cfg and writes it to path.
type ConfigPersister struct {
	mu   sync.Mutex
	path string
	cfg  *config.Config
}

// NewConfigPersister returns a Persister backed by the TOML config at path.
func NewConfigPersister(path string, cfg *config.Config) *ConfigPersister {
	return &ConfigPersister{path: path, cfg: cfg}
}

func (p *ConfigPersister) Persist(s Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ApplyTo(p.cfg, s)
	return config.Save(p.path, p.cfg)
}
