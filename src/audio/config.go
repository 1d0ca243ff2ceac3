package audio

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is loaded once at startup.
type Config struct {
	SampleRate   int     `json:"sampleRate"`
	BufferFrames int     `json:"bufferFrames"`
	Backend      string  `json:"backend"` // "oto" or "headless"
	HeadroomGain float64 `json:"headroomGain"`
	MidiIn       bool    `json:"midiIn"`
	PresetDir    string  `json:"presetDir"`
}

// DefaultConfig ...
func DefaultConfig() Config {
	return Config{
		SampleRate:   48000,
		BufferFrames: 512,
		Backend:      backendOto,
		HeadroomGain: 0.2,
		MidiIn:       true,
		PresetDir:    "presets",
	}
}

// LoadConfig overlays the JSON file at path on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	bytes, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(bytes, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sampleRate %d: %w", c.SampleRate, ErrInvalidConfig)
	}
	if c.BufferFrames <= 0 {
		return fmt.Errorf("bufferFrames %d: %w", c.BufferFrames, ErrInvalidConfig)
	}
	if c.HeadroomGain <= 0 || c.HeadroomGain > 1 {
		return fmt.Errorf("headroomGain %v: %w", c.HeadroomGain, ErrInvalidConfig)
	}
	switch c.Backend {
	case backendOto, backendHeadless:
	default:
		return fmt.Errorf("backend %q: %w", c.Backend, ErrInvalidConfig)
	}
	return nil
}
