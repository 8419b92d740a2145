package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-keys/scale"
	"go-keys/synth"
	"go-keys/theme"
)

// CustomTheme describes the "custom" theme, either inline or via a GIMP palette
type CustomTheme struct {
	Background [2]string `json:"background,omitempty"`
	Keys       []string  `json:"keys,omitempty"`
	Palette    string    `json:"palette,omitempty"` // path to a .gpl file
}

// ControllerConfig controls MIDI controller hot-plug
type ControllerConfig struct {
	AutoConnect bool `json:"autoConnect"`
}

// SynthOutputConfig mirrors key activations to a MIDI output port
type SynthOutputConfig struct {
	PortName string `json:"portName,omitempty"`
	Channel  int    `json:"channel,omitempty"`
}

// AudioConfig tunes the tone engine
type AudioConfig struct {
	SustainMs  int `json:"sustainMs"`
	ReleaseMs  int `json:"releaseMs"`
	SampleRate int `json:"sampleRate,omitempty"`
}

// Config holds startup defaults. Runtime changes are never written back.
type Config struct {
	Instrument  string            `json:"instrument,omitempty"`
	Mode        string            `json:"mode,omitempty"`
	Octave      int               `json:"octave,omitempty"`
	Theme       string            `json:"theme,omitempty"`
	Custom      CustomTheme       `json:"custom"`
	HideLabels  bool              `json:"hideLabels,omitempty"`
	MIDIFile    string            `json:"midiFile,omitempty"`
	Audio       AudioConfig       `json:"audio"`
	Controllers ControllerConfig  `json:"controllers"`
	SynthOutput SynthOutputConfig `json:"synthOutput"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instrument: synth.Piano.String(),
		Mode:       scale.Diatonic.String(),
		Octave:     scale.DefaultOctave,
		Theme:      theme.Default,
		Audio: AudioConfig{
			SustainMs:  int(synth.DefaultSustain / time.Millisecond),
			ReleaseMs:  int(synth.DefaultRelease / time.Millisecond),
			SampleRate: synth.DefaultSampleRate,
		},
		Controllers: ControllerConfig{AutoConnect: true},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-keys"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads path over the defaults; a missing file yields defaults
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enum values and ranges. The octave is clamped into range
// rather than rejected.
func (c *Config) Validate() error {
	c.Octave = scale.ClampOctave(c.Octave)
	if _, err := synth.ParseInstrument(c.Instrument); err != nil {
		return err
	}
	if _, err := scale.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := c.ResolveTheme(); err != nil {
		return err
	}
	if c.Audio.SustainMs < 0 || c.Audio.ReleaseMs < 0 {
		return fmt.Errorf("negative audio timing")
	}
	if c.SynthOutput.Channel < 0 || c.SynthOutput.Channel > 15 {
		return fmt.Errorf("synth output channel %d outside [0,15]", c.SynthOutput.Channel)
	}
	return nil
}

// ResolveTheme turns the theme name into colors, building the custom theme
// from its palette file or inline colors.
func (c *Config) ResolveTheme() (theme.Theme, error) {
	if c.Theme != theme.Custom {
		return theme.Lookup(c.Theme)
	}
	if c.Custom.Palette != "" {
		p, err := theme.LoadGPL(c.Custom.Palette)
		if err != nil {
			return theme.Theme{}, err
		}
		return theme.FromPalette(p), nil
	}
	bg := c.Custom.Background
	if bg[0] == "" || bg[1] == "" {
		return theme.Theme{}, fmt.Errorf("custom theme needs two background colors or a palette")
	}
	return theme.NewCustom(bg[0], bg[1], c.Custom.Keys)
}

// SynthOptions converts the audio section for the tone engine
func (c *Config) SynthOptions() synth.Options {
	opts := synth.DefaultOptions()
	opts.Sustain = time.Duration(c.Audio.SustainMs) * time.Millisecond
	if c.Audio.ReleaseMs > 0 {
		opts.Release = time.Duration(c.Audio.ReleaseMs) * time.Millisecond
	}
	if c.Audio.SampleRate > 0 {
		opts.SampleRate = c.Audio.SampleRate
	}
	return opts
}
