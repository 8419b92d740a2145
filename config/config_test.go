package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Octave != 4 || cfg.Theme != "dark" || cfg.Instrument != "piano" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadFromOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{"octave": 6, "mode": "chromatic", "instrument": "organ", "audio": {"sustainMs": 0, "releaseMs": 25}}`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Octave != 6 || cfg.Mode != "chromatic" || cfg.Instrument != "organ" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	opts := cfg.SynthOptions()
	if opts.Sustain != 0 || opts.Release != 25*time.Millisecond {
		t.Fatalf("unexpected synth options: %+v", opts)
	}
	if cfg.Theme != "dark" {
		t.Fatalf("expected theme default kept, got %s", cfg.Theme)
	}
}

func TestLoadFromClampsOctave(t *testing.T) {
	cases := []struct {
		body string
		want int
	}{
		{`{"octave": 9}`, 7},
		{`{"octave": 0}`, 1},
		{`{"octave": 3}`, 3},
	}
	for _, c := range cases {
		cfg, err := LoadFrom(writeConfig(t, c.body))
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", c.body, err)
		}
		if cfg.Octave != c.want {
			t.Errorf("expected octave %d for %s, got %d", c.want, c.body, cfg.Octave)
		}
	}
}

func TestLoadFromRejectsInvalid(t *testing.T) {
	cases := []string{
		`{"mode": "lydian"}`,
		`{"instrument": "kazoo"}`,
		`{"theme": "sepia"}`,
		`{"theme": "custom"}`,
		`{"synthOutput": {"channel": 16}}`,
		`{not json`,
	}
	for _, body := range cases {
		if _, err := LoadFrom(writeConfig(t, body)); err == nil {
			t.Errorf("expected error for %s", body)
		}
	}
}

func TestResolveCustomTheme(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Theme = "custom"
	cfg.Custom.Background = [2]string{"#101010", "#202020"}
	cfg.Custom.Keys = []string{"#ff0000"}
	th, err := cfg.ResolveTheme()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th.Keys[0].Hex() != "#ff0000" {
		t.Fatalf("expected red first key, got %s", th.Keys[0].Hex())
	}

	gpl := filepath.Join(t.TempDir(), "p.gpl")
	os.WriteFile(gpl, []byte("GIMP Palette\nName: p\n1 2 3\n4 5 6\n7 8 9\n"), 0644)
	cfg.Custom.Palette = gpl
	th, err = cfg.ResolveTheme()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th.Keys[0].Hex() != "#070809" {
		t.Fatalf("expected palette key color, got %s", th.Keys[0].Hex())
	}
}

func TestMarshalKeepsSections(t *testing.T) {
	data, err := json.Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"custom"`, `"synthOutput"`, `"audio"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in %s", key, data)
		}
	}
}
