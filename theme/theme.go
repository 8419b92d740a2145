package theme

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const KeyCount = 10

const (
	Classic = "classic"
	Dark    = "dark"
	Neon    = "neon"
	Rainbow = "rainbow"
	Custom  = "custom"

	Default = Dark
)

// Theme colors the background gradient and the key faces
type Theme struct {
	Name       string
	Background [2]RGB
	Keys       [KeyCount]RGB
}

var presets = map[string]Theme{
	Classic: preset(Classic, "#222244", "#444488",
		"#00ffff", "#ff00ff", "#ffff00", "#ff8000", "#00ff80",
		"#8000ff", "#0080ff", "#ff0080", "#80ff00", "#00ff40"),
	Dark: preset(Dark, "#181818", "#232323",
		"#333", "#333", "#333", "#333", "#333",
		"#333", "#333", "#333", "#333", "#333"),
	Neon: preset(Neon, "#0f2027", "#2c5364",
		"#39ff14", "#f72585", "#fee440", "#ff006e", "#00f2ea",
		"#8338ec", "#3a86ff", "#ffbe0b", "#fb5607", "#ff006e"),
	Rainbow: preset(Rainbow, "#ff0080", "#7928ca",
		"#ff0080", "#ff8c00", "#faff00", "#00ff00", "#00cfff",
		"#3300ff", "#8f00ff", "#ff00c8", "#ffb300", "#00ffb3"),
}

func preset(name, bg0, bg1 string, keys ...string) Theme {
	t := Theme{Name: name, Background: [2]RGB{mustHex(bg0), mustHex(bg1)}}
	for i, k := range keys {
		t.Keys[i] = mustHex(k)
	}
	return t
}

// Presets returns the preset names in a stable order
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Lookup(name string) (Theme, error) {
	t, ok := presets[strings.ToLower(name)]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}
	return t, nil
}

// NewCustom builds a custom theme from hex colors. Keys missing from the
// list keep the dark preset's face color.
func NewCustom(bgStart, bgEnd string, keys []string) (Theme, error) {
	t := presets[Dark]
	t.Name = Custom

	var err error
	if t.Background[0], err = ParseHex(bgStart); err != nil {
		return Theme{}, err
	}
	if t.Background[1], err = ParseHex(bgEnd); err != nil {
		return Theme{}, err
	}
	if len(keys) > KeyCount {
		return Theme{}, fmt.Errorf("custom theme has %d key colors, max %d", len(keys), KeyCount)
	}
	for i, k := range keys {
		if t.Keys[i], err = ParseHex(k); err != nil {
			return Theme{}, fmt.Errorf("key %d: %w", i, err)
		}
	}
	return t, nil
}

// FromPalette reads the gradient from the first two colors and key faces
// from the next ten.
func FromPalette(p *Palette) Theme {
	t := presets[Dark]
	t.Name = Custom
	if p.Name != "" {
		t.Name = p.Name
	}
	for i, c := range p.Colors {
		switch {
		case i < 2:
			t.Background[i] = c
		case i < 2+KeyCount:
			t.Keys[i-2] = c
		}
	}
	if len(p.Colors) == 1 {
		t.Background[1] = p.Colors[0]
	}
	return t
}

// Cycle returns the theme after name, stepping through the presets and then
// any extra themes before wrapping around
func Cycle(name string, extra ...Theme) Theme {
	ring := make([]Theme, 0, len(presets)+len(extra))
	for _, n := range Presets() {
		ring = append(ring, presets[n])
	}
	for _, t := range extra {
		if _, ok := presets[t.Name]; !ok {
			ring = append(ring, t)
		}
	}
	for i, t := range ring {
		if t.Name == name {
			return ring[(i+1)%len(ring)]
		}
	}
	return ring[0]
}

// Key returns the face color of a slot
func (t Theme) Key(i int) RGB {
	if i < 0 || i >= KeyCount {
		return t.Keys[0]
	}
	return t.Keys[i]
}

// Glow mixes the key's accent into its face for the active state
func (t Theme) Glow(i int, accent RGB) RGB {
	return Blend(t.Key(i), accent, 0.85)
}

// Gradient samples the background gradient at n points
func (t Theme) Gradient(n int) []RGB {
	return Gradient(t.Background[0], t.Background[1], n)
}

// LabelColor picks black or white text for legibility on bg
func LabelColor(bg RGB) RGB {
	l, _, _ := bg.colorful().Lab()
	if l > 0.6 {
		return RGB{0, 0, 0}
	}
	return RGB{255, 255, 255}
}

// Lipgloss converts for terminal rendering
func Lipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}

// Distance is the perceptual distance between two colors
func Distance(a, b RGB) float64 {
	return a.colorful().DistanceLab(b.colorful())
}
