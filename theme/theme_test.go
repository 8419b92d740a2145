package theme

import (
	"strings"
	"testing"
)

func TestPresetsMatchKnownNames(t *testing.T) {
	names := Presets()
	want := []string{Classic, Dark, Neon, Rainbow}
	if len(names) != len(want) {
		t.Fatalf("expected %d presets, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestLookup(t *testing.T) {
	th, err := Lookup("Neon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th.Keys[0].Hex() != "#39ff14" {
		t.Fatalf("expected #39ff14, got %s", th.Keys[0].Hex())
	}
	if _, err := Lookup("sepia"); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
}

func TestParseHexShortForm(t *testing.T) {
	c, err := ParseHex("#333")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != (RGB{0x33, 0x33, 0x33}) {
		t.Fatalf("expected #333333, got %s", c.Hex())
	}
	if _, err := ParseHex("blue"); err == nil {
		t.Fatalf("expected error for named color")
	}
}

func TestNewCustom(t *testing.T) {
	th, err := NewCustom("#000000", "#ffffff", []string{"#ff0000", "#00ff00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th.Name != Custom {
		t.Fatalf("expected custom, got %s", th.Name)
	}
	if th.Keys[1] != (RGB{0, 255, 0}) {
		t.Fatalf("expected green key 1, got %s", th.Keys[1].Hex())
	}
	if th.Keys[2] != presets[Dark].Keys[2] {
		t.Fatalf("expected fallback to dark for unset keys")
	}
	if _, err := NewCustom("#000", "#fff", make([]string, 11)); err == nil {
		t.Fatalf("expected error for too many key colors")
	}
}

func TestGradientEndpoints(t *testing.T) {
	th := presets[Classic]
	g := th.Gradient(5)
	if len(g) != 5 {
		t.Fatalf("expected 5 stops, got %d", len(g))
	}
	if g[0] != th.Background[0] || g[4] != th.Background[1] {
		t.Fatalf("gradient endpoints %s..%s do not match background", g[0].Hex(), g[4].Hex())
	}
}

func TestParseGPLToTheme(t *testing.T) {
	gpl := `GIMP Palette
Name: ocean
Columns: 4
# comment
  0   0  32 deep
  0  64 128 shallow
255   0   0 k0
`
	p, err := ParseGPL(strings.NewReader(gpl))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Colors) != 3 {
		t.Fatalf("expected 3 colors, got %d", len(p.Colors))
	}
	th := FromPalette(p)
	if th.Name != "ocean" {
		t.Fatalf("expected name ocean, got %s", th.Name)
	}
	if th.Background[1] != (RGB{0, 64, 128}) || th.Keys[0] != (RGB{255, 0, 0}) {
		t.Fatalf("palette colors not mapped: %v %v", th.Background, th.Keys[0])
	}
	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n")); err == nil {
		t.Fatalf("expected error for empty palette")
	}
}

func TestLabelColorContrast(t *testing.T) {
	if LabelColor(RGB{255, 255, 0}) != (RGB{0, 0, 0}) {
		t.Fatalf("expected dark label on yellow")
	}
	if LabelColor(RGB{0x18, 0x18, 0x18}) != (RGB{255, 255, 255}) {
		t.Fatalf("expected light label on near-black")
	}
}

func TestCycleWraps(t *testing.T) {
	if Cycle(Rainbow).Name != Classic {
		t.Fatalf("expected rainbow to wrap to classic")
	}
	if Cycle(Custom).Name != Classic {
		t.Fatalf("expected custom to restart at classic")
	}
}

func TestCycleIncludesCustom(t *testing.T) {
	custom, err := NewCustom("#000000", "#ffffff", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := Cycle(Rainbow, custom).Name; got != Custom {
		t.Fatalf("expected rainbow to step to custom, got %s", got)
	}
	if got := Cycle(Custom, custom).Name; got != Classic {
		t.Fatalf("expected custom to wrap to classic, got %s", got)
	}
}
