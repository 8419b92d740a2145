package snapshot

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"go-keys/keyboard"
	"go-keys/theme"
)

func view(t *testing.T) keyboard.View {
	t.Helper()
	set := keyboard.DefaultSettings()
	th, err := theme.Lookup(theme.Classic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set.Theme = th
	return keyboard.NewSession(set).Snapshot()
}

func sample(t *testing.T, v keyboard.View, x, y int) theme.RGB {
	t.Helper()
	img, err := Render(v, DefaultWidth, DefaultHeight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return theme.RGB{c.R, c.G, c.B}
}

func TestRenderKeyFace(t *testing.T) {
	v := view(t)
	v.HideLabels = true
	l := keyboard.FitLayout(DefaultWidth, DefaultHeight, margin, gap)
	r := l.Rect(3)

	got := sample(t, v, int(r.X+r.W/2), int(r.Y+r.H/2))
	if want := v.Theme.Key(3); theme.Distance(got, want) > 0.02 {
		t.Fatalf("expected key face %v, got %v", want, got)
	}
}

func TestRenderActiveGlow(t *testing.T) {
	v := view(t)
	v.HideLabels = true
	v.Active[3] = true
	l := keyboard.FitLayout(DefaultWidth, DefaultHeight, margin, gap)
	r := l.Rect(3)

	got := sample(t, v, int(r.X+r.W/2), int(r.Y+r.H/2))
	want := v.Theme.Glow(3, v.Slots[3].Color)
	if theme.Distance(got, want) > 0.02 {
		t.Fatalf("expected glow %v, got %v", want, got)
	}
}

func TestRenderRejectsEmptySize(t *testing.T) {
	if _, err := Render(view(t), 0, 100); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.png")
	if err := SavePNG(path, view(t), 320, 120); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected file: %v", err)
	}
	if st.Size() == 0 {
		t.Fatal("expected non-empty PNG")
	}
}
