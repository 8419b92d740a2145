// Package snapshot renders the keyboard to an image, for theme previews and
// for checking a custom palette without opening a window.
package snapshot

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"go-keys/keyboard"
	"go-keys/theme"
)

const (
	DefaultWidth  = 960
	DefaultHeight = 320
	margin        = 24
	gap           = 8
	radius        = 6
)

func setRGB(dc *gg.Context, c theme.RGB) {
	dc.SetRGB255(int(c[0]), int(c[1]), int(c[2]))
}

func rgba(c theme.RGB) color.Color {
	return color.NRGBA{c[0], c[1], c[2], 0xff}
}

// Render draws v at w x h pixels
func Render(v keyboard.View, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", w, h)
	}
	dc := gg.NewContext(w, h)

	grad := gg.NewLinearGradient(0, 0, 0, float64(h))
	grad.AddColorStop(0, rgba(v.Theme.Background[0]))
	grad.AddColorStop(1, rgba(v.Theme.Background[1]))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	l := keyboard.FitLayout(float64(w), float64(h), margin, gap)

	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: max(8, l.KeyW/4)}))

	for _, sl := range v.Slots {
		drawKey(dc, l.Rect(sl.Index), v, sl)
	}
	return dc.Image(), nil
}

func drawKey(dc *gg.Context, r keyboard.Rect, v keyboard.View, sl keyboard.Slot) {
	face := v.Theme.Key(sl.Index)
	if v.Active[sl.Index] {
		face = v.Theme.Glow(sl.Index, sl.Color)
		dc.DrawRoundedRectangle(r.X-4, r.Y-4, r.W+8, r.H+8, radius+4)
		dc.SetRGBA255(int(sl.Color[0]), int(sl.Color[1]), int(sl.Color[2]), 110)
		dc.Fill()
	}

	dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, radius)
	setRGB(dc, face)
	dc.FillPreserve()
	dc.SetRGBA(0, 0, 0, 0.35)
	dc.SetLineWidth(1)
	dc.Stroke()

	if v.HideLabels {
		return
	}
	setRGB(dc, theme.LabelColor(face))
	cx := r.X + r.W/2
	dc.DrawStringAnchored(sl.Note.Name, cx, r.Y+r.H-2.2*dc.FontHeight(), 0.5, 0.5)
	dc.DrawStringAnchored(string(sl.Symbol), cx, r.Y+r.H-dc.FontHeight(), 0.5, 0.5)
}

// SavePNG renders v into a PNG file
func SavePNG(path string, v keyboard.View, w, h int) error {
	img, err := Render(v, w, h)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
