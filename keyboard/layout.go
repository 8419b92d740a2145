package keyboard

// Rect is a key region in whatever units the front end draws in
// (terminal cells or pixels).
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Layout places the ten keys in one row. Gaps between keys hit nothing.
type Layout struct {
	X, Y       float64
	KeyW, KeyH float64
	Gap        float64
}

// FitLayout spreads the keys over width with the given margin and gap
func FitLayout(width, height, margin, gap float64) Layout {
	keyW := (width - 2*margin - gap*(SlotCount-1)) / SlotCount
	if keyW < 1 {
		keyW = 1
	}
	return Layout{X: margin, Y: margin, KeyW: keyW, KeyH: height - 2*margin, Gap: gap}
}

func (l Layout) Rect(slot int) Rect {
	return Rect{
		X: l.X + float64(slot)*(l.KeyW+l.Gap),
		Y: l.Y,
		W: l.KeyW,
		H: l.KeyH,
	}
}

// Width is the total span of the row
func (l Layout) Width() float64 {
	return SlotCount*l.KeyW + (SlotCount-1)*l.Gap
}

// Hit resolves the key under a point
func (l Layout) Hit(x, y float64) (int, bool) {
	if y < l.Y || y >= l.Y+l.KeyH || x < l.X {
		return 0, false
	}
	pitch := l.KeyW + l.Gap
	slot := int((x - l.X) / pitch)
	if slot < 0 || slot >= SlotCount {
		return 0, false
	}
	if !l.Rect(slot).Contains(x, y) {
		return 0, false
	}
	return slot, true
}
