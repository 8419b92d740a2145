// Package window is the multi-touch front end. Every touch is its own
// contact, so chords and slides across keys behave like fingers on glass.
package window

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"go-keys/keyboard"
	"go-keys/midifile"
	"go-keys/pointer"
	"go-keys/theme"
)

const (
	DefaultWidth  = 960
	DefaultHeight = 360
	margin        = 24
	gap           = 8
	statusHeight  = 28
)

var symbolKeys = map[ebiten.Key]rune{
	ebiten.KeyQ: 'Q', ebiten.KeyW: 'W', ebiten.KeyE: 'E', ebiten.KeyR: 'R', ebiten.KeyT: 'T',
	ebiten.KeyY: 'Y', ebiten.KeyU: 'U', ebiten.KeyI: 'I', ebiten.KeyO: 'O', ebiten.KeyP: 'P',
}

type Options struct {
	SongSrc string
	Custom  *theme.Theme
}

type Game struct {
	session *keyboard.Session
	tracker *pointer.Tracker
	songSrc string
	custom  []theme.Theme
	songs   *midifile.Control

	width, height int
	touches       []ebiten.TouchID
	keys          []ebiten.Key
	down          map[keyboard.ContactID]pointer.Point

	notice string
}

func NewGame(session *keyboard.Session, opts Options) *Game {
	g := &Game{
		session: session,
		songSrc: opts.SongSrc,
		songs:   midifile.NewControl(midifile.NewPlayer()),
		width:   DefaultWidth,
		height:  DefaultHeight,
		down:    make(map[keyboard.ContactID]pointer.Point),
	}
	if opts.Custom != nil {
		g.custom = []theme.Theme{*opts.Custom}
	}
	g.tracker = pointer.NewTracker(keyLayout(g.width, g.height))
	return g
}

// Run opens the window and blocks until it is closed
func Run(session *keyboard.Session, opts Options) error {
	ebiten.SetWindowSize(DefaultWidth, DefaultHeight)
	ebiten.SetWindowTitle("go-keys")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := NewGame(session, opts)
	err := ebiten.RunGame(g)
	g.songs.Stop()
	session.ReleaseAll()
	if err != nil && err != ebiten.Termination {
		return fmt.Errorf("window: %w", err)
	}
	return nil
}

func keyLayout(w, h int) keyboard.Layout {
	return keyboard.FitLayout(float64(w), float64(h-statusHeight), margin, gap)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.tracker.SetLayout(keyLayout(g.width, g.height))
	}
	return outsideWidth, outsideHeight
}

func (g *Game) Update() error {
	g.pollPointers()

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		if r, ok := symbolKeys[k]; ok {
			g.session.PressSymbol(keyboard.KeyContact(r), r)
			continue
		}
		if err := g.control(k); err != nil {
			return err
		}
	}
	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		if r, ok := symbolKeys[k]; ok {
			g.session.Release(keyboard.KeyContact(r))
		}
	}

	if msg, ok := g.songs.Poll(); ok {
		g.notice = msg
	}
	return nil
}

// pollPointers samples every touch plus the left mouse button
func (g *Game) pollPointers() {
	clear(g.down)
	g.touches = ebiten.AppendTouchIDs(g.touches[:0])
	for _, id := range g.touches {
		x, y := ebiten.TouchPosition(id)
		g.down[keyboard.TouchContact(int(id))] = pointer.Point{X: float64(x), Y: float64(y)}
	}
	if len(g.touches) == 0 && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.down[keyboard.PointerContact(int(ebiten.MouseButtonLeft))] = pointer.Point{X: float64(x), Y: float64(y)}
	}
	g.tracker.Frame(g.session, g.down)
}

func (g *Game) control(k ebiten.Key) error {
	switch k {
	case ebiten.KeyEscape:
		return ebiten.Termination
	case ebiten.KeyZ:
		g.session.ShiftOctave(-1)
	case ebiten.KeyX:
		g.session.ShiftOctave(1)
	case ebiten.KeyC:
		g.notice = "scale: " + g.session.ToggleMode().String()
	case ebiten.KeyV:
		g.notice = "instrument: " + g.session.CycleInstrument().String()
	case ebiten.KeyB:
		next := theme.Cycle(g.session.Snapshot().Theme.Name, g.custom...)
		g.session.SetTheme(next)
		g.notice = "theme: " + next.Name
	case ebiten.KeyH:
		g.session.ToggleLabels()
	case ebiten.KeyM:
		g.toggleSong()
	}
	return nil
}

func (g *Game) toggleSong() {
	g.notice = g.songs.Toggle(g.songSrc, g.session)
}

func (g *Game) Draw(screen *ebiten.Image) {
	v := g.session.Snapshot()
	l := keyLayout(g.width, g.height)

	drawGradient(screen, v.Theme, g.width, g.height)

	for _, sl := range v.Slots {
		r := l.Rect(sl.Index)
		face := v.Theme.Key(sl.Index)
		if v.Active[sl.Index] {
			face = v.Theme.Glow(sl.Index, sl.Color)
			// halo
			vector.DrawFilledRect(screen, float32(r.X-3), float32(r.Y-3), float32(r.W+6), float32(r.H+6), rgba(sl.Color, 0x80), true)
		}
		vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), rgba(face, 0xff), true)
		if !v.HideLabels {
			ebitenutil.DebugPrintAt(screen, sl.Note.Name, int(r.X)+6, int(r.Y+r.H)-36)
			ebitenutil.DebugPrintAt(screen, string(sl.Symbol), int(r.X)+6, int(r.Y+r.H)-20)
		}
	}

	status := fmt.Sprintf("octave %d  %s  %s  %s", v.Octave, v.Mode, v.Instrument, v.Theme.Name)
	if g.songs.Playing() {
		status += "  ▶ midi"
	}
	if n := g.tracker.Down(); n > 1 {
		status += fmt.Sprintf("  %d touches", n)
	}
	if g.notice != "" {
		status += "  |  " + g.notice
	}
	ebitenutil.DebugPrintAt(screen, status, margin, g.height-statusHeight+6)
}

// drawGradient paints the background as horizontal bands
func drawGradient(screen *ebiten.Image, th theme.Theme, w, h int) {
	const bands = 32
	colors := th.Gradient(bands)
	bandH := float32(h) / bands
	for i, c := range colors {
		vector.DrawFilledRect(screen, 0, float32(i)*bandH, float32(w), bandH+1, rgba(c, 0xff), false)
	}
}

func rgba(c theme.RGB, a uint8) color.NRGBA {
	return color.NRGBA{c[0], c[1], c[2], a}
}
