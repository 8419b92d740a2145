package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go-keys/keyboard"
	"go-keys/midi"
)

func newTestModel(t *testing.T) (Model, *keyboard.Session) {
	t.Helper()
	s := keyboard.NewSession(keyboard.DefaultSettings())
	m := NewModel(s, Options{SongSrc: filepath.Join(t.TempDir(), "missing.mid")})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model), s
}

func press(t *testing.T, m Model, r rune) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return next.(Model), cmd
}

func TestKeyPressHoldsUntilRelease(t *testing.T) {
	m, s := newTestModel(t)

	m, cmd := press(t, m, 'q')
	if cmd == nil {
		t.Fatal("expected a release tick")
	}
	if !s.Snapshot().Active[0] {
		t.Fatal("expected Q to be active")
	}

	// auto-repeat before the hold expires
	m, _ = press(t, m, 'q')
	id := keyboard.KeyContact('Q')

	next, _ := m.Update(releaseMsg{id: id, seq: 1})
	m = next.(Model)
	if !s.Holding(id) {
		t.Fatal("expected stale release to be ignored after auto-repeat")
	}

	next, _ = m.Update(releaseMsg{id: id, seq: 2})
	m = next.(Model)
	if s.Holding(id) || s.Snapshot().Active[0] {
		t.Fatal("expected Q to be released")
	}
	if len(m.holds) != 0 {
		t.Fatalf("expected no held keys, got %d", len(m.holds))
	}
}

func TestUppercaseKeyPresses(t *testing.T) {
	m, s := newTestModel(t)
	press(t, m, 'P')
	if !s.Snapshot().Active[9] {
		t.Fatal("expected P to be active")
	}
}

func TestMouseDragGlides(t *testing.T) {
	m, s := newTestModel(t)

	// keys are 6 cells wide from column 2 with a 1 cell gap, starting at row 3
	mouse := func(x, y int, action tea.MouseAction) {
		next, _ := m.Update(tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft})
		m = next.(Model)
	}

	mouse(3, 4, tea.MouseActionPress)
	if v := s.Snapshot(); !v.Active[0] {
		t.Fatalf("expected slot 0 active, got %v", v.Active)
	}

	mouse(10, 4, tea.MouseActionMotion)
	if v := s.Snapshot(); v.Active[0] || !v.Active[1] {
		t.Fatalf("expected glide to slot 1, got %v", v.Active)
	}

	// the gap between keys hits nothing
	mouse(15, 4, tea.MouseActionMotion)
	if v := s.Snapshot(); v.Active[1] {
		t.Fatalf("expected gap to release, got %v", v.Active)
	}

	mouse(17, 4, tea.MouseActionMotion)
	mouse(17, 4, tea.MouseActionRelease)
	if v := s.Snapshot(); v.Contacts != 0 || v.Active[2] {
		t.Fatalf("expected release to clear, got contacts=%d active=%v", v.Contacts, v.Active)
	}

	// motion without a button held does nothing
	mouse(3, 4, tea.MouseActionMotion)
	if s.Snapshot().Active[0] {
		t.Fatal("expected hover to play nothing")
	}
}

func TestSettingsKeys(t *testing.T) {
	m, s := newTestModel(t)

	m, _ = press(t, m, 'x')
	if v := s.Snapshot(); v.Octave != 5 {
		t.Fatalf("expected octave 5, got %d", v.Octave)
	}
	m, _ = press(t, m, 'z')
	m, _ = press(t, m, 'z')
	if v := s.Snapshot(); v.Octave != 3 {
		t.Fatalf("expected octave 3, got %d", v.Octave)
	}

	m, _ = press(t, m, 'c')
	if v := s.Snapshot(); v.Mode.String() != "chromatic" {
		t.Fatalf("expected chromatic, got %s", v.Mode)
	}

	m, _ = press(t, m, 'v')
	if v := s.Snapshot(); v.Instrument.String() != "synth" {
		t.Fatalf("expected synth, got %s", v.Instrument)
	}

	m, _ = press(t, m, 'b')
	if v := s.Snapshot(); v.Theme.Name != "neon" {
		t.Fatalf("expected neon, got %s", v.Theme.Name)
	}

	before := m.View()
	m, _ = press(t, m, 'h')
	if !s.Snapshot().HideLabels {
		t.Fatal("expected labels hidden")
	}
	if after := m.View(); strings.Contains(after, "C#3") || !strings.Contains(before, "C#3") {
		t.Fatal("expected label text to disappear from the view")
	}
}

func TestOctaveClampNotice(t *testing.T) {
	m, _ := newTestModel(t)
	for i := 0; i < 5; i++ {
		m, _ = press(t, m, 'x')
	}
	if m.notice != "highest octave" {
		t.Fatalf("expected clamp notice, got %q", m.notice)
	}
}

func TestSongLoadFailureNotifies(t *testing.T) {
	m, s := newTestModel(t)

	m, cmd := press(t, m, 'm')
	if cmd == nil || m.playing == nil {
		t.Fatal("expected playback to start")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)

	if m.playing != nil {
		t.Fatal("expected playback to be over")
	}
	if m.notice != "couldn't load MIDI file" {
		t.Fatalf("expected load notice, got %q", m.notice)
	}
	if v := s.Snapshot(); v.Contacts != 0 {
		t.Fatalf("expected no keys pressed, got %d contacts", v.Contacts)
	}
}

func TestNoSongConfigured(t *testing.T) {
	s := keyboard.NewSession(keyboard.DefaultSettings())
	m := NewModel(s, Options{})
	m, cmd := press(t, m, 'm')
	if cmd != nil {
		t.Fatal("expected no playback without a file")
	}
	if m.notice != "no MIDI file configured" {
		t.Fatalf("unexpected notice %q", m.notice)
	}
}

func TestQuitReleasesEverything(t *testing.T) {
	m, s := newTestModel(t)
	m, _ = press(t, m, 'e')
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if next.(Model).View() != "" {
		t.Fatal("expected empty view after quit")
	}
	if s.Snapshot().Contacts != 0 {
		t.Fatal("expected all contacts released")
	}
}

type stubController struct {
	pads  chan midi.PadEvent
	notes chan midi.NoteEvent
	lit   int
}

func (c *stubController) ID() string                        { return "stub" }
func (c *stubController) Type() midi.ControllerType         { return midi.ControllerLaunchpad }
func (c *stubController) PadEvents() <-chan midi.PadEvent   { return c.pads }
func (c *stubController) NoteEvents() <-chan midi.NoteEvent { return c.notes }
func (c *stubController) SetLEDRGB(row, col int, rgb [3]uint8, channel uint8) error {
	c.lit++
	return nil
}
func (c *stubController) SetLEDBatch(updates []midi.LEDUpdate) error {
	c.lit += len(updates)
	return nil
}
func (c *stubController) Close() error { return nil }

func TestDeviceConnectMirrorsLEDs(t *testing.T) {
	m, _ := newTestModel(t)
	c := &stubController{pads: make(chan midi.PadEvent), notes: make(chan midi.NoteEvent)}

	next, _ := m.Update(DeviceEventMsg{Type: midi.DeviceConnected, Controller: c, ID: "stub", Port: 1})
	m = next.(Model)
	if c.lit != keyboard.SlotCount {
		t.Fatalf("expected %d LEDs painted on connect, got %d", keyboard.SlotCount, c.lit)
	}
	if !strings.Contains(m.View(), "ctrl:1") {
		t.Fatal("expected controller count in header")
	}

	next, _ = m.Update(DeviceEventMsg{Type: midi.DeviceDisconnected, ID: "stub", Port: 1})
	m = next.(Model)
	if len(m.controller) != 0 {
		t.Fatal("expected controller to be forgotten")
	}
	if m.notice != "disconnected stub" {
		t.Fatalf("unexpected notice %q", m.notice)
	}
}
