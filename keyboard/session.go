package keyboard

import (
	"sync"

	"go-keys/debug"
	"go-keys/scale"
	"go-keys/synth"
	"go-keys/theme"
)

// Tone is what outputs receive when a key turns on or off
type Tone struct {
	Slot       Slot
	Instrument synth.Instrument
	Face       theme.RGB
}

// Output is a side effect of key activation: sound, LEDs, MIDI out
type Output interface {
	NoteOn(t Tone)
	NoteOff(t Tone)
}

// Refresher is implemented by outputs that mirror the whole keyboard and
// need a repaint when settings change.
type Refresher interface {
	Refresh(v View)
}

// Settings are the user-adjustable parts of a session
type Settings struct {
	Octave     int
	Mode       scale.Mode
	Instrument synth.Instrument
	Theme      theme.Theme
	HideLabels bool
}

func DefaultSettings() Settings {
	th, _ := theme.Lookup(theme.Default)
	return Settings{
		Octave:     scale.DefaultOctave,
		Mode:       scale.Diatonic,
		Instrument: synth.Piano,
		Theme:      th,
	}
}

// View is a consistent copy of session state for rendering
type View struct {
	Octave     int
	Mode       scale.Mode
	Instrument synth.Instrument
	Theme      theme.Theme
	HideLabels bool
	Slots      []Slot
	Active     [SlotCount]bool
	Holders    [SlotCount]int
	Contacts   int
}

// Session owns all keyboard state. Input sources run on different
// goroutines (front end, MIDI devices, file playback), so every method
// takes the lock; updates for a contact apply in call order.
type Session struct {
	mu         sync.Mutex
	kb         *Keyboard
	rec        *Reconciler
	instrument synth.Instrument
	theme      theme.Theme
	hideLabels bool
	active     [SlotCount]bool
	outputs    []Output

	changes chan struct{}
}

func NewSession(set Settings, outputs ...Output) *Session {
	s := &Session{
		kb:         New(set.Octave, set.Mode),
		instrument: set.Instrument,
		theme:      set.Theme,
		hideLabels: set.HideLabels,
		outputs:    outputs,
		changes:    make(chan struct{}, 1),
	}
	s.rec = NewReconciler(sessionActivator{s})
	return s
}

// sessionActivator keeps Activate/Deactivate off the Session's public API
type sessionActivator struct{ s *Session }

func (a sessionActivator) Activate(slot int)   { a.s.activate(slot) }
func (a sessionActivator) Deactivate(slot int) { a.s.deactivate(slot) }

// called with mu held
func (s *Session) activate(slot int) {
	s.active[slot] = true
	t := s.toneLocked(slot)
	debug.Log("key", "on %c %s %.2fHz", t.Slot.Symbol, t.Slot.Note.Name, t.Slot.Note.Frequency)
	for _, o := range s.outputs {
		o.NoteOn(t)
	}
	s.notify()
}

// called with mu held
func (s *Session) deactivate(slot int) {
	s.active[slot] = false
	t := s.toneLocked(slot)
	debug.Log("key", "off %c", t.Slot.Symbol)
	for _, o := range s.outputs {
		o.NoteOff(t)
	}
	s.notify()
}

func (s *Session) toneLocked(slot int) Tone {
	sl, _ := s.kb.Slot(slot)
	return Tone{Slot: sl, Instrument: s.instrument, Face: s.theme.Key(slot)}
}

func (s *Session) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Changes fires (coalesced) whenever anything visible changes
func (s *Session) Changes() <-chan struct{} {
	return s.changes
}

func (s *Session) AddOutput(o Output) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs = append(s.outputs, o)
	if r, ok := o.(Refresher); ok {
		r.Refresh(s.viewLocked())
	}
}

func (s *Session) RemoveOutput(o Output) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, x := range s.outputs {
		if x == o {
			s.outputs = append(s.outputs[:i], s.outputs[i+1:]...)
			return
		}
	}
}

// Update moves contact id onto slot, or off every key when ok is false
func (s *Session) Update(id ContactID, slot int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Update(id, slot, ok)
}

func (s *Session) Press(id ContactID, slot int) {
	s.Update(id, slot, true)
}

// PressSymbol presses the key bound to a physical key. Unknown symbols are
// not an error; they just match nothing.
func (s *Session) PressSymbol(id ContactID, symbol rune) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.kb.Lookup(symbol)
	if !ok {
		return false
	}
	s.rec.Update(id, sl.Index, true)
	return true
}

// PressNote presses the key currently tuned to name
func (s *Session) PressNote(id ContactID, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.kb.LookupNote(name)
	if !ok {
		return false
	}
	s.rec.Update(id, sl.Index, true)
	return true
}

// Release ends contact id (touch end, cancel, key up, note off)
func (s *Session) Release(id ContactID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.End(id)
}

func (s *Session) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.EndAll()
}

// Holding reports whether id is bound to a key
func (s *Session) Holding(id ContactID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rec.Binding(id)
	return ok
}

func (s *Session) ShiftOctave(delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed(s.kb.ShiftOctave(delta))
}

func (s *Session) SetOctave(o int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed(s.kb.SetOctave(o))
}

func (s *Session) SetMode(m scale.Mode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed(s.kb.SetMode(m))
}

func (s *Session) ToggleMode() scale.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed(s.kb.SetMode(s.kb.Mode().Next()))
	return s.kb.Mode()
}

func (s *Session) SetInstrument(i synth.Instrument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed(s.instrument != i)
	s.instrument = i
}

func (s *Session) CycleInstrument() synth.Instrument {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instrument = s.instrument.Next()
	s.changed(true)
	return s.instrument
}

func (s *Session) SetTheme(t theme.Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = t
	s.changed(true)
}

func (s *Session) ToggleLabels() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hideLabels = !s.hideLabels
	s.changed(true)
	return s.hideLabels
}

// changed repaints mirrors and wakes the front end when c is true
func (s *Session) changed(c bool) bool {
	if !c {
		return false
	}
	v := s.viewLocked()
	for _, o := range s.outputs {
		if r, ok := o.(Refresher); ok {
			r.Refresh(v)
		}
	}
	s.notify()
	return true
}

func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		Octave:     s.kb.Octave(),
		Mode:       s.kb.Mode(),
		Instrument: s.instrument,
		Theme:      s.theme,
		HideLabels: s.hideLabels,
		Slots:      s.kb.Slots(),
		Active:     s.active,
		Contacts:   s.rec.Contacts(),
	}
	for i := range v.Holders {
		v.Holders[i] = s.rec.Holders(i)
	}
	return v
}
