// Package keyboard holds the ten key slots, the per-contact reconciler that
// turns input updates into key activations, and the session that owns them.
package keyboard

import (
	"unicode"

	"go-keys/scale"
	"go-keys/theme"
)

const SlotCount = scale.SlotCount

// Symbols are the physical keys bound to the slots, left to right
var Symbols = [SlotCount]rune{'Q', 'W', 'E', 'R', 'T', 'Y', 'U', 'I', 'O', 'P'}

// glow accents per slot
var accents = [SlotCount]theme.RGB{
	{0, 255, 255},
	{255, 0, 255},
	{255, 255, 0},
	{255, 128, 0},
	{0, 255, 128},
	{128, 0, 255},
	{0, 128, 255},
	{255, 0, 128},
	{128, 255, 0},
	{0, 255, 64},
}

// Slot is one key region. Index, Symbol and Color never change; Note is
// retuned whenever the octave or mode changes.
type Slot struct {
	Index  int
	Symbol rune
	Color  theme.RGB
	Note   scale.Note
}

// Keyboard is the set of slots and the tuning that drives them
type Keyboard struct {
	slots  [SlotCount]Slot
	octave int
	mode   scale.Mode
}

func New(octave int, mode scale.Mode) *Keyboard {
	k := &Keyboard{octave: scale.ClampOctave(octave), mode: mode}
	for i := range k.slots {
		k.slots[i] = Slot{Index: i, Symbol: Symbols[i], Color: accents[i]}
	}
	k.retune()
	return k
}

func (k *Keyboard) retune() {
	notes := scale.ComputeNotes(k.octave, k.mode)
	for i := range k.slots {
		k.slots[i].Note = notes[i]
	}
}

func (k *Keyboard) Octave() int      { return k.octave }
func (k *Keyboard) Mode() scale.Mode { return k.mode }

// Slots returns a copy of the current slots
func (k *Keyboard) Slots() []Slot {
	out := make([]Slot, SlotCount)
	copy(out, k.slots[:])
	return out
}

func (k *Keyboard) Slot(i int) (Slot, bool) {
	if i < 0 || i >= SlotCount {
		return Slot{}, false
	}
	return k.slots[i], true
}

// SetOctave clamps o to the valid range and reports whether anything changed
func (k *Keyboard) SetOctave(o int) bool {
	o = scale.ClampOctave(o)
	if o == k.octave {
		return false
	}
	k.octave = o
	k.retune()
	return true
}

func (k *Keyboard) ShiftOctave(delta int) bool {
	return k.SetOctave(k.octave + delta)
}

func (k *Keyboard) SetMode(m scale.Mode) bool {
	if m == k.mode {
		return false
	}
	k.mode = m
	k.retune()
	return true
}

// Lookup finds the slot bound to a physical key, ignoring case
func (k *Keyboard) Lookup(symbol rune) (Slot, bool) {
	symbol = unicode.ToUpper(symbol)
	for _, s := range k.slots {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return Slot{}, false
}

// LookupNote finds the slot currently tuned to a note name such as "C#4"
func (k *Keyboard) LookupNote(name string) (Slot, bool) {
	for _, s := range k.slots {
		if s.Note.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}
