package midi

import (
	"context"
	"sync"

	"go-keys/debug"
	"go-keys/keyboard"
	"go-keys/scale"
	"go-keys/theme"
)

// The ten keys sit on the two bottom rows of the grid, five per row
const padsPerRow = 5

func slotPad(slot int) (row, col int) {
	return slot / padsPerRow, slot % padsPerRow
}

func padSlot(row, col int) (int, bool) {
	if row < 0 || row > 1 || col < 0 || col >= padsPerRow {
		return 0, false
	}
	return row*padsPerRow + col, true
}

// Attach feeds a controller's input into the session until its channels
// close or ctx ends. port keeps held notes from different devices apart.
// Contacts still held when the device goes away are released.
func Attach(ctx context.Context, c Controller, s *keyboard.Session, port int) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		pads(ctx, c.PadEvents(), s)
	}()
	go func() {
		defer wg.Done()
		notes(ctx, c.NoteEvents(), s, port)
	}()
	wg.Wait()
	debug.Log("ctrl", "detached %s", c.ID())
}

func pads(ctx context.Context, events <-chan PadEvent, s *keyboard.Session) {
	held := make(map[keyboard.ContactID]bool)
	defer func() {
		for id := range held {
			s.Release(id)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			id := keyboard.PadContact(ev.Row, ev.Col)
			slot, onKey := padSlot(ev.Row, ev.Col)
			if ev.On && onKey {
				s.Press(id, slot)
				held[id] = true
			} else {
				s.Release(id)
				delete(held, id)
			}
		}
	}
}

func notes(ctx context.Context, events <-chan NoteEvent, s *keyboard.Session, port int) {
	held := make(map[keyboard.ContactID]bool)
	defer func() {
		for id := range held {
			s.Release(id)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			id := keyboard.MIDIContact(port, ev.Channel, ev.Note)
			if !ev.On {
				s.Release(id)
				delete(held, id)
				continue
			}
			// notes outside the layout simply match nothing
			if s.PressNote(id, scale.NoteName(int(ev.Note))) {
				held[id] = true
			}
		}
	}
}

// PadLEDs mirrors the keyboard onto a grid controller's LEDs: each key shows
// a dimmed face color, lit keys show their glow.
type PadLEDs struct {
	c Controller
}

func NewPadLEDs(c Controller) *PadLEDs {
	return &PadLEDs{c: c}
}

func (p *PadLEDs) NoteOn(t keyboard.Tone) {
	row, col := slotPad(t.Slot.Index)
	p.c.SetLEDRGB(row, col, glow(t.Face, t.Slot.Color), ChannelStatic)
}

func (p *PadLEDs) NoteOff(t keyboard.Tone) {
	row, col := slotPad(t.Slot.Index)
	p.c.SetLEDRGB(row, col, dim(t.Face), ChannelStatic)
}

func (p *PadLEDs) Refresh(v keyboard.View) {
	updates := make([]LEDUpdate, 0, len(v.Slots))
	for _, sl := range v.Slots {
		row, col := slotPad(sl.Index)
		c := dim(v.Theme.Key(sl.Index))
		if v.Active[sl.Index] {
			c = glow(v.Theme.Key(sl.Index), sl.Color)
		}
		updates = append(updates, LEDUpdate{Row: row, Col: col, Color: c})
	}
	if err := p.c.SetLEDBatch(updates); err != nil {
		debug.Log("lp", "refresh failed: %v", err)
	}
}

func dim(face theme.RGB) [3]uint8 {
	return theme.Blend(face, theme.RGB{}, 0.6)
}

func glow(face, accent theme.RGB) [3]uint8 {
	return theme.Blend(face, accent, 0.85)
}
