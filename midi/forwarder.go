package midi

import (
	"fmt"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-keys/debug"
	"go-keys/keyboard"
)

// Forwarder mirrors key activations to a MIDI output port so an external
// synth can play along
type Forwarder struct {
	mu      sync.Mutex
	send    func(msg gomidi.Message) error
	channel uint8
	sent    [keyboard.SlotCount]int8
}

// OpenForwarder finds an output port whose name contains portName
func OpenForwarder(portName string, channel uint8) (*Forwarder, error) {
	var out drivers.Out
	want := strings.ToLower(portName)
	for _, op := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(op.String()), want) {
			out = op
			break
		}
	}
	if out == nil {
		return nil, fmt.Errorf("no output port matching %q", portName)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", out, err)
	}
	debug.Log("fwd", "forwarding to %s channel %d", out, channel)
	return NewForwarder(send, channel), nil
}

func NewForwarder(send func(msg gomidi.Message) error, channel uint8) *Forwarder {
	f := &Forwarder{send: send, channel: channel & 0x0F}
	for i := range f.sent {
		f.sent[i] = -1
	}
	return f
}

func (f *Forwarder) NoteOn(t keyboard.Tone) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := uint8(t.Slot.Note.MIDI)
	if err := f.send(gomidi.NoteOn(f.channel, key, 100)); err != nil {
		debug.Log("fwd", "note on %d: %v", key, err)
		return
	}
	f.sent[t.Slot.Index] = int8(key)
}

// NoteOff releases the note that was sent for the slot, which differs from
// the slot's current note after an octave change
func (f *Forwarder) NoteOff(t keyboard.Tone) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := f.sent[t.Slot.Index]
	if key < 0 {
		return
	}
	f.sent[t.Slot.Index] = -1
	if err := f.send(gomidi.NoteOff(f.channel, uint8(key))); err != nil {
		debug.Log("fwd", "note off %d: %v", key, err)
	}
}

// Close silences anything still sounding
func (f *Forwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, key := range f.sent {
		if key >= 0 {
			f.send(gomidi.NoteOff(f.channel, uint8(key)))
			f.sent[i] = -1
		}
	}
	return nil
}
