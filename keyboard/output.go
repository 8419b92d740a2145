package keyboard

import "go-keys/synth"

// SynthOutput sounds activated keys on a tone engine
type SynthOutput struct {
	Engine *synth.Engine
}

func (o SynthOutput) NoteOn(t Tone) {
	o.Engine.Start(t.Slot.Index, t.Slot.Note.Frequency, t.Instrument)
}

func (o SynthOutput) NoteOff(t Tone) {
	o.Engine.Stop(t.Slot.Index)
}
