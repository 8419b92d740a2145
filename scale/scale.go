package scale

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects which semitone offsets populate the key slots
type Mode int

const (
	Diatonic Mode = iota
	Chromatic
)

const (
	SlotCount = 10

	MinOctave     = 1
	MaxOctave     = 7
	DefaultOctave = 4

	// A4
	ReferencePitch = 440.0
	ReferenceMIDI  = 69
)

var (
	diatonicOffsets  = [SlotCount]int{0, 2, 4, 5, 7, 9, 11, 12, 14, 16}
	chromaticOffsets = [SlotCount]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
)

func (m Mode) String() string {
	switch m {
	case Diatonic:
		return "diatonic"
	case Chromatic:
		return "chromatic"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode accepts "diatonic" (or "major") and "chromatic"
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "diatonic", "major", "":
		return Diatonic, nil
	case "chromatic":
		return Chromatic, nil
	}
	return Diatonic, fmt.Errorf("unknown scale mode %q", s)
}

// Next cycles diatonic -> chromatic -> diatonic
func (m Mode) Next() Mode {
	if m == Diatonic {
		return Chromatic
	}
	return Diatonic
}

// Offsets returns the semitone offsets from the octave root for a mode
func Offsets(m Mode) [SlotCount]int {
	if m == Chromatic {
		return chromaticOffsets
	}
	return diatonicOffsets
}

// Note is one computed key pitch
type Note struct {
	Name      string
	MIDI      int
	Frequency float64
}

// ComputeNotes maps an octave and mode to ten notes in equal temperament.
// The octave is expected to be in range already; see ClampOctave.
func ComputeNotes(octave int, m Mode) [SlotCount]Note {
	var notes [SlotCount]Note
	root := RootMIDI(octave)
	for i, off := range Offsets(m) {
		notes[i] = Note{
			Name:      pitchClasses[off%12] + fmt.Sprint(octave+off/12),
			MIDI:      root + off,
			Frequency: Frequency(root + off),
		}
	}
	return notes
}

// RootMIDI is the MIDI number of C in the given octave (C4 = 60)
func RootMIDI(octave int) int {
	return 12 * (octave + 1)
}

// Frequency converts a MIDI note number to Hz
func Frequency(midi int) float64 {
	return ReferencePitch * math.Pow(2, float64(midi-ReferenceMIDI)/12)
}

// NoteName returns the scientific pitch name of a MIDI note, e.g. "C#4"
func NoteName(midi int) string {
	if midi < 0 {
		return ""
	}
	return fmt.Sprintf("%s%d", pitchClasses[midi%12], midi/12-1)
}

func ClampOctave(o int) int {
	if o < MinOctave {
		return MinOctave
	}
	if o > MaxOctave {
		return MaxOctave
	}
	return o
}
