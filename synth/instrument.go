package synth

import (
	"fmt"
	"math"
	"strings"
)

// Instrument is the timbre choice exposed to the user
type Instrument int

const (
	Piano Instrument = iota
	Synth
	Organ
)

var Instruments = []Instrument{Piano, Synth, Organ}

func (i Instrument) String() string {
	switch i {
	case Piano:
		return "piano"
	case Synth:
		return "synth"
	case Organ:
		return "organ"
	}
	return fmt.Sprintf("instrument(%d)", int(i))
}

func ParseInstrument(s string) (Instrument, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "piano", "":
		return Piano, nil
	case "synth":
		return Synth, nil
	case "organ":
		return Organ, nil
	}
	return Piano, fmt.Errorf("unknown instrument %q", s)
}

// Next cycles through Instruments
func (i Instrument) Next() Instrument {
	return Instruments[(int(i)+1)%len(Instruments)]
}

// Waveform maps each instrument to its oscillator shape
func (i Instrument) Waveform() Waveform {
	switch i {
	case Synth:
		return Triangle
	case Organ:
		return Square
	case Piano:
		return Sine
	}
	return Sine
}

type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	case Square:
		return "square"
	}
	return fmt.Sprintf("waveform(%d)", int(w))
}

// At evaluates the waveform at phase in [0,1), output in [-1,1]
func (w Waveform) At(phase float64) float64 {
	switch w {
	case Triangle:
		return 1 - 4*math.Abs(phase-0.5)
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	}
	return math.Sin(2 * math.Pi * phase)
}
