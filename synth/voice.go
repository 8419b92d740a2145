package synth

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
)

const bytesPerSample = 4 // mono float32

// Voice is a single oscillator with a linear release ramp. It is read by the
// audio backend on its own goroutine.
type Voice struct {
	mu         sync.Mutex
	wave       Waveform
	freq       float64
	gain       float64
	sampleRate int
	phase      float64

	releasing bool
	remaining int // samples left in the release ramp
	total     int
	done      bool
}

func NewVoice(wave Waveform, freq, gain float64, sampleRate int) *Voice {
	return &Voice{
		wave:       wave,
		freq:       freq,
		gain:       gain,
		sampleRate: sampleRate,
	}
}

// Release starts fading out over n samples. A second call is ignored.
func (v *Voice) Release(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.releasing {
		return
	}
	v.releasing = true
	if n < 1 {
		n = 1
	}
	v.remaining = n
	v.total = n
}

func (v *Voice) Done() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.done
}

func (v *Voice) Read(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.done {
		return 0, io.EOF
	}

	n := 0
	step := v.freq / float64(v.sampleRate)
	for n+bytesPerSample <= len(p) {
		env := 1.0
		if v.releasing {
			if v.remaining <= 0 {
				v.done = true
				break
			}
			env = float64(v.remaining) / float64(v.total)
			v.remaining--
		}
		s := float32(v.wave.At(v.phase) * v.gain * env)
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(s))
		n += bytesPerSample

		v.phase += step
		v.phase -= math.Floor(v.phase)
	}

	if v.done {
		return n, io.EOF
	}
	return n, nil
}
