package synth

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"go-keys/debug"
)

const (
	DefaultSampleRate = 44100
	DefaultGain       = 0.18
	DefaultSustain    = 180 * time.Millisecond
	DefaultRelease    = 10 * time.Millisecond
)

// Player is the part of an audio output stream the engine drives
type Player interface {
	Play()
	Close() error
}

// Backend opens a stream that pulls samples from r
type Backend interface {
	NewPlayer(r io.Reader) Player
}

type timer interface {
	Stop() bool
}

type Options struct {
	SampleRate int
	Gain       float64
	// Sustain is how long a tone rings before it releases on its own.
	// Zero holds the tone until Stop.
	Sustain time.Duration
	Release time.Duration
}

func DefaultOptions() Options {
	return Options{
		SampleRate: DefaultSampleRate,
		Gain:       DefaultGain,
		Sustain:    DefaultSustain,
		Release:    DefaultRelease,
	}
}

type activeVoice struct {
	voice  *Voice
	player Player
	token  uint64
	timer  timer
}

// Engine plays one voice per key
type Engine struct {
	opts    Options
	backend Backend

	mu     sync.Mutex
	voices map[int]*activeVoice
	token  uint64

	schedule func(d time.Duration, f func()) timer
}

type otoBackend struct {
	ctx *oto.Context
}

func (b otoBackend) NewPlayer(r io.Reader) Player {
	return b.ctx.NewPlayer(r)
}

// NewEngine opens the default audio device. oto allows one context per
// process, so create a single engine and share it.
func NewEngine(opts Options) (*Engine, error) {
	opts = opts.withDefaults()
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   opts.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	<-ready
	debug.Log("synth", "audio ready rate=%d sustain=%s release=%s", opts.SampleRate, opts.Sustain, opts.Release)
	return NewEngineWithBackend(otoBackend{ctx: ctx}, opts), nil
}

func NewEngineWithBackend(b Backend, opts Options) *Engine {
	return &Engine{
		opts:    opts.withDefaults(),
		backend: b,
		voices:  make(map[int]*activeVoice),
		schedule: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
	}
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.Gain <= 0 {
		o.Gain = DefaultGain
	}
	if o.Sustain < 0 {
		o.Sustain = 0
	}
	if o.Release <= 0 {
		o.Release = DefaultRelease
	}
	return o
}

// Start sounds key at freq. A voice already playing on key is released first.
func (e *Engine) Start(key int, freq float64, inst Instrument) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if prev, ok := e.voices[key]; ok {
		e.releaseLocked(key, prev)
	}

	e.token++
	v := NewVoice(inst.Waveform(), freq, e.opts.Gain, e.opts.SampleRate)
	av := &activeVoice{
		voice:  v,
		player: e.backend.NewPlayer(v),
		token:  e.token,
	}
	e.voices[key] = av
	av.player.Play()

	if e.opts.Sustain > 0 {
		token := av.token
		av.timer = e.schedule(e.opts.Sustain, func() {
			e.expire(key, token)
		})
	}
	debug.LogEvery(20, "synth", "start key=%d freq=%.2f wave=%s", key, freq, inst.Waveform())
}

// Stop releases the voice on key, if any
func (e *Engine) Stop(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if av, ok := e.voices[key]; ok {
		e.releaseLocked(key, av)
	}
}

// StopAll releases every sounding voice
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key, av := range e.voices {
		e.releaseLocked(key, av)
	}
}

// Sounding reports whether key has a voice that has not been released
func (e *Engine) Sounding(key int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.voices[key]
	return ok
}

// expire is the sustain timer callback; a token from an older activation is ignored
func (e *Engine) expire(key int, token uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	av, ok := e.voices[key]
	if !ok || av.token != token {
		return
	}
	e.releaseLocked(key, av)
}

func (e *Engine) releaseLocked(key int, av *activeVoice) {
	if av.timer != nil {
		av.timer.Stop()
	}
	delete(e.voices, key)

	n := int(e.opts.Release.Seconds() * float64(e.opts.SampleRate))
	av.voice.Release(n)

	// oto stops the player once the voice returns EOF; close after the ramp
	player := av.player
	e.schedule(e.opts.Release+50*time.Millisecond, func() {
		player.Close()
	})
}

// Close releases all voices
func (e *Engine) Close() error {
	e.StopAll()
	return nil
}
