package synth

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
	"time"
)

type fakePlayer struct {
	r      io.Reader
	played bool
	closed bool
}

func (p *fakePlayer) Play()        { p.played = true }
func (p *fakePlayer) Close() error { p.closed = true; return nil }

type fakeBackend struct {
	players []*fakePlayer
}

func (b *fakeBackend) NewPlayer(r io.Reader) Player {
	p := &fakePlayer{r: r}
	b.players = append(b.players, p)
	return p
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func newTestEngine(opts Options) (*Engine, *fakeBackend, *[]*fakeTimer) {
	b := &fakeBackend{}
	e := NewEngineWithBackend(b, opts)
	timers := &[]*fakeTimer{}
	e.schedule = func(d time.Duration, f func()) timer {
		t := &fakeTimer{d: d, f: f}
		*timers = append(*timers, t)
		return t
	}
	return e, b, timers
}

func sustainTimers(timers []*fakeTimer, sustain time.Duration) []*fakeTimer {
	var out []*fakeTimer
	for _, t := range timers {
		if t.d == sustain {
			out = append(out, t)
		}
	}
	return out
}

func TestInstrumentWaveforms(t *testing.T) {
	want := map[Instrument]Waveform{Piano: Sine, Synth: Triangle, Organ: Square}
	for _, inst := range Instruments {
		if got := inst.Waveform(); got != want[inst] {
			t.Errorf("%s: expected %s, got %s", inst, want[inst], got)
		}
	}
	if Organ.Next() != Piano {
		t.Fatalf("expected organ to wrap to piano")
	}
	if _, err := ParseInstrument("kazoo"); err == nil {
		t.Fatalf("expected error for unknown instrument")
	}
}

func TestWaveformRange(t *testing.T) {
	for _, w := range []Waveform{Sine, Triangle, Square} {
		for i := 0; i < 100; i++ {
			v := w.At(float64(i) / 100)
			if v < -1 || v > 1 {
				t.Fatalf("%s out of range at %d: %f", w, i, v)
			}
		}
	}
	if Triangle.At(0.5) != 1 || Triangle.At(0) != -1 {
		t.Fatalf("triangle peaks misplaced")
	}
}

func TestVoiceReleaseEndsWithEOF(t *testing.T) {
	v := NewVoice(Square, 100, 0.5, 1000)
	buf := make([]byte, 16*bytesPerSample)

	n, err := v.Read(buf)
	if err != nil || n != len(buf) {
		t.Fatalf("expected full read, got n=%d err=%v", n, err)
	}
	first := math.Float32frombits(binary.LittleEndian.Uint32(buf))
	if first != 0.5 {
		t.Fatalf("expected square at gain 0.5, got %f", first)
	}

	v.Release(4)
	n, err = v.Read(buf)
	if err != io.EOF {
		t.Fatalf("expected EOF after release, got %v", err)
	}
	if n != 4*bytesPerSample {
		t.Fatalf("expected 4 release samples, got %d bytes", n)
	}
	if !v.Done() {
		t.Fatalf("voice should be done")
	}
	if _, err := v.Read(buf); err != io.EOF {
		t.Fatalf("expected EOF on drained voice")
	}
}

func TestEngineStartStop(t *testing.T) {
	e, b, _ := newTestEngine(Options{Sustain: 0})
	e.Start(3, 440, Piano)
	if len(b.players) != 1 || !b.players[0].played {
		t.Fatalf("expected one playing player")
	}
	if !e.Sounding(3) {
		t.Fatalf("expected key 3 sounding")
	}
	e.Stop(3)
	if e.Sounding(3) {
		t.Fatalf("expected key 3 released")
	}
	if !b.players[0].r.(*Voice).releasing {
		t.Fatalf("expected voice to ramp out")
	}
}

func TestEngineSustainExpires(t *testing.T) {
	e, _, timers := newTestEngine(Options{Sustain: 180 * time.Millisecond})
	e.Start(0, 261.63, Piano)
	st := sustainTimers(*timers, 180*time.Millisecond)
	if len(st) != 1 {
		t.Fatalf("expected one sustain timer, got %d", len(st))
	}
	st[0].f()
	if e.Sounding(0) {
		t.Fatalf("expected sustain to release the key")
	}
}

func TestEngineStaleTimerIgnored(t *testing.T) {
	e, _, timers := newTestEngine(Options{Sustain: 180 * time.Millisecond})

	e.Start(0, 261.63, Piano)
	e.Stop(0)
	e.Start(0, 261.63, Piano)

	st := sustainTimers(*timers, 180*time.Millisecond)
	if len(st) != 2 {
		t.Fatalf("expected two sustain timers, got %d", len(st))
	}
	if !st[0].stopped {
		t.Fatalf("expected first timer to be cancelled on stop")
	}

	// even if the old timer already fired it must not cut the new tone
	st[0].f()
	if !e.Sounding(0) {
		t.Fatalf("stale timer released a newer activation")
	}

	st[1].f()
	if e.Sounding(0) {
		t.Fatalf("current timer should release the key")
	}
}

func TestEngineRetriggerReleasesPrevious(t *testing.T) {
	e, b, _ := newTestEngine(Options{Sustain: 0})
	e.Start(1, 100, Organ)
	e.Start(1, 200, Organ)
	if len(b.players) != 2 {
		t.Fatalf("expected two players, got %d", len(b.players))
	}
	if !b.players[0].r.(*Voice).releasing {
		t.Fatalf("expected first voice released on retrigger")
	}
	if b.players[1].r.(*Voice).releasing {
		t.Fatalf("second voice should still ring")
	}
}

func TestEngineClosesPlayersAfterRelease(t *testing.T) {
	e, b, timers := newTestEngine(Options{Sustain: 0, Release: 10 * time.Millisecond})
	e.Start(2, 300, Synth)
	e.Stop(2)
	for _, tm := range *timers {
		tm.f()
	}
	if !b.players[0].closed {
		t.Fatalf("expected player closed after release")
	}
}
