package midifile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go-keys/debug"
	"go-keys/keyboard"
)

// Target is where playback presses keys; keyboard.Session implements it
type Target interface {
	PressNote(id keyboard.ContactID, name string) bool
	Release(id keyboard.ContactID)
}

// Result counts what happened during playback
type Result struct {
	Played  int
	Skipped int // notes with no key on the current layout
}

type event struct {
	at   time.Duration
	rank int
	on   bool
	note int
}

// Order of events sharing a time. Offs of sounding notes go first so a
// repeated note re-strikes; a zero-length note releases after its own on.
const (
	rankOff = iota
	rankOn
	rankZeroOff
)

// Player schedules a song's notes as key contacts
type Player struct {
	wait func(ctx context.Context, d time.Duration) error
}

func NewPlayer() *Player {
	return &Player{wait: sleep}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Play blocks until the song ends or ctx is cancelled. Keys are looked up by
// note name on the layout as it is when each note starts. Every key the
// player still holds is released when it returns.
func (p *Player) Play(ctx context.Context, song *Song, target Target) (Result, error) {
	events := make([]event, 0, 2*len(song.Notes))
	for i, n := range song.Notes {
		off := event{at: n.Start + n.Duration, rank: rankOff, note: i}
		if n.Duration <= 0 {
			off.rank = rankZeroOff
		}
		events = append(events, event{at: n.Start, rank: rankOn, on: true, note: i}, off)
	}
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.at != b.at {
			return a.at < b.at
		}
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.note < b.note
	})

	var res Result
	pressed := make(map[int]bool)
	release := func() {
		for i := range pressed {
			target.Release(keyboard.PlaybackContact(i))
		}
	}

	var now time.Duration
	for _, ev := range events {
		if err := p.wait(ctx, ev.at-now); err != nil {
			release()
			return res, err
		}
		now = ev.at

		id := keyboard.PlaybackContact(ev.note)
		if !ev.on {
			if pressed[ev.note] {
				target.Release(id)
				delete(pressed, ev.note)
			}
			continue
		}

		n := song.Notes[ev.note]
		if target.PressNote(id, n.Name) {
			pressed[ev.note] = true
			res.Played++
		} else {
			res.Skipped++
		}
	}

	release()
	debug.Log("midifile", "playback done played=%d skipped=%d", res.Played, res.Skipped)
	return res, nil
}

// Summary is the one-line notification a front end shows when playback ends
func Summary(res Result, err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "playback stopped"
	case errors.Is(err, ErrUnreachable):
		return "couldn't load MIDI file"
	case errors.Is(err, ErrMalformed):
		return "MIDI file has no playable notes"
	case err != nil:
		return "playback failed: " + err.Error()
	case res.Skipped > 0:
		return fmt.Sprintf("played %d notes, %d off the keyboard", res.Played, res.Skipped)
	}
	return fmt.Sprintf("played %d notes", res.Played)
}
