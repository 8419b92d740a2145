// Package midifile loads Standard MIDI Files and plays them on the keyboard.
package midifile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-keys/debug"
	"go-keys/scale"
)

var (
	// ErrUnreachable means the file could not be fetched or read
	ErrUnreachable = errors.New("midi file unreachable")
	// ErrMalformed means the bytes are not a usable MIDI file
	ErrMalformed = errors.New("malformed midi file")
)

const (
	DefaultBPM = 120.0
	maxSize    = 16 << 20
)

// Note is one sounding note in wall-clock time
type Note struct {
	Name     string
	Key      uint8
	Channel  uint8
	Velocity uint8
	Start    time.Duration
	Duration time.Duration
}

// Song is every note of a file, sorted by start time
type Song struct {
	Notes []Note
	BPM   float64 // first tempo in the file
}

// Length is the end of the last note
func (s *Song) Length() time.Duration {
	var end time.Duration
	for _, n := range s.Notes {
		if e := n.Start + n.Duration; e > end {
			end = e
		}
	}
	return end
}

// Open loads src, fetching http(s) URLs once and reading anything else from disk
func Open(ctx context.Context, src string) (*Song, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		data, err = Fetch(ctx, http.DefaultClient, src)
	} else {
		data, err = os.ReadFile(src)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrUnreachable, err)
		}
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Fetch downloads url with a single GET
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s", ErrUnreachable, url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnreachable, err)
	}
	debug.Log("midifile", "fetched %s (%d bytes)", url, len(data))
	return data, nil
}

type held struct {
	tick     int64
	velocity uint8
}

// Parse decodes a Standard MIDI File and flattens all tracks into one sorted
// note list with tempo-aware timing.
func Parse(data []byte) (*Song, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	song := &Song{BPM: DefaultBPM}
	tempoFound := false
	at := func(tick int64) time.Duration {
		return time.Duration(s.TimeAt(tick)) * time.Microsecond
	}

	for _, track := range s.Tracks {
		var abs int64
		open := make(map[[2]uint8][]held)

		for _, ev := range track {
			abs += int64(ev.Delta)

			var bpm float64
			if !tempoFound && ev.Message.GetMetaTempo(&bpm) {
				song.BPM = bpm
				tempoFound = true
				continue
			}

			msg := gomidi.Message(ev.Message)
			var ch, key, vel uint8
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				k := [2]uint8{ch, key}
				open[k] = append(open[k], held{tick: abs, velocity: vel})
			case msg.GetNoteEnd(&ch, &key):
				k := [2]uint8{ch, key}
				starts := open[k]
				if len(starts) == 0 {
					continue
				}
				h := starts[0]
				open[k] = starts[1:]
				song.Notes = append(song.Notes, newNote(ch, key, h, abs, at))
			}
		}

		// notes never switched off end with their track
		for k, starts := range open {
			for _, h := range starts {
				song.Notes = append(song.Notes, newNote(k[0], k[1], h, abs, at))
			}
		}
	}

	if len(song.Notes) == 0 {
		return nil, fmt.Errorf("%w: no notes", ErrMalformed)
	}

	sort.SliceStable(song.Notes, func(i, j int) bool {
		if song.Notes[i].Start != song.Notes[j].Start {
			return song.Notes[i].Start < song.Notes[j].Start
		}
		return song.Notes[i].Key < song.Notes[j].Key
	})
	return song, nil
}

func newNote(ch, key uint8, h held, end int64, at func(int64) time.Duration) Note {
	start := at(h.tick)
	return Note{
		Name:     scale.NoteName(int(key)),
		Key:      key,
		Channel:  ch,
		Velocity: h.velocity,
		Start:    start,
		Duration: at(end) - start,
	}
}
