package midifile

import (
	"context"

	"go-keys/debug"
)

// Control starts and stops background playback for front ends that poll once
// per frame. Each run is tagged so a summary from a stopped run never clears
// a newer one.
type Control struct {
	player *Player
	open   func(ctx context.Context, src string) (*Song, error)
	cancel context.CancelFunc
	id     int
	done   chan done
}

type done struct {
	id     int
	notice string
}

func NewControl(p *Player) *Control {
	return &Control{player: p, open: Open, done: make(chan done, 4)}
}

func (c *Control) Playing() bool {
	return c.cancel != nil
}

// Toggle stops a running song, or starts src. It returns the notice to show.
func (c *Control) Toggle(src string, target Target) string {
	if c.Playing() {
		c.Stop()
		return "stopping"
	}
	if src == "" {
		return "no MIDI file configured"
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.id++
	id := c.id
	go func() {
		song, err := c.open(ctx, src)
		var res Result
		if err == nil {
			res, err = c.player.Play(ctx, song, target)
		}
		if err != nil {
			debug.Log("midifile", "playback: %v", err)
		}
		c.done <- done{id: id, notice: Summary(res, err)}
	}()
	return "loading " + src
}

func (c *Control) Stop() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Poll returns the summary of a finished run, if one is waiting
func (c *Control) Poll() (string, bool) {
	select {
	case d := <-c.done:
		if d.id == c.id {
			c.cancel = nil
		}
		return d.notice, true
	default:
		return "", false
	}
}
