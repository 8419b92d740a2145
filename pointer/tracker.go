// Package pointer turns sampled pointer positions (touches, a held mouse
// button) into key contacts. Front ends that poll input once per frame
// report everything that is down; anything missing from a frame has lifted.
package pointer

import "go-keys/keyboard"

type Point struct {
	X, Y float64
}

// Sink receives contact changes; keyboard.Session implements it
type Sink interface {
	Update(id keyboard.ContactID, slot int, ok bool)
	Release(id keyboard.ContactID)
}

type binding struct {
	slot int
	ok   bool
}

type Tracker struct {
	layout keyboard.Layout
	last   map[keyboard.ContactID]binding
}

func NewTracker(l keyboard.Layout) *Tracker {
	return &Tracker{layout: l, last: make(map[keyboard.ContactID]binding)}
}

func (t *Tracker) SetLayout(l keyboard.Layout) {
	t.layout = l
}

// Frame reports the pointers down this frame. Pointers whose key changed
// since the last frame are moved, pointers no longer down are released.
func (t *Tracker) Frame(s Sink, down map[keyboard.ContactID]Point) {
	for id := range t.last {
		if _, ok := down[id]; !ok {
			delete(t.last, id)
			s.Release(id)
		}
	}
	for id, p := range down {
		slot, ok := t.layout.Hit(p.X, p.Y)
		b := binding{slot, ok}
		if prev, seen := t.last[id]; seen && prev == b {
			continue
		}
		t.last[id] = b
		s.Update(id, slot, ok)
	}
}

// Cancel releases every pointer, e.g. when the window loses focus
func (t *Tracker) Cancel(s Sink) {
	for id := range t.last {
		s.Release(id)
	}
	clear(t.last)
}

// Down is the number of pointers being tracked
func (t *Tracker) Down() int {
	return len(t.last)
}
