package keyboard

import "fmt"

// ContactID identifies one continuous contact (a held key, a touch, a
// pointer drag, a MIDI note). IDs from different sources never collide.
type ContactID int64

type source int64

const (
	sourceKey source = iota + 1
	sourcePointer
	sourceTouch
	sourceMIDI
	sourcePad
	sourcePlayback
)

const sourceShift = 40

func contact(src source, v int64) ContactID {
	return ContactID(int64(src)<<sourceShift | (v & (1<<sourceShift - 1)))
}

func KeyContact(r rune) ContactID         { return contact(sourceKey, int64(r)) }
func PointerContact(button int) ContactID { return contact(sourcePointer, int64(button)) }
func TouchContact(id int) ContactID       { return contact(sourceTouch, int64(id)) }
func PadContact(row, col int) ContactID   { return contact(sourcePad, int64(row)<<8|int64(col)) }
func PlaybackContact(n int) ContactID     { return contact(sourcePlayback, int64(n)) }

// MIDIContact is a held note on a device; port tells devices apart
func MIDIContact(port int, channel, note uint8) ContactID {
	return contact(sourceMIDI, int64(port)<<16|int64(channel)<<8|int64(note))
}

func (c ContactID) String() string {
	v := int64(c) & (1<<sourceShift - 1)
	switch source(int64(c) >> sourceShift) {
	case sourceKey:
		return fmt.Sprintf("key:%c", rune(v))
	case sourcePointer:
		return fmt.Sprintf("pointer:%d", v)
	case sourceTouch:
		return fmt.Sprintf("touch:%d", v)
	case sourceMIDI:
		return fmt.Sprintf("midi:%d/%d/%d", v>>16, (v>>8)&0xff, v&0xff)
	case sourcePad:
		return fmt.Sprintf("pad:%d,%d", v>>8, v&0xff)
	case sourcePlayback:
		return fmt.Sprintf("playback:%d", v)
	}
	return fmt.Sprintf("contact:%d", int64(c))
}
