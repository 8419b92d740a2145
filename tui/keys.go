package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play       key.Binding
	OctaveDown key.Binding
	OctaveUp   key.Binding
	Mode       key.Binding
	Instrument key.Binding
	Theme      key.Binding
	Labels     key.Binding
	Song       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var playKeys = []string{
	"q", "w", "e", "r", "t", "y", "u", "i", "o", "p",
	"Q", "W", "E", "R", "T", "Y", "U", "I", "O", "P",
}

func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

func defaultKeyMap() keyMap {
	return keyMap{
		Play:       key.NewBinding(key.WithKeys(playKeys...), key.WithHelp("q-p", "play")),
		OctaveDown: Key("octave down", "z"),
		OctaveUp:   Key("octave up", "x"),
		Mode:       Key("scale", "c"),
		Instrument: Key("instrument", "v"),
		Theme:      Key("theme", "b"),
		Labels:     Key("labels", "h"),
		Song:       Key("midi file", "m"),
		Help:       Key("more", "?"),
		Quit:       Key("quit", "esc", "ctrl+c"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.OctaveDown, k.OctaveUp, k.Song, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.OctaveDown, k.OctaveUp},
		{k.Mode, k.Instrument, k.Theme, k.Labels},
		{k.Song, k.Help, k.Quit},
	}
}
