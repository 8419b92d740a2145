package tui

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-keys/debug"
	"go-keys/keyboard"
	"go-keys/midi"
	"go-keys/midifile"
	"go-keys/theme"
	"go-keys/widgets"
)

// Terminals report key presses but never releases. A key contact stays down
// for DefaultHold unless auto-repeat presses it again first.
const DefaultHold = 550 * time.Millisecond

// Screen geometry in cells
const (
	headerRows = 3 // blank, header, blank
	keyRows    = 5
	keyGap     = 1
	keyMargin  = 2
	minKeyW    = 4
	maxKeyW    = 10
)

// Options configures the terminal front end
type Options struct {
	DeviceMgr *midi.DeviceManager // nil disables controllers
	SongSrc   string              // MIDI file path or URL for the m key
	Hold      time.Duration
	Custom    *theme.Theme // configured custom theme joins the theme cycle
}

type attached struct {
	cancel context.CancelFunc
	leds   *midi.PadLEDs
	kind   midi.ControllerType
}

type Model struct {
	Session   *keyboard.Session
	DeviceMgr *midi.DeviceManager
	keys      keyMap
	help      help.Model
	hold      time.Duration
	songSrc   string
	player    *midifile.Player
	custom    []theme.Theme
	layout    keyboard.Layout
	width     int
	quitting  bool
	notice    string
	pointer   bool

	// key contact -> sequence number of its latest press
	holds map[keyboard.ContactID]int
	seq   int

	playing    context.CancelFunc
	playID     int
	controller map[string]*attached
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

type releaseMsg struct {
	id  keyboard.ContactID
	seq int
}

type playDoneMsg struct {
	id     int
	result midifile.Result
	err    error
}

func NewModel(session *keyboard.Session, opts Options) Model {
	if opts.Hold <= 0 {
		opts.Hold = DefaultHold
	}
	m := Model{
		Session:    session,
		DeviceMgr:  opts.DeviceMgr,
		keys:       defaultKeyMap(),
		help:       help.New(),
		hold:       opts.Hold,
		songSrc:    opts.SongSrc,
		player:     midifile.NewPlayer(),
		layout:     keyLayout(80),
		width:      80,
		holds:      make(map[keyboard.ContactID]int),
		controller: make(map[string]*attached),
	}
	if opts.Custom != nil {
		m.custom = []theme.Theme{*opts.Custom}
	}
	return m
}

func ListenForUpdates(session *keyboard.Session) tea.Cmd {
	return func() tea.Msg {
		<-session.Changes()
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Session),
		ListenForDevices(m.DeviceMgr),
	)
}

// keyLayout fits the row of keys into a terminal width
func keyLayout(width int) keyboard.Layout {
	w := (width - 2*keyMargin - keyGap*(keyboard.SlotCount-1)) / keyboard.SlotCount
	w = max(minKeyW, min(maxKeyW, w))
	return keyboard.Layout{
		X:    keyMargin,
		Y:    headerRows,
		KeyW: float64(w),
		KeyH: keyRows,
		Gap:  keyGap,
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.layout = keyLayout(msg.Width)
		m.help.Width = msg.Width

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case releaseMsg:
		if m.holds[msg.id] == msg.seq {
			delete(m.holds, msg.id)
			m.Session.Release(msg.id)
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Session)

	case playDoneMsg:
		if msg.id == m.playID {
			m.playing = nil
		}
		m.notice = midifile.Summary(msg.result, msg.err)
		debug.Log("tui", "playback done: %s", m.notice)

	case DeviceEventMsg:
		m.handleDevice(midi.DeviceEvent(msg))
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.stopPlayback()
		m.Session.ReleaseAll()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Play):
		r := unicode.ToUpper(msg.Runes[0])
		id := keyboard.KeyContact(r)
		if !m.Session.PressSymbol(id, r) {
			return m, nil
		}
		m.seq++
		m.holds[id] = m.seq
		seq := m.seq
		return m, tea.Tick(m.hold, func(time.Time) tea.Msg {
			return releaseMsg{id: id, seq: seq}
		})

	case key.Matches(msg, m.keys.OctaveDown):
		if !m.Session.ShiftOctave(-1) {
			m.notice = "lowest octave"
		}

	case key.Matches(msg, m.keys.OctaveUp):
		if !m.Session.ShiftOctave(1) {
			m.notice = "highest octave"
		}

	case key.Matches(msg, m.keys.Mode):
		m.notice = "scale: " + m.Session.ToggleMode().String()

	case key.Matches(msg, m.keys.Instrument):
		m.notice = "instrument: " + m.Session.CycleInstrument().String()

	case key.Matches(msg, m.keys.Theme):
		next := theme.Cycle(m.Session.Snapshot().Theme.Name, m.custom...)
		m.Session.SetTheme(next)
		m.notice = "theme: " + next.Name

	case key.Matches(msg, m.keys.Labels):
		if m.Session.ToggleLabels() {
			m.notice = "labels hidden"
		} else {
			m.notice = "labels shown"
		}

	case key.Matches(msg, m.keys.Song):
		return m, m.toggleSong()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// handleMouse drives one pointer contact: press binds it, drag glides it
// across keys, release ends it
func (m *Model) handleMouse(msg tea.MouseMsg) {
	id := keyboard.PointerContact(int(tea.MouseButtonLeft))
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.pointer = true
		slot, ok := m.hitTest(msg.X, msg.Y)
		m.Session.Update(id, slot, ok)
	case tea.MouseActionMotion:
		if !m.pointer {
			return
		}
		slot, ok := m.hitTest(msg.X, msg.Y)
		m.Session.Update(id, slot, ok)
	case tea.MouseActionRelease:
		m.pointer = false
		m.Session.Release(id)
	}
}

func (m Model) hitTest(x, y int) (int, bool) {
	return m.layout.Hit(float64(x), float64(y))
}

func (m *Model) toggleSong() tea.Cmd {
	if m.playing != nil {
		m.stopPlayback()
		return nil
	}
	if m.songSrc == "" {
		m.notice = "no MIDI file configured"
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.playing = cancel
	m.playID++
	m.notice = "loading " + m.songSrc
	return playSong(ctx, m.playID, m.songSrc, m.player, m.Session)
}

func (m *Model) stopPlayback() {
	if m.playing != nil {
		m.playing()
		m.playing = nil
	}
}

func playSong(ctx context.Context, id int, src string, player *midifile.Player, target midifile.Target) tea.Cmd {
	return func() tea.Msg {
		song, err := midifile.Open(ctx, src)
		if err != nil {
			return playDoneMsg{id: id, err: err}
		}
		res, err := player.Play(ctx, song, target)
		return playDoneMsg{id: id, result: res, err: err}
	}
}

func (m *Model) handleDevice(event midi.DeviceEvent) {
	switch event.Type {
	case midi.DeviceConnected:
		ctx, cancel := context.WithCancel(context.Background())
		a := &attached{cancel: cancel, kind: event.Controller.Type()}
		if a.kind == midi.ControllerLaunchpad {
			a.leds = midi.NewPadLEDs(event.Controller)
			m.Session.AddOutput(a.leds)
		}
		m.controller[event.ID] = a
		go midi.Attach(ctx, event.Controller, m.Session, event.Port)
		m.notice = "connected " + event.ID

	case midi.DeviceDisconnected:
		if a, ok := m.controller[event.ID]; ok {
			if a.leds != nil {
				m.Session.RemoveOutput(a.leds)
			}
			a.cancel()
			delete(m.controller, event.ID)
		}
		m.notice = "disconnected " + event.ID
	}
}

func (m Model) hasLaunchpad() bool {
	for _, a := range m.controller {
		if a.kind == midi.ControllerLaunchpad {
			return true
		}
	}
	return false
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	v := m.Session.Snapshot()

	headerStyle := lipgloss.NewStyle().Foreground(theme.Lipgloss(v.Theme.Background[1])).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	noticeStyle := lipgloss.NewStyle().
		Foreground(theme.Lipgloss(theme.LabelColor(v.Theme.Background[0]))).
		Background(theme.Lipgloss(v.Theme.Background[0])).
		Padding(0, 1)

	playState := ""
	if m.playing != nil {
		playState = "  ▶ midi"
	}
	deviceStatus := ""
	if n := len(m.controller); n > 0 {
		deviceStatus = fmt.Sprintf("  ctrl:%d", n)
	}
	header := headerStyle.Render(fmt.Sprintf("go-keys  octave %d  %s  %s  %s%s%s",
		v.Octave, v.Mode, v.Instrument, v.Theme.Name, playState, deviceStatus))

	faces := make([]widgets.KeyFace, len(v.Slots))
	for i, sl := range v.Slots {
		f := widgets.KeyFace{Color: v.Theme.Key(i)}
		if v.Active[i] {
			f.Color = v.Theme.Glow(i, sl.Color)
		}
		if !v.HideLabels {
			f.Lines = []string{sl.Note.Name, string(sl.Symbol)}
		}
		faces[i] = f
	}
	keys := widgets.RenderKeyRow(faces, int(m.layout.KeyW), int(m.layout.KeyH), int(m.layout.Gap))
	keys = lipgloss.NewStyle().MarginLeft(int(m.layout.X)).Render(keys)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(keys)
	out.WriteString("\n\n")

	if m.hasLaunchpad() {
		out.WriteString(m.padPreview(v))
		out.WriteString("\n\n")
	}

	if m.notice != "" {
		out.WriteString(noticeStyle.Render(m.notice))
		out.WriteString("\n")
	}
	out.WriteString(dimStyle.Render(m.help.View(m.keys)))

	return out.String()
}

// padPreview mirrors what the Launchpad's bottom rows show
func (m Model) padPreview(v keyboard.View) string {
	grid := make([][]theme.RGB, 2)
	for _, sl := range v.Slots {
		c := theme.Blend(v.Theme.Key(sl.Index), theme.RGB{}, 0.6)
		if v.Active[sl.Index] {
			c = v.Theme.Glow(sl.Index, sl.Color)
		}
		row := sl.Index / 5
		grid[row] = append(grid[row], c)
	}
	legend := lipgloss.JoinVertical(lipgloss.Left,
		widgets.RenderLegendItem(theme.Blend(v.Theme.Key(0), theme.RGB{}, 0.6), "idle", "key at rest"),
		widgets.RenderLegendItem(v.Theme.Glow(0, v.Slots[0].Color), "lit", "key sounding"),
	)
	pads := lipgloss.NewStyle().MarginLeft(int(m.layout.X)).Render(widgets.RenderPadGrid(grid))
	return lipgloss.JoinHorizontal(lipgloss.Top, pads, "  ", legend)
}
