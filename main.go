package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"go-keys/config"
	"go-keys/debug"
	"go-keys/keyboard"
	"go-keys/midi"
	"go-keys/midifile"
	"go-keys/scale"
	"go-keys/snapshot"
	"go-keys/synth"
	"go-keys/theme"
	"go-keys/tui"
	"go-keys/window"
)

func main() {
	cmd := &cli.Command{
		Name:  "go-keys",
		Usage: "a ten-key musical keyboard for the terminal, touch screens and MIDI controllers",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "config file (default ~/.config/go-keys/config.json)"},
			&cli.BoolFlag{Name: "debug", Usage: "write a debug log to ~/.config/go-keys/debug.log"},
			&cli.IntFlag{Name: "octave", Usage: "starting octave (1-7)"},
			&cli.StringFlag{Name: "mode", Usage: "scale mode: diatonic or chromatic"},
			&cli.StringFlag{Name: "instrument", Usage: "piano, synth or organ"},
			&cli.StringFlag{Name: "theme", Usage: "classic, dark, neon, rainbow or custom"},
			&cli.StringFlag{Name: "midi", Usage: "MIDI file path or URL to play with the m key"},
			&cli.BoolFlag{Name: "hide-labels", Usage: "start with key labels hidden"},
			&cli.BoolFlag{Name: "no-controllers", Usage: "don't look for MIDI controllers"},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if c.Bool("debug") {
				if err := debug.Enable(debug.DefaultPath()); err != nil {
					return ctx, fmt.Errorf("enable debug log: %w", err)
				}
			}
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			debug.Disable()
			return nil
		},
		Action: runTUI,
		Commands: []*cli.Command{
			{
				Name:   "window",
				Usage:  "open the multi-touch window",
				Action: runWindow,
			},
			{
				Name:   "notes",
				Usage:  "print the notes on the ten keys",
				Action: runNotes,
			},
			{
				Name:  "snapshot",
				Usage: "render the keyboard to a PNG",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "go-keys.png", Usage: "PNG file to write"},
					&cli.IntFlag{Name: "width", Value: snapshot.DefaultWidth},
					&cli.IntFlag{Name: "height", Value: snapshot.DefaultHeight},
					&cli.StringFlag{Name: "active", Usage: "keys to show lit, e.g. QET"},
				},
				Action: runSnapshot,
			},
			{
				Name:      "play",
				Usage:     "play a MIDI file through the keyboard without a UI",
				ArgsUsage: "FILE|URL",
				Action:    runPlay,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(c *cli.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if c.IsSet("octave") {
		cfg.Octave = c.Int("octave")
	}
	if c.IsSet("mode") {
		cfg.Mode = c.String("mode")
	}
	if c.IsSet("instrument") {
		cfg.Instrument = c.String("instrument")
	}
	if c.IsSet("theme") {
		cfg.Theme = c.String("theme")
	}
	if c.IsSet("midi") {
		cfg.MIDIFile = c.String("midi")
	}
	if c.Bool("hide-labels") {
		cfg.HideLabels = true
	}
	if c.Bool("no-controllers") {
		cfg.Controllers.AutoConnect = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func settings(cfg *config.Config) (keyboard.Settings, error) {
	inst, err := synth.ParseInstrument(cfg.Instrument)
	if err != nil {
		return keyboard.Settings{}, err
	}
	mode, err := scale.ParseMode(cfg.Mode)
	if err != nil {
		return keyboard.Settings{}, err
	}
	th, err := cfg.ResolveTheme()
	if err != nil {
		return keyboard.Settings{}, err
	}
	return keyboard.Settings{
		Octave:     cfg.Octave,
		Mode:       mode,
		Instrument: inst,
		Theme:      th,
		HideLabels: cfg.HideLabels,
	}, nil
}

// customTheme is the configured custom theme, if any, for theme cycling
func customTheme(cfg *config.Config) *theme.Theme {
	if cfg.Theme != theme.Custom {
		return nil
	}
	th, err := cfg.ResolveTheme()
	if err != nil {
		return nil
	}
	return &th
}

// sound wires the audible outputs: the tone engine and an optional MIDI out
// port. A missing audio device is not fatal; the keyboard still lights up.
func sound(cfg *config.Config, s *keyboard.Session) (cleanup func()) {
	var closers []func() error

	engine, err := synth.NewEngine(cfg.SynthOptions())
	if err != nil {
		fmt.Fprintln(os.Stderr, "audio unavailable:", err)
		debug.Log("main", "audio unavailable: %v", err)
	} else {
		s.AddOutput(keyboard.SynthOutput{Engine: engine})
		closers = append(closers, engine.Close)
	}

	if cfg.SynthOutput.PortName != "" {
		fwd, err := midi.OpenForwarder(cfg.SynthOutput.PortName, uint8(cfg.SynthOutput.Channel))
		if err != nil {
			fmt.Fprintln(os.Stderr, "MIDI out unavailable:", err)
		} else {
			s.AddOutput(fwd)
			closers = append(closers, fwd.Close)
		}
	}

	return func() {
		s.ReleaseAll()
		for _, c := range closers {
			c()
		}
	}
}

func newSession(c *cli.Command) (*config.Config, *keyboard.Session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	set, err := settings(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, keyboard.NewSession(set), nil
}

func runTUI(ctx context.Context, c *cli.Command) error {
	cfg, s, err := newSession(c)
	if err != nil {
		return err
	}
	defer sound(cfg, s)()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var deviceMgr *midi.DeviceManager
	if cfg.Controllers.AutoConnect {
		deviceMgr = midi.NewDeviceManager(true)
		go deviceMgr.Run(ctx)
	}

	m := tui.NewModel(s, tui.Options{
		DeviceMgr: deviceMgr,
		SongSrc:   cfg.MIDIFile,
		Custom:    customTheme(cfg),
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runWindow(ctx context.Context, c *cli.Command) error {
	cfg, s, err := newSession(c)
	if err != nil {
		return err
	}
	defer sound(cfg, s)()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Controllers.AutoConnect {
		deviceMgr := midi.NewDeviceManager(true)
		go deviceMgr.Run(ctx)
		go attachAll(ctx, deviceMgr, s)
	}

	return window.Run(s, window.Options{SongSrc: cfg.MIDIFile, Custom: customTheme(cfg)})
}

// attachAll feeds every controller into the session, for front ends that
// don't track devices themselves
func attachAll(ctx context.Context, dm *midi.DeviceManager, s *keyboard.Session) {
	leds := make(map[string]*midi.PadLEDs)
	for ev := range dm.Events() {
		switch ev.Type {
		case midi.DeviceConnected:
			if ev.Controller.Type() == midi.ControllerLaunchpad {
				leds[ev.ID] = midi.NewPadLEDs(ev.Controller)
				s.AddOutput(leds[ev.ID])
			}
			go midi.Attach(ctx, ev.Controller, s, ev.Port)
		case midi.DeviceDisconnected:
			if l, ok := leds[ev.ID]; ok {
				s.RemoveOutput(l)
				delete(leds, ev.ID)
			}
		}
	}
}

func runNotes(ctx context.Context, c *cli.Command) error {
	_, s, err := newSession(c)
	if err != nil {
		return err
	}
	v := s.Snapshot()

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("KEY", "NOTE", "MIDI", "HZ").
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			if row >= 0 && col == 0 {
				face := v.Theme.Key(row)
				st = st.Background(theme.Lipgloss(face)).Foreground(theme.Lipgloss(theme.LabelColor(face)))
			}
			return st
		})
	for _, sl := range v.Slots {
		t.Row(string(sl.Symbol), sl.Note.Name, fmt.Sprint(sl.Note.MIDI), fmt.Sprintf("%.2f", sl.Note.Frequency))
	}

	fmt.Printf("octave %d, %s\n", v.Octave, v.Mode)
	fmt.Println(t)
	return nil
}

func runSnapshot(ctx context.Context, c *cli.Command) error {
	_, s, err := newSession(c)
	if err != nil {
		return err
	}
	for i, r := range strings.ToUpper(c.String("active")) {
		if !s.PressSymbol(keyboard.KeyContact(r), r) {
			return fmt.Errorf("active key %d: %q is not one of %s", i, r, string(keyboard.Symbols[:]))
		}
	}

	out := c.String("output")
	if err := snapshot.SavePNG(out, s.Snapshot(), c.Int("width"), c.Int("height")); err != nil {
		return err
	}
	fmt.Println("wrote", out)
	return nil
}

func runPlay(ctx context.Context, c *cli.Command) error {
	cfg, s, err := newSession(c)
	if err != nil {
		return err
	}
	src := c.Args().First()
	if src == "" {
		src = cfg.MIDIFile
	}
	if src == "" {
		return errors.New("no MIDI file given")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	song, err := midifile.Open(ctx, src)
	if err != nil {
		return err
	}
	defer sound(cfg, s)()

	fmt.Printf("playing %s: %d notes, %s at %.0f bpm\n", src, len(song.Notes), song.Length().Round(time.Millisecond), song.BPM)
	res, err := midifile.NewPlayer().Play(ctx, song, s)
	fmt.Println(midifile.Summary(res, err))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	// let the last release ramps finish
	time.Sleep(cfg.SynthOptions().Release + 50*time.Millisecond)
	return err
}
