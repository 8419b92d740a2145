package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/denizsincar29/goerror"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-keys/keyboard"
	gkmidi "go-keys/midi"
)

// e aborts with a logged message on setup errors
var e = goerror.NewError(slog.New(slog.NewTextHandler(os.Stderr, nil)))

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		monitor()
	case "leds":
		testLEDs()
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list     - List MIDI ports and how go-keys treats them")
	fmt.Println("  monitor  - Show controller input mapped to keys")
	fmt.Println("  leds     - Paint the ten keys on a Launchpad")
	fmt.Println("  poll     - Poll for device changes")
}

func ports() ([]drivers.In, []drivers.Out, bool) {
	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: midi.GetInPorts(), outs: midi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, true
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return nil, nil, false
	}
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ins, outs, ok := ports()
	if !ok {
		return
	}
	for i, p := range ins {
		fmt.Printf("  %d: %-40s %s\n", i, p.String(), gkmidi.Classify(p.String()))
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

// printer is a session output that logs key activity
type printer struct {
	start time.Time
}

func (p printer) NoteOn(t keyboard.Tone) {
	fmt.Printf("[%6dms] on  %c %-4s %7.2fHz\n", time.Since(p.start).Milliseconds(), t.Slot.Symbol, t.Slot.Note.Name, t.Slot.Note.Frequency)
}

func (p printer) NoteOff(t keyboard.Tone) {
	fmt.Printf("[%6dms] off %c\n", time.Since(p.start).Milliseconds(), t.Slot.Symbol)
}

func monitor() {
	fmt.Println("Watching for controllers. Play notes or pads; Ctrl+C to exit.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := keyboard.NewSession(keyboard.DefaultSettings(), printer{start: time.Now()})
	dm := gkmidi.NewDeviceManager(true)
	go dm.Run(ctx)

	for ev := range dm.Events() {
		fmt.Printf("%s %s (port %d), %d connected\n", ev.ID, ev.Type, ev.Port, len(dm.Controllers()))
		if ev.Type != gkmidi.DeviceConnected {
			continue
		}
		if ev.Controller.Type() == gkmidi.ControllerLaunchpad {
			s.AddOutput(gkmidi.NewPadLEDs(ev.Controller))
		}
		go gkmidi.Attach(ctx, ev.Controller, s, ev.Port)
	}
}

func testLEDs() {
	fmt.Println("Painting keys on the Launchpad...")

	ins, outs, ok := ports()
	if !ok {
		return
	}
	var in drivers.In
	for _, p := range ins {
		if gkmidi.Classify(p.String()) == gkmidi.ControllerLaunchpad {
			in = p
			break
		}
	}
	if in == nil {
		fmt.Println("No Launchpad found")
		return
	}
	var out drivers.Out
	for _, p := range outs {
		if strings.EqualFold(p.String(), in.String()) {
			out = p
			break
		}
	}

	lp, err := gkmidi.NewLaunchpadController(in.String(), in, out)
	e.Must(err, "Failed to open Launchpad")
	defer lp.Close()

	s := keyboard.NewSession(keyboard.DefaultSettings(), gkmidi.NewPadLEDs(lp))
	for i := 0; i < keyboard.SlotCount; i++ {
		id := keyboard.PadContact(0xff, i)
		s.Press(id, i)
		time.Sleep(120 * time.Millisecond)
		s.Release(id)
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()
	fmt.Println("Done!")
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect controllers to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins, outs, ok := ports()
		if !ok {
			time.Sleep(2 * time.Second)
			continue
		}

		var inNames, outNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Outputs: %v\n", outNames)
			for _, name := range inNames {
				fmt.Printf("  Input: %s -> %s\n", name, gkmidi.Classify(name))
			}

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
