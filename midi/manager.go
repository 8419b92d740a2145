package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-keys/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
	Port       int
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// DeviceManager handles hot-plug detection of MIDI controllers
type DeviceManager struct {
	controllers map[string]Controller
	ports       map[string]int
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
	keyboards   bool
	nextPort    int
}

// NewDeviceManager creates a new device manager. With keyboards false only
// Launchpads are picked up.
func NewDeviceManager(keyboards bool) *DeviceManager {
	return &DeviceManager{
		controllers: make(map[string]Controller),
		ports:       make(map[string]int),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		keyboards:   keyboards,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{inPorts: gomidi.GetInPorts(), outPorts: gomidi.GetOutPorts()}
	}()

	var inPorts []drivers.In
	var outPorts []drivers.Out

	select {
	case result := <-ch:
		inPorts = result.inPorts
		outPorts = result.outPorts
	case <-time.After(3 * time.Second):
		// CoreMIDI is hung - skip this scan
		debug.Log("ctrl", "port scan timed out")
		return
	case <-ctx.Done():
		return
	}

	seenIDs := make(map[string]bool)

	for _, inPort := range inPorts {
		id := inPort.String()
		kind := Classify(id)
		if kind == ControllerUnknown || (kind == ControllerKeyboard && !dm.keyboards) {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var c Controller
		var err error
		switch kind {
		case ControllerLaunchpad:
			c, err = NewLaunchpadController(id, inPort, matchOut(id, outPorts))
		default:
			c, err = NewKeyboardController(id, inPort)
		}
		if err != nil {
			debug.Log("ctrl", "open %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		port, ok := dm.ports[id]
		if !ok {
			dm.nextPort++
			port = dm.nextPort
			dm.ports[id] = port
		}
		dm.mu.Unlock()

		debug.Log("ctrl", "connected %s (%s)", id, kind)
		dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Controller: c, ID: id, Port: port})
	}

	// Check for disconnects
	dm.mu.Lock()
	var gone []DeviceEvent
	for id, c := range dm.controllers {
		if !seenIDs[id] {
			c.Close()
			delete(dm.controllers, id)
			gone = append(gone, DeviceEvent{Type: DeviceDisconnected, ID: id, Port: dm.ports[id]})
		}
	}
	dm.mu.Unlock()

	for _, ev := range gone {
		debug.Log("ctrl", "disconnected %s", ev.ID)
		dm.emit(ctx, ev)
	}
}

func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) {
	select {
	case dm.events <- ev:
	case <-ctx.Done():
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func matchOut(name string, outPorts []drivers.Out) drivers.Out {
	name = strings.ToLower(name)
	for _, op := range outPorts {
		if strings.ToLower(op.String()) == name {
			return op
		}
	}
	return nil
}

// Ports that never carry a player's input
var ignoredPorts = []string{"through", "dummy", "midi clock", "rtmidi"}

// Classify decides what kind of controller an input port name belongs to
func Classify(name string) ControllerType {
	name = strings.ToLower(name)
	if isLaunchpad(name) {
		return ControllerLaunchpad
	}
	if strings.Contains(name, "launchpad") {
		// DAW and secondary ports of a Launchpad
		return ControllerUnknown
	}
	for _, p := range ignoredPorts {
		if strings.Contains(name, p) {
			return ControllerUnknown
		}
	}
	return ControllerKeyboard
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
