// Package bridge holds the dispatch Router and the narrow capability
// interfaces each output sink implements. Keyboard, Mouse, MIDI,
// Broadcaster and OSCSender are deliberately small — just enough surface
// for Router.Dispatch to drive them and for tests to fake them without
// real hardware, the same shape as the narrow consumer-side interfaces
// declared next to their use elsewhere in this codebase (e.g.
// anticipationMatcher, wakeStateGetter).
package bridge

// Keyboard synthesizes key presses on the host.
type Keyboard interface {
	KeyDown(name string) error
	KeyUp(name string) error
	KeyTap(name string) error
	KeyType(text string) error
}

// Mouse synthesizes pointer motion, clicks, and scroll.
type Mouse interface {
	MoveTo(x, y int32) error
	MoveRelative(dx, dy int32) error
	Click(button string) error
	ButtonDown(button string) error
	ButtonUp(button string) error
	// Scroll scrolls by amount along one axis. Callers must invoke the
	// vertical component before the horizontal one when both are
	// non-zero: this method itself only performs one axis at a time so
	// the Router controls the ordering.
	Scroll(axis Axis, amount int32) error
}

// Axis selects which direction Mouse.Scroll moves.
type Axis int

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

// MIDI is a stateful MIDI output connection: port discovery, connect, and
// the note/cc/raw send operations.
type MIDI interface {
	ListPorts() []MIDIPort
	Connect(index int) (name string, err error)
	Disconnect()
	IsConnected() bool
	NoteOn(note, velocity, channel uint8) error
	NoteOff(note, velocity, channel uint8) error
	CC(controller, value, channel uint8) error
	Raw(bytes [3]uint8) error
}

// MIDIPort describes one available MIDI output port.
type MIDIPort struct {
	Index int
	Name  string
}

// Broadcaster fans a text message out to zero or more WebSocket
// subscribers. Publish never blocks and never reports failure for zero
// subscribers.
type Broadcaster interface {
	Publish(text string)
	SubscriberCount() int
}

// OSCSender sends a single OSC message as one UDP datagram to a fixed
// remote endpoint.
type OSCSender interface {
	Send(address string, args []string) error
}
