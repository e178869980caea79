// Package uiaction defines the small set of control actions the event
// loop accepts from whatever is driving it — a TUI frontend in the
// original design, a signal handler in this headless build.
package uiaction

// Kind identifies a user- or signal-driven control action.
type Kind int

const (
	// Quit requests a graceful shutdown: release all held keys,
	// disconnect MIDI, close the serial port and WebSocket server.
	Quit Kind = iota
	// ReloadConfig is emitted on SIGHUP. The event loop does not act on
	// it: the config file is not re-read and no setting changes without
	// a restart.
	ReloadConfig
)

// Action is one control action delivered to the event loop.
type Action struct {
	Kind Kind
}

// Producer is anything that feeds Actions to the event loop. The
// headless build's signal.Producer and a future TUI's keypress handler
// both satisfy this by simply exposing a channel.
type Producer interface {
	Actions() <-chan Action
}
