// Package protocol parses serial-line bridge commands into typed values.
//
// Every message is a single line (`\n`-terminated). Format:
//
//	PREFIX:SUBCOMMAND,arg1,arg2,...
//
// Examples:
//
//	key:tap,a              -> KeyTap("a")
//	mouse:move,100,200     -> MouseMove{X:100,Y:200}
//	midi:note_on,60,127    -> MidiNoteOn{Note:60,Velocity:127,Channel:0}
//	ws:temperature,23.5    -> WsBroadcast{ID:"temperature",WsValue:"23.5"}
//	osc:/sensor/temp,23.5  -> OscMessage{Address:"/sensor/temp",Args:["23.5"]}
package protocol

// Kind tags which variant of Command is populated.
type Kind int

const (
	KeyDown Kind = iota
	KeyUp
	KeyTap
	KeyType
	MouseMove
	MouseMoveRel
	MouseClick
	MouseDown
	MouseUp
	MouseScroll
	MidiNoteOn
	MidiNoteOff
	MidiCc
	MidiRaw
	WsBroadcast
	WsRaw
	OscMessage
)

// Command is a parsed bridge command. Only the fields relevant to Kind
// are populated; Go has no tagged union, so this struct plays that role
// the way narrow request/response structs elsewhere in this codebase do.
type Command struct {
	Kind Kind

	// Keyboard
	Key  string // KeyDown, KeyUp, KeyTap
	Text string // KeyType

	// Mouse
	X, Y   int32  // MouseMove, MouseMoveRel, MouseScroll
	Button string // MouseClick, MouseDown, MouseUp

	// MIDI
	Note, Velocity, Controller, Value, Channel uint8
	RawBytes                                   [3]uint8

	// WebSocket
	ID      string // WsBroadcast
	WsValue string // WsBroadcast
	Payload string // WsRaw

	// OSC
	Address string
	Args    []string
}
