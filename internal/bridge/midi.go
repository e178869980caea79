package bridge

import (
	"fmt"
	"log/slog"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Status byte nibbles per the MIDI 1.0 spec, masked against a 4-bit
// channel number.
const (
	statusNoteOn  byte = 0x90
	statusNoteOff byte = 0x80
	statusCC      byte = 0xB0
)

// RtMidiSink is the MIDI capability backed by a real hardware or virtual
// MIDI output port via rtmidi. A bridge can run with zero ports present
// (MIDI sink stays enabled but disconnected — NoteOn/NoteOff/CC/Raw all
// report "not connected" rather than failing) until Connect selects one.
type RtMidiSink struct {
	logger *slog.Logger
	driver *rtmididrv.Driver

	mu   sync.Mutex
	out  drivers.Out
	name string
}

// NewRtMidiSink opens the rtmidi driver without connecting to any port;
// ListPorts enumerates them.
func NewRtMidiSink(logger *slog.Logger) (*RtMidiSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("open rtmidi driver: %w", err)
	}
	return &RtMidiSink{logger: logger, driver: drv}, nil
}

func (s *RtMidiSink) ListPorts() []MIDIPort {
	outs, err := s.driver.Outs()
	if err != nil {
		s.logger.Warn("midi list ports failed", "error", err)
		return nil
	}
	ports := make([]MIDIPort, len(outs))
	for i, o := range outs {
		ports[i] = MIDIPort{Index: o.Number(), Name: o.String()}
	}
	return ports
}

func (s *RtMidiSink) Connect(index int) (string, error) {
	outs, err := s.driver.Outs()
	if err != nil {
		return "", fmt.Errorf("list midi ports: %w", err)
	}
	var target drivers.Out
	for _, o := range outs {
		if o.Number() == index {
			target = o
			break
		}
	}
	if target == nil {
		return "", fmt.Errorf("midi port %d not found", index)
	}
	if err := target.Open(); err != nil {
		return "", fmt.Errorf("open midi port %d: %w", index, err)
	}

	s.mu.Lock()
	if s.out != nil {
		s.out.Close()
	}
	s.out = target
	s.name = target.String()
	s.mu.Unlock()

	return target.String(), nil
}

func (s *RtMidiSink) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out != nil {
		s.out.Close()
		s.out = nil
		s.name = ""
	}
}

func (s *RtMidiSink) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out != nil && s.out.IsOpen()
}

func (s *RtMidiSink) send(bytes []byte) error {
	s.mu.Lock()
	out := s.out
	s.mu.Unlock()

	if out == nil {
		return fmt.Errorf("midi: no port connected")
	}
	return midi.Send(out, bytes)
}

func (s *RtMidiSink) NoteOn(note, velocity, channel uint8) error {
	return s.send([]byte{statusNoteOn | (channel & 0x0F), note & 0x7F, velocity & 0x7F})
}

func (s *RtMidiSink) NoteOff(note, velocity, channel uint8) error {
	return s.send([]byte{statusNoteOff | (channel & 0x0F), note & 0x7F, velocity & 0x7F})
}

func (s *RtMidiSink) CC(controller, value, channel uint8) error {
	return s.send([]byte{statusCC | (channel & 0x0F), controller & 0x7F, value & 0x7F})
}

func (s *RtMidiSink) Raw(bytes [3]uint8) error {
	return s.send(bytes[:])
}

// Close tears down the driver, closing any open port.
func (s *RtMidiSink) Close() error {
	s.Disconnect()
	return s.driver.Close()
}
