package bridge

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nugget/mio-bridge/internal/protocol"
)

// Sinks bundles the capability interfaces a Router dispatches to. Any
// field may be nil, meaning that sink is disabled; Dispatch treats a nil
// sink as SinkDisabled rather than an error.
type Sinks struct {
	Keyboard    Keyboard
	Mouse       Mouse
	MIDI        MIDI
	Broadcaster Broadcaster
	OSC         OSCSender
}

// DispatchRecord is a bounded trace of one dispatched command, kept for
// diagnostics the same way a bounded audit log records why a past
// decision was made.
type DispatchRecord struct {
	Timestamp time.Time
	Kind      protocol.Kind
	Outcome   string // "ok", "disabled", "error"
	Detail    string
}

// Stats tallies dispatch outcomes by command kind.
type Stats struct {
	TotalDispatched int64
	ErrorCounts     map[protocol.Kind]int64
}

// Router is the single point of dispatch from a parsed Command to the
// enabled sink. It holds no connection state of its own — only the
// bounded diagnostic trail — and is safe to share across goroutines,
// though in practice only the event loop's single goroutine ever calls
// Dispatch (see internal/eventloop).
type Router struct {
	logger *slog.Logger
	sinks  Sinks

	mu          sync.RWMutex
	recent      []DispatchRecord
	maxRecent   int
	errorCounts map[protocol.Kind]int64
	total       int64
}

// NewRouter builds a Router over the given sinks. A nil logger defaults
// to slog.Default().
func NewRouter(logger *slog.Logger, sinks Sinks) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		logger:      logger,
		sinks:       sinks,
		maxRecent:   256,
		errorCounts: make(map[protocol.Kind]int64),
	}
}

// Dispatch routes a single Command to its sink. The returned string is an
// advisory message (e.g. "midi sink disabled") for the caller to log or
// forward; err is non-nil only for a live sink's own failure, never for a
// disabled sink.
func (r *Router) Dispatch(cmd protocol.Command) (string, error) {
	var advisory string
	var err error

	switch cmd.Kind {
	case protocol.KeyDown:
		advisory, err = r.dispatchKeyboard(func(k Keyboard) error { return k.KeyDown(cmd.Key) })
	case protocol.KeyUp:
		advisory, err = r.dispatchKeyboard(func(k Keyboard) error { return k.KeyUp(cmd.Key) })
	case protocol.KeyTap:
		advisory, err = r.dispatchKeyboard(func(k Keyboard) error { return k.KeyTap(cmd.Key) })
	case protocol.KeyType:
		advisory, err = r.dispatchKeyboard(func(k Keyboard) error { return k.KeyType(cmd.Text) })

	case protocol.MouseMove:
		advisory, err = r.dispatchMouse(func(m Mouse) error { return m.MoveTo(cmd.X, cmd.Y) })
	case protocol.MouseMoveRel:
		advisory, err = r.dispatchMouse(func(m Mouse) error { return m.MoveRelative(cmd.X, cmd.Y) })
	case protocol.MouseClick:
		advisory, err = r.dispatchMouse(func(m Mouse) error { return m.Click(cmd.Button) })
	case protocol.MouseDown:
		advisory, err = r.dispatchMouse(func(m Mouse) error { return m.ButtonDown(cmd.Button) })
	case protocol.MouseUp:
		advisory, err = r.dispatchMouse(func(m Mouse) error { return m.ButtonUp(cmd.Button) })
	case protocol.MouseScroll:
		advisory, err = r.dispatchScroll(cmd.X, cmd.Y)

	case protocol.MidiNoteOn:
		advisory, err = r.dispatchMIDI(func(m MIDI) error { return m.NoteOn(cmd.Note, cmd.Velocity, cmd.Channel) })
	case protocol.MidiNoteOff:
		advisory, err = r.dispatchMIDI(func(m MIDI) error { return m.NoteOff(cmd.Note, cmd.Velocity, cmd.Channel) })
	case protocol.MidiCc:
		advisory, err = r.dispatchMIDI(func(m MIDI) error { return m.CC(cmd.Controller, cmd.Value, cmd.Channel) })
	case protocol.MidiRaw:
		advisory, err = r.dispatchMIDI(func(m MIDI) error { return m.Raw(cmd.RawBytes) })

	case protocol.WsBroadcast:
		advisory, err = r.dispatchBroadcast(fmt.Sprintf(`{"id":"%s","value":%s}`, cmd.ID, cmd.WsValue))
	case protocol.WsRaw:
		advisory, err = r.dispatchBroadcast(cmd.Payload)

	case protocol.OscMessage:
		advisory, err = r.dispatchOSC(func(o OSCSender) error { return o.Send(cmd.Address, cmd.Args) })

	default:
		return "", fmt.Errorf("router: unknown command kind %v", cmd.Kind)
	}

	r.record(cmd.Kind, advisory, err)
	return advisory, err
}

// dispatchScroll performs the vertical component before the horizontal
// one whenever both are non-zero, matching the invariant downstream
// sinks (and the physical scroll wheel they emulate) expect.
func (r *Router) dispatchScroll(x, y int32) (string, error) {
	return r.dispatchMouse(func(m Mouse) error {
		if y != 0 {
			if err := m.Scroll(AxisVertical, y); err != nil {
				return err
			}
		}
		if x != 0 {
			if err := m.Scroll(AxisHorizontal, x); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Router) dispatchKeyboard(fn func(Keyboard) error) (string, error) {
	if r.sinks.Keyboard == nil {
		return "keyboard sink disabled", nil
	}
	if err := fn(r.sinks.Keyboard); err != nil {
		return "", fmt.Errorf("keyboard: %w", err)
	}
	return "", nil
}

func (r *Router) dispatchMouse(fn func(Mouse) error) (string, error) {
	if r.sinks.Mouse == nil {
		return "mouse sink disabled", nil
	}
	if err := fn(r.sinks.Mouse); err != nil {
		return "", fmt.Errorf("mouse: %w", err)
	}
	return "", nil
}

func (r *Router) dispatchMIDI(fn func(MIDI) error) (string, error) {
	if r.sinks.MIDI == nil {
		return "midi sink disabled", nil
	}
	if !r.sinks.MIDI.IsConnected() {
		return "midi sink not connected", nil
	}
	if err := fn(r.sinks.MIDI); err != nil {
		return "", fmt.Errorf("midi: %w", err)
	}
	return "", nil
}

func (r *Router) dispatchBroadcast(text string) (string, error) {
	if r.sinks.Broadcaster == nil {
		return "websocket sink disabled", nil
	}
	r.sinks.Broadcaster.Publish(text)
	return "", nil
}

func (r *Router) dispatchOSC(fn func(OSCSender) error) (string, error) {
	if r.sinks.OSC == nil {
		return "osc sink disabled", nil
	}
	if err := fn(r.sinks.OSC); err != nil {
		return "", fmt.Errorf("osc: %w", err)
	}
	return "", nil
}

// ReleaseAll sends a KeyUp for every name in held directly to the
// keyboard sink, bypassing Dispatch's bookkeeping. Called by the event
// loop on watchdog timeout and on shutdown/disconnect.
func (r *Router) ReleaseAll(held []string) {
	if r.sinks.Keyboard == nil {
		return
	}
	for _, key := range held {
		if err := r.sinks.Keyboard.KeyUp(key); err != nil {
			r.logger.Warn("release_all key up failed", "key", key, "error", err)
		}
	}
}

func (r *Router) record(kind protocol.Kind, advisory string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	outcome := "ok"
	detail := advisory
	if err != nil {
		outcome = "error"
		detail = err.Error()
		r.errorCounts[kind]++
		r.logger.Warn("dispatch error", "kind", kind, "error", err)
	} else if advisory != "" {
		outcome = "disabled"
	}

	if len(r.recent) >= r.maxRecent {
		r.recent = r.recent[1:]
	}
	r.recent = append(r.recent, DispatchRecord{
		Timestamp: time.Now(),
		Kind:      kind,
		Outcome:   outcome,
		Detail:    detail,
	})
}

// Stats returns a snapshot of dispatch counters.
func (r *Router) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[protocol.Kind]int64, len(r.errorCounts))
	for k, v := range r.errorCounts {
		counts[k] = v
	}
	return Stats{TotalDispatched: r.total, ErrorCounts: counts}
}

// Recent returns up to limit of the most recent dispatch records, newest
// last. limit<=0 returns the full retained trail.
func (r *Router) Recent(limit int) []DispatchRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.recent) {
		limit = len(r.recent)
	}
	start := len(r.recent) - limit
	out := make([]DispatchRecord, limit)
	copy(out, r.recent[start:])
	return out
}
