// Package eventloop owns the Router and the held-key watchdog on a
// single goroutine. Every sink call this loop makes runs serialized on
// that one goroutine, so an adapter shim that is not safe for
// concurrent use can still be driven from here: there is only ever one
// caller.
package eventloop

import (
	"context"
	"log/slog"
	"time"

	"github.com/nugget/mio-bridge/internal/bridge"
	"github.com/nugget/mio-bridge/internal/config"
	"github.com/nugget/mio-bridge/internal/protocol"
	"github.com/nugget/mio-bridge/internal/uiaction"
)

// Sources bundles every channel the loop selects over. WebSocket is
// optional (nil channel blocks forever in a select, which is exactly
// "never fires" — fine when the websocket sink is disabled).
type Sources struct {
	SerialLines <-chan string
	WsLines     <-chan string
	Actions     <-chan uiaction.Action
}

// Loop is the single dispatch goroutine: parse an incoming line, route
// it, and track held keys for the watchdog.
type Loop struct {
	logger           *slog.Logger
	router           *bridge.Router
	watchdogInterval time.Duration

	held         map[string]struct{}
	seenThisTick map[string]struct{}
}

// New builds a Loop. A nil logger defaults to slog.Default(); a
// non-positive watchdogInterval defaults to 100ms.
func New(logger *slog.Logger, router *bridge.Router, watchdogInterval time.Duration) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	if watchdogInterval <= 0 {
		watchdogInterval = 100 * time.Millisecond
	}
	return &Loop{
		logger:           logger,
		router:           router,
		watchdogInterval: watchdogInterval,
		held:             make(map[string]struct{}),
		seenThisTick:     make(map[string]struct{}),
	}
}

// Run blocks, multiplexing the sources until stop is closed or the
// serial channel closes (a nil SerialLines never fires, so the loop
// then runs until stop or Quit). On return it releases every held key.
func (l *Loop) Run(stop <-chan struct{}, src Sources) {
	ticker := time.NewTicker(l.watchdogInterval)
	defer ticker.Stop()
	defer func() { l.router.ReleaseAll(l.heldKeys()) }()

	for {
		select {
		case <-stop:
			return

		case line, ok := <-src.SerialLines:
			if !ok {
				return
			}
			l.handleLine(line, true)

		case line, ok := <-src.WsLines:
			if !ok {
				// WebSocket disabled or server stopped; keep running on
				// serial alone.
				src.WsLines = nil
				continue
			}
			l.handleLine(line, false)

		case action, ok := <-src.Actions:
			if !ok {
				src.Actions = nil
				continue
			}
			if action.Kind == uiaction.Quit {
				return
			}

		case <-ticker.C:
			l.watchdogTick()
		}
	}
}

// handleLine parses and dispatches one line. watchdogProtected is true
// only for serial-originated input — WebSocket commands are not subject
// to the held-key liveness check, since the websocket connection has its
// own liveness (ping/pong) independent of serial.
func (l *Loop) handleLine(line string, watchdogProtected bool) {
	cmd, ok := protocol.Parse(line)
	if !ok {
		l.logger.Log(context.Background(), config.LevelTrace, "rejected malformed line", "line", line)
		return
	}

	if watchdogProtected {
		l.trackHeldKey(cmd)
	}

	advisory, err := l.router.Dispatch(cmd)
	if err != nil {
		l.logger.Warn("dispatch failed", "kind", cmd.Kind, "error", err)
		return
	}
	if advisory != "" {
		l.logger.Log(context.Background(), config.LevelTrace, advisory, "kind", cmd.Kind)
	}
}

func (l *Loop) trackHeldKey(cmd protocol.Command) {
	switch cmd.Kind {
	case protocol.KeyDown:
		l.held[cmd.Key] = struct{}{}
		l.seenThisTick[cmd.Key] = struct{}{}
	case protocol.KeyUp:
		delete(l.held, cmd.Key)
		delete(l.seenThisTick, cmd.Key)
	}
}

// watchdogTick releases every held key that wasn't refreshed by a new
// key:down since the last tick, then starts a fresh observation window.
func (l *Loop) watchdogTick() {
	var stale []string
	for key := range l.held {
		if _, seen := l.seenThisTick[key]; !seen {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		delete(l.held, key)
	}
	if len(stale) > 0 {
		l.logger.Info("watchdog released stale keys", "keys", stale)
		l.router.ReleaseAll(stale)
	}
	l.seenThisTick = make(map[string]struct{})
}

func (l *Loop) heldKeys() []string {
	keys := make([]string, 0, len(l.held))
	for k := range l.held {
		keys = append(keys, k)
	}
	return keys
}
