// Package wsserver runs the WebSocket endpoint bridge clients connect
// to: every accepted connection gets the same broadcast fan-out, and
// anything a client sends is forwarded to Incoming for the event loop
// to parse as a line command. These per-connection goroutines never
// touch the Router; only the internal/eventloop goroutine does.
package wsserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nugget/mio-bridge/internal/bridge"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// incomingBuffer bounds how far a burst of client-originated messages
	// can outrun the event loop before new ones are dropped.
	incomingBuffer = 256
)

// Server accepts WebSocket connections, subscribes each to a
// bridge.BroadcastHub, and forwards inbound client text to a shared
// incoming channel.
type Server struct {
	logger *slog.Logger
	hub    *bridge.BroadcastHub

	upgrader websocket.Upgrader
	incoming chan string

	httpServer *http.Server

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewServer builds a Server bound to addr ("host:port"). A nil logger
// defaults to slog.Default().
func NewServer(addr string, hub *bridge.BroadcastHub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger:   logger,
		hub:      hub,
		incoming: make(chan string, incomingBuffer),
		conns:    make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Bridge clients are same-origin LAN tools, not browser pages
			// that need CORS-style origin checks.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleConn)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Incoming returns the channel of text messages received from any
// connected client.
func (s *Server) Incoming() <-chan string {
	return s.incoming
}

// ListenAndServe blocks serving connections until Shutdown is called.
// It returns http.ErrServerClosed on a clean shutdown, matching
// net/http.Server's contract.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	s.logger.Info("websocket server listening", "addr", s.httpServer.Addr)
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server and closes all open connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleConn(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	sub := s.hub.Subscribe()
	s.logger.Info("websocket client connected", "remote", r.RemoteAddr, "subscribers", s.hub.SubscriberCount())

	done := make(chan struct{})
	go s.writePump(conn, sub, done)
	s.readPump(conn, r.RemoteAddr)

	close(done)
	s.hub.Unsubscribe(sub)
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
	s.logger.Info("websocket client disconnected", "remote", r.RemoteAddr, "subscribers", s.hub.SubscriberCount())
}

// readPump blocks reading client frames and forwards text messages to
// Incoming until the connection errors or closes.
func (s *Server) readPump(conn *websocket.Conn, remote string) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read error", "remote", remote, "error", err)
			}
			return
		}
		select {
		case s.incoming <- string(data):
		default:
			s.logger.Warn("incoming buffer full, dropping client message", "remote", remote)
		}
	}
}

// writePump forwards broadcast messages to the client and sends
// periodic pings, the standard gorilla/websocket pattern for a single
// writer goroutine per connection.
func (s *Server) writePump(conn *websocket.Conn, sub chan string, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
