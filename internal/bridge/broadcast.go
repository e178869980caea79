package bridge

import "sync"

// broadcastBuffer is the per-subscriber channel depth. A subscriber that
// falls this far behind is evicted rather than allowed to block Publish
// — Publish must never wait on a slow WebSocket client.
const broadcastBuffer = 32

// BroadcastHub is the Broadcaster capability: a single-producer,
// multi-consumer fan-out of text messages to WebSocket connections. It
// has no notion of connections itself — internal/wsserver subscribes one
// channel per accepted connection and forwards from it to the socket.
type BroadcastHub struct {
	mu   sync.Mutex
	subs map[chan string]struct{}
}

// NewBroadcastHub returns an empty hub.
func NewBroadcastHub() *BroadcastHub {
	return &BroadcastHub{subs: make(map[chan string]struct{})}
}

// Subscribe registers a new subscriber channel. The caller must range
// over it until Unsubscribe, draining it promptly so it is never the
// slowest reader.
func (h *BroadcastHub) Subscribe() chan string {
	ch := make(chan string, broadcastBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (h *BroadcastHub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish fans text out to every current subscriber. A subscriber whose
// buffer is full is evicted (removed and its channel closed) rather than
// blocking — the publisher side never waits on a slow reader.
func (h *BroadcastHub) Publish(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- text:
		default:
			delete(h.subs, ch)
			close(ch)
		}
	}
}

// SubscriberCount reports how many connections are currently attached.
func (h *BroadcastHub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
