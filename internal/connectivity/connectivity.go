// Package connectivity reports whether the network is reachable and pushes transitions to subscribers.
package connectivity

import (
	"sync"

	"github.com/0x0BSoD/heroNews/internal/broadcast"
)

// hub keeps the latest status and fans transitions out through a
// broadcast.Hub, so callbacks run one at a time on one goroutine.
type hub struct {
	mu        sync.Mutex
	connected bool
	known     bool

	events *broadcast.Hub[bool]
	once   sync.Once
}

func newHub() *hub {
	return &hub{events: broadcast.New[bool]()}
}

func (h *hub) IsConnected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

// Subscribe registers fn for every future transition. The returned function
// removes the subscription.
func (h *hub) Subscribe(fn func(connected bool)) func() {
	return h.events.Subscribe(fn)
}

// set records the latest status and publishes it when it changed.
// The first observation always publishes.
func (h *hub) set(connected bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	changed := !h.known || h.connected != connected
	h.connected = connected
	h.known = true

	if changed {
		h.events.Publish(connected)
	}
}

func (h *hub) close() {
	h.once.Do(h.events.Close)
}
