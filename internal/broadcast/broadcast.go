// Package broadcast delivers values to subscribers in publish order from one goroutine.
package broadcast

import (
	"sync"
)

// Hub queues published values without blocking the publisher and hands
// them to every subscriber on a single delivery goroutine. Subscribers may
// call back into the publisher; they must not call Close.
type Hub[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []T
	subs   map[int]func(T)
	nextID int
	closed bool
	done   chan struct{}
}

func New[T any]() *Hub[T] {
	h := &Hub[T]{
		subs: map[int]func(T){},
		done: make(chan struct{}),
	}
	h.cond = sync.NewCond(&h.mu)

	go h.run()

	return h
}

// Subscribe registers fn and returns a function that removes it.
func (h *Hub[T]) Subscribe(fn func(T)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Publish enqueues v. Values published after Close are dropped.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.queue = append(h.queue, v)
	h.cond.Signal()
}

// Close delivers what is already queued, then stops the delivery goroutine.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		h.cond.Broadcast()
	}
	h.mu.Unlock()

	<-h.done
}

func (h *Hub[T]) run() {
	defer close(h.done)

	for {
		h.mu.Lock()
		for len(h.queue) == 0 && !h.closed {
			h.cond.Wait()
		}
		if len(h.queue) == 0 {
			h.mu.Unlock()
			return
		}

		v := h.queue[0]
		var zero T
		h.queue[0] = zero
		h.queue = h.queue[1:]

		subs := make([]func(T), 0, len(h.subs))
		for id := 0; id < h.nextID; id++ {
			if fn, ok := h.subs[id]; ok {
				subs = append(subs, fn)
			}
		}
		h.mu.Unlock()

		for _, fn := range subs {
			fn(v)
		}
	}
}
