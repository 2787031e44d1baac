// Package schedule runs a function periodically behind a cancellable handle.
package schedule

import (
	"sync"
	"time"
)

// Handle controls a task started with Every.
type Handle struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Every calls fn on each tick of interval, starting one interval from now.
// fn runs on the ticker goroutine; long work should be handed off by fn.
func Every(interval time.Duration, fn func()) *Handle {
	h := &Handle{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(h.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				select {
				case <-h.stop:
					return
				default:
				}
				fn()
			}
		}
	}()

	return h
}

// Stop cancels the task and waits for the ticker goroutine to exit, so fn
// is never called after Stop returns. Stop is safe to call more than once
// and on a nil handle.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
