package connectivity

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Monitor probes a URL on a fixed interval and treats any HTTP response as
// "online". Transport failures and timeouts count as "offline".
type Monitor struct {
	*hub

	probeURL string
	interval time.Duration
	client   *http.Client
}

func NewMonitor(probeURL string, interval, timeout time.Duration) *Monitor {
	return &Monitor{
		hub:      newHub(),
		probeURL: probeURL,
		interval: interval,
		client:   &http.Client{Timeout: timeout},
	}
}

// Start probes immediately, then on every tick until ctx is done.
func (m *Monitor) Start(ctx context.Context) error {
	defer m.hub.close()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Probe(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// Probe runs one reachability check and publishes the result.
func (m *Monitor) Probe(ctx context.Context) bool {
	connected := m.reachable(ctx)
	if ctx.Err() != nil {
		return connected
	}

	if connected != m.IsConnected() {
		slog.Info("connectivity changed", "connected", connected)
	}
	m.set(connected)

	return connected
}

func (m *Monitor) reachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		slog.Error("invalid connectivity probe url", "url", m.probeURL, "err", err)
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		slog.Debug("connectivity probe failed", "url", m.probeURL, "err", err)
		return false
	}
	resp.Body.Close()

	return true
}

// Manual is a signal driven by explicit calls, for hosts that learn about
// connectivity from elsewhere and for tests.
type Manual struct {
	*hub
}

func NewManual(connected bool) *Manual {
	m := &Manual{hub: newHub()}
	m.hub.mu.Lock()
	m.hub.connected = connected
	m.hub.known = true
	m.hub.mu.Unlock()
	return m
}

func (m *Manual) SetConnected(connected bool) {
	m.set(connected)
}

func (m *Manual) Close() {
	m.hub.close()
}
