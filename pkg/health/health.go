// Package health tracks provider connectivity with a TTL-cached probe so
// status queries stay cheap even under load.
package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/summitchronicles/basecamp/pkg/provider"
)

// DefaultTTL is how long a probe result stays fresh before the next
// status query triggers a new probe.
const DefaultTTL = 30 * time.Second

// Status is the outcome of the most recent connectivity probe.
type Status struct {
	Connected bool      `json:"connected"`
	Detail    string    `json:"detail,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Monitor caches provider connectivity checks for a fixed TTL. Concurrent
// callers during a stale window share a single probe rather than each
// hitting the provider.
type Monitor struct {
	mu     sync.Mutex
	pinger provider.Pinger
	ttl    time.Duration
	logger *zap.Logger

	last    Status
	hasLast bool
}

// NewMonitor creates a monitor around the given pinger. A non-positive
// ttl falls back to DefaultTTL.
func NewMonitor(pinger provider.Pinger, ttl time.Duration, logger *zap.Logger) *Monitor {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Monitor{
		pinger: pinger,
		ttl:    ttl,
		logger: logger,
	}
}

// Status returns the cached probe result, refreshing it first when the
// cache is older than the TTL. The mutex is held across the probe so a
// burst of callers produces exactly one provider round trip.
func (m *Monitor) Status(ctx context.Context) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hasLast && time.Since(m.last.CheckedAt) < m.ttl {
		return m.last
	}

	status := Status{Connected: true, CheckedAt: time.Now()}
	if err := m.pinger.Ping(ctx); err != nil {
		status.Connected = false
		status.Detail = err.Error()
		m.logger.Warn("provider connectivity probe failed", zap.Error(err))
	}

	m.last = status
	m.hasLast = true
	return status
}

// Invalidate discards the cached result so the next Status call probes
// the provider again.
func (m *Monitor) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasLast = false
}
