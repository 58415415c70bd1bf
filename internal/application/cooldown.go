package application

import (
	"context"
	"sync"
	"time"
)

// CooldownGate decides whether an alert of a given class may be sent now.
type CooldownGate interface {
	// TryReserve returns true if no window was open for key and opens one.
	// Returns false while a previous window is still running.
	TryReserve(ctx context.Context, key string) (bool, error)
}

// CooldownReleaser is implemented by gates that can close a window early,
// so an alert that was never delivered does not hold the window.
type CooldownReleaser interface {
	Release(ctx context.Context, key string) error
}

// MemoryCooldown keeps cooldown windows in process memory.
type MemoryCooldown struct {
	mu     sync.Mutex
	window time.Duration
	clock  Clock
	until  map[string]time.Time
}

func NewMemoryCooldown(window time.Duration, clock Clock) *MemoryCooldown {
	if clock == nil {
		clock = realClock{}
	}
	return &MemoryCooldown{window: window, clock: clock, until: map[string]time.Time{}}
}

func (m *MemoryCooldown) TryReserve(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	if until, ok := m.until[key]; ok && now.Before(until) {
		return false, nil
	}
	m.until[key] = now.Add(m.window)
	return true, nil
}

func (m *MemoryCooldown) Release(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.until, key)
	m.mu.Unlock()
	return nil
}
