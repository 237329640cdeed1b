// Package sim drives a scenario through the combat engine on a fixed tick.
package sim

import (
	"context"
	"sort"
	"sync"
	"time"
)

// TickManager fires registered callbacks once per interval, passing the
// zero-based tick number. Callbacks run sequentially on one goroutine in
// name order.
//
// Invariant: every callback sees strictly increasing tick numbers.
type TickManager struct {
	interval time.Duration
	mu       sync.Mutex
	ticks    map[string]func(tick int)
	next     int
}

// NewTickManager returns a manager that fires ticks every interval.
//
// Precondition: interval must be > 0.
func NewTickManager(interval time.Duration) *TickManager {
	if interval <= 0 {
		panic("sim.NewTickManager: interval must be > 0")
	}
	return &TickManager{
		interval: interval,
		ticks:    make(map[string]func(int)),
	}
}

// RegisterTick registers a callback under name. Replaces any existing callback.
func (m *TickManager) RegisterTick(name string, fn func(tick int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks[name] = fn
}

// Unregister removes the callback registered under name.
func (m *TickManager) Unregister(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ticks, name)
}

// Start begins the tick loop. Runs until ctx is cancelled.
//
// Postcondition: all registered callbacks are invoked once per interval.
func (m *TickManager) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick, callbacks := m.snapshot()
				for _, fn := range callbacks {
					if ctx.Err() != nil {
						return
					}
					fn(tick)
				}
			}
		}
	}()
}

func (m *TickManager) snapshot() (int, []func(int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tick := m.next
	m.next++
	names := make([]string, 0, len(m.ticks))
	for name := range m.ticks {
		names = append(names, name)
	}
	sort.Strings(names)
	callbacks := make([]func(int), 0, len(names))
	for _, name := range names {
		callbacks = append(callbacks, m.ticks[name])
	}
	return tick, callbacks
}
