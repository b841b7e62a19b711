// Package timer provides keyed countdown timers with second ticks. Rooms key
// them by room and player so one player's turn clock never collides with
// another's.
package timer

import (
	"sync"
	"time"
)

// TickFunc receives the seconds remaining after each elapsed second.
type TickFunc func(remaining int)

// TimeoutFunc fires once when a countdown reaches zero.
type TimeoutFunc func()

type countdown struct {
	remaining int
	stop      chan struct{}
	done      chan struct{}
}

// Manager owns a set of named countdowns. All methods are safe for
// concurrent use. Callbacks run on the countdown's own goroutine; callers
// that need serialization should enqueue into their own loop from the
// callback rather than doing work in it.
type Manager struct {
	mu     sync.Mutex
	timers map[string]*countdown

	// interval is a second in production, shortened in tests.
	interval time.Duration
}

func NewManager() *Manager {
	return &Manager{
		timers:   make(map[string]*countdown),
		interval: time.Second,
	}
}

// Start begins a countdown under the given key, replacing any countdown
// already running there. onTick may be nil. onTimeout fires at most once,
// and never after Clear returns for this key.
func (m *Manager) Start(key string, seconds int, onTick TickFunc, onTimeout TimeoutFunc) {
	if seconds <= 0 {
		if onTimeout != nil {
			onTimeout()
		}
		return
	}

	m.mu.Lock()
	if old, ok := m.timers[key]; ok {
		close(old.stop)
		delete(m.timers, key)
	}
	cd := &countdown{
		remaining: seconds,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	m.timers[key] = cd
	m.mu.Unlock()

	go m.run(key, cd, onTick, onTimeout)
}

func (m *Manager) run(key string, cd *countdown, onTick TickFunc, onTimeout TimeoutFunc) {
	defer close(cd.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-cd.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			if m.timers[key] != cd {
				m.mu.Unlock()
				return
			}
			cd.remaining--
			remaining := cd.remaining
			if remaining <= 0 {
				delete(m.timers, key)
			}
			m.mu.Unlock()

			if remaining > 0 {
				if onTick != nil {
					onTick(remaining)
				}
				continue
			}
			if onTimeout != nil {
				onTimeout()
			}
			return
		}
	}
}

// Clear stops the countdown under key. Safe to call for a key that has no
// countdown, or twice for the same key.
func (m *Manager) Clear(key string) {
	m.mu.Lock()
	cd, ok := m.timers[key]
	if ok {
		close(cd.stop)
		delete(m.timers, key)
	}
	m.mu.Unlock()
	if ok {
		<-cd.done
	}
}

// Remaining reports the seconds left on a countdown, zero if none runs.
func (m *Manager) Remaining(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cd, ok := m.timers[key]; ok {
		return cd.remaining
	}
	return 0
}

// Active reports whether a countdown runs under key.
func (m *Manager) Active(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.timers[key]
	return ok
}

// StopAll cancels every countdown, used on room teardown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	pending := make([]*countdown, 0, len(m.timers))
	for key, cd := range m.timers {
		close(cd.stop)
		delete(m.timers, key)
		pending = append(pending, cd)
	}
	m.mu.Unlock()
	for _, cd := range pending {
		<-cd.done
	}
}
