// Package watchdog turns an acknowledged alarm into a delayed process
// restart. The controller only requests the restart; the surrounding
// runtime decides how the process actually comes back.
package watchdog

import (
	"log"
	"sync"
	"time"
)

// Restarter arms a restart after a delay.
type Restarter interface {
	// Request arms the restart. Only the first request takes effect.
	Request(after time.Duration)

	// Pending reports whether a restart has been requested.
	Pending() bool
}

// Timer fires a callback once, after the requested delay.
type Timer struct {
	mu    sync.Mutex
	fire  func()
	timer *time.Timer
}

// NewTimer creates a Timer that calls fire when the restart is due.
func NewTimer(fire func()) *Timer {
	return &Timer{fire: fire}
}

// Request arms the timer unless it is already armed.
func (t *Timer) Request(after time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		return
	}
	log.Printf("watchdog: restart in %v", after)
	t.timer = time.AfterFunc(after, t.fire)
}

// Pending reports whether the timer is armed.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Stop disarms the timer. Used on shutdown.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
}
