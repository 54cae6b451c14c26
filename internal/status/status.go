// Package status provides a thread-safe status tracker for the gas-alarm daemon.
// The controller writes to it; the HTTP server and MQTT system events read it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/gas-alarm/internal/logic"
)

// SlotStatus is the display view of one registry slot. Number is masked.
type SlotStatus struct {
	Occupied bool
	Number   string
}

// Config contains daemon configuration for display.
type Config struct {
	Threshold int
	Port      string
	Broker    string
	HTTPAddr  string
}

// Counts tracks controller activity since startup.
type Counts struct {
	Alarms        int
	Dials         int
	Acks          int
	Registrations int
	Deletions     int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Phase          logic.Phase
	Slots          [2]SlotStatus
	NetworkOK      bool
	LastReading    int
	HasReading     bool
	Counts         Counts
	RestartPending bool
	StartTime      time.Time
	Now            time.Time
	MQTTConnected  bool
	Config         Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Armed reports whether bootstrap has finished.
func (s Snapshot) Armed() bool {
	switch s.Phase {
	case logic.PhaseArmed, logic.PhaseAlerting, logic.PhaseAwaitingAck, logic.PhaseRestarting:
		return true
	}
	return false
}

// Alerting reports whether an alarm is in progress.
func (s Snapshot) Alerting() bool {
	return s.Phase == logic.PhaseAlerting || s.Phase == logic.PhaseAwaitingAck
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetPhase records the controller phase.
func (t *Tracker) SetPhase(p logic.Phase) {
	t.mu.Lock()
	t.snap.Phase = p
	if p == logic.PhaseRestarting {
		t.snap.RestartPending = true
	}
	t.mu.Unlock()
}

// SetNetwork records whether the modem is registered on the network.
func (t *Tracker) SetNetwork(ok bool) {
	t.mu.Lock()
	t.snap.NetworkOK = ok
	t.mu.Unlock()
}

// SetSlots records registry occupancy. Numbers must already be masked.
func (t *Tracker) SetSlots(slots [2]SlotStatus) {
	t.mu.Lock()
	t.snap.Slots = slots
	t.mu.Unlock()
}

// SetReading records the latest sensor reading.
func (t *Tracker) SetReading(r int) {
	t.mu.Lock()
	t.snap.LastReading = r
	t.snap.HasReading = true
	t.mu.Unlock()
}

// Count increments the counter matching an event type.
func (t *Tracker) Count(e logic.EventType) {
	t.mu.Lock()
	switch e {
	case logic.EventAlarm:
		t.snap.Counts.Alarms++
	case logic.EventDial:
		t.snap.Counts.Dials++
	case logic.EventAck:
		t.snap.Counts.Acks++
	case logic.EventRegistered:
		t.snap.Counts.Registrations++
	case logic.EventDeleted:
		t.snap.Counts.Deletions++
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
