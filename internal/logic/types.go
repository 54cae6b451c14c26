// Package logic contains the pure protocol and decision logic of the gas alarm.
// This package has NO external dependencies (no serial port, MQTT, OS, or time.Sleep).
// Time is always passed in by the caller.
package logic

import "time"

// DefaultThreshold is the raw 10-bit sensor reading above which gas is reported.
const DefaultThreshold = 350

// Phase is the controller's current stage, from boot to monitoring.
type Phase string

const (
	PhaseConnectingNetwork         Phase = "CONNECTING_NETWORK"
	PhaseConfiguringModem          Phase = "CONFIGURING_MODEM"
	PhaseAwaitingFirstRegistration Phase = "AWAITING_FIRST_REGISTRATION"
	PhaseGracePeriod               Phase = "GRACE_PERIOD"
	PhaseSettling                  Phase = "SETTLING"
	PhaseArmed                     Phase = "ARMED"

	// Monitoring sub-phases entered from ARMED.
	PhaseAlerting    Phase = "ALERTING"
	PhaseAwaitingAck Phase = "AWAITING_ACK"
	PhaseRestarting  Phase = "RESTARTING"
)

// EventType identifies a controller event.
type EventType string

const (
	EventPhase      EventType = "PHASE"
	EventRegistered EventType = "REGISTERED"
	EventDeleted    EventType = "DELETED"
	EventAlarm      EventType = "ALARM"
	EventDial       EventType = "DIAL"
	EventAck        EventType = "ACK"
	EventRestart    EventType = "RESTART"
)

// Event is something the controller did that is worth publishing.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Phase     Phase
	Slot      int    // -1 when not slot specific
	Number    string // masked
	Reading   int
}

// Breach reports whether a sensor reading is above threshold.
func Breach(reading, threshold int) bool {
	return reading > threshold
}
