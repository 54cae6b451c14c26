// Package mqtt publishes gas-alarm events to an MQTT broker, with an
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/gas-alarm/internal/logic"
)

// Topic is the MQTT topic for controller events.
const Topic = "home/gas-alarm/events"

// TopicSystem is the MQTT topic for daemon lifecycle events.
const TopicSystem = "home/gas-alarm/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a controller event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a lifecycle event (STARTUP, SHUTDOWN, OFFLINE, RECONNECTED).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // e.g., "SIGTERM", "RESTART"
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// Payload is the MQTT message payload for a controller event.
type Payload struct {
	Alarm AlarmPayload `json:"alarm"`
}

// AlarmPayload contains the event details.
type AlarmPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Phase     string `json:"phase,omitempty"`
	Slot      *int   `json:"slot,omitempty"`
	Number    string `json:"number,omitempty"`
	Reading   *int   `json:"reading,omitempty"`
}

// FormatPayload creates the JSON payload for a controller event.
// Slot is included when non-negative; Reading only for ALARM events.
func FormatPayload(event logic.Event) ([]byte, error) {
	p := AlarmPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		Phase:     string(event.Phase),
		Number:    event.Number,
	}
	if event.Slot >= 0 {
		slot := event.Slot
		p.Slot = &slot
	}
	if event.Type == logic.EventAlarm {
		reading := event.Reading
		p.Reading = &reading
	}
	return json.Marshal(Payload{Alarm: p})
}

// SystemPayload is the payload for simple lifecycle events (OFFLINE,
// RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// WillPayload is the last-will message the broker publishes if the daemon
// drops off without a clean SHUTDOWN.
func WillPayload() []byte {
	data, _ := json.Marshal(SystemPayload{System: SystemPayloadInner{Event: "OFFLINE", Reason: "CONNECTION_LOST"}})
	return data
}
