package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event          string     `json:"event,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	Phase          string     `json:"phase"`
	Armed          bool       `json:"armed"`
	Network        bool       `json:"network_registered"`
	Reading        *int       `json:"reading,omitempty"`
	RestartPending bool       `json:"restart_pending"`
	Slots          []SlotJSON `json:"slots"`
	UptimeSeconds  int64      `json:"uptime_seconds"`
	StartTime      string     `json:"start_time"`
	Timestamp      string     `json:"timestamp"`
	MQTT           MQTTStatus `json:"mqtt"`
	Counts         CountsJSON `json:"event_counts"`
	Config         ConfigJSON `json:"config"`
}

// SlotJSON is one registry slot.
type SlotJSON struct {
	Slot     int    `json:"slot"`
	Occupied bool   `json:"occupied"`
	Number   string `json:"number,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of activity counts.
type CountsJSON struct {
	Alarms        int `json:"alarms"`
	Dials         int `json:"dials"`
	Acks          int `json:"acks"`
	Registrations int `json:"registrations"`
	Deletions     int `json:"deletions"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Threshold int    `json:"threshold"`
	Port      string `json:"port"`
	Broker    string `json:"broker"`
	HTTPAddr  string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	phase := string(snap.Phase)
	if phase == "" {
		phase = "STARTING"
	}

	inner := StatusInner{
		Phase:          phase,
		Armed:          snap.Armed(),
		Network:        snap.NetworkOK,
		RestartPending: snap.RestartPending,
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		MQTT:           MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Alarms:        snap.Counts.Alarms,
			Dials:         snap.Counts.Dials,
			Acks:          snap.Counts.Acks,
			Registrations: snap.Counts.Registrations,
			Deletions:     snap.Counts.Deletions,
		},
		Config: ConfigJSON{
			Threshold: snap.Config.Threshold,
			Port:      snap.Config.Port,
			Broker:    snap.Config.Broker,
			HTTPAddr:  snap.Config.HTTPAddr,
		},
	}
	if snap.HasReading {
		r := snap.LastReading
		inner.Reading = &r
	}
	for i, s := range snap.Slots {
		inner.Slots = append(inner.Slots, SlotJSON{Slot: i, Occupied: s.Occupied, Number: s.Number})
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
