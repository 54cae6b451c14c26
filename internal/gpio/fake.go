package gpio

import "time"

// FakePowerKey is a test double that records pulses.
type FakePowerKey struct {
	// Pulses contains the duration of every Pulse call.
	Pulses []time.Duration

	// PulseError, if set, will be returned by Pulse().
	PulseError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePowerKey creates a FakePowerKey.
func NewFakePowerKey() *FakePowerKey {
	return &FakePowerKey{}
}

// Pulse records d.
func (f *FakePowerKey) Pulse(d time.Duration) error {
	if f.PulseError != nil {
		return f.PulseError
	}
	f.Pulses = append(f.Pulses, d)
	return nil
}

// Close marks the line as closed.
func (f *FakePowerKey) Close() error {
	f.Closed = true
	return nil
}
