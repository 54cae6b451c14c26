package gpio

import (
	"errors"
	"testing"
	"time"
)

func TestPowerOnPulsesAndWaits(t *testing.T) {
	key := NewFakePowerKey()
	var slept []time.Duration

	if err := PowerOn(key, func(d time.Duration) { slept = append(slept, d) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(key.Pulses) != 1 || key.Pulses[0] != PowerOnPulse {
		t.Errorf("pulses: got %v, want [%v]", key.Pulses, PowerOnPulse)
	}
	if len(slept) != 1 || slept[0] != BootDelay {
		t.Errorf("sleeps: got %v, want [%v]", slept, BootDelay)
	}
}

func TestPowerOnError(t *testing.T) {
	key := NewFakePowerKey()
	key.PulseError = errors.New("line busy")
	slept := false

	err := PowerOn(key, func(time.Duration) { slept = true })
	if err == nil {
		t.Fatal("expected error")
	}
	if slept {
		t.Error("should not wait for boot after a failed pulse")
	}
}

func TestFakePowerKeyClose(t *testing.T) {
	key := NewFakePowerKey()
	if key.Closed {
		t.Error("should not be closed initially")
	}
	if err := key.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !key.Closed {
		t.Error("should be closed after Close()")
	}
}
