//go:build !linux

package gpio

import (
	"errors"
	"time"
)

// RealPowerKey is not available on non-Linux platforms.
type RealPowerKey struct{}

// NewRealPowerKey returns an error on non-Linux platforms.
func NewRealPowerKey(pin int) (*RealPowerKey, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Pulse is not implemented on non-Linux platforms.
func (k *RealPowerKey) Pulse(d time.Duration) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (k *RealPowerKey) Close() error {
	return nil
}
