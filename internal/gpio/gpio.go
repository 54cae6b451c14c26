// Package gpio drives the modem's power-key line with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "time"

// PowerKey toggles the modem's PWRKEY input.
type PowerKey interface {
	// Pulse asserts the line for d, then releases it.
	Pulse(d time.Duration) error

	// Close releases GPIO resources.
	Close() error
}

// Defaults for SIM800-class modules.
const (
	// DisabledPin means no power-key line is wired.
	DisabledPin = -1

	// PowerOnPulse is how long PWRKEY must be held to switch the module on.
	PowerOnPulse = 1200 * time.Millisecond

	// BootDelay is how long the module needs after power-on before it
	// accepts AT commands.
	BootDelay = 3 * time.Second
)
