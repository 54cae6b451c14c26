//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealPowerKey drives PWRKEY through the Linux GPIO character device.
type RealPowerKey struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealPowerKey requests pin as an output, initially released.
func NewRealPowerKey(pin int) (*RealPowerKey, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("gas-alarm-pwrkey"))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request pwrkey pin %d: %w", pin, err)
	}

	return &RealPowerKey{chip: chip, line: line}, nil
}

// Pulse drives the line high for d.
func (k *RealPowerKey) Pulse(d time.Duration) error {
	if err := k.line.SetValue(1); err != nil {
		return fmt.Errorf("assert pwrkey: %w", err)
	}
	time.Sleep(d)
	if err := k.line.SetValue(0); err != nil {
		return fmt.Errorf("release pwrkey: %w", err)
	}
	return nil
}

// Close returns the line to an input with pull-down before releasing it,
// so the modem sees a released key across daemon restarts.
func (k *RealPowerKey) Close() error {
	var errs []error

	if k.line != nil {
		if err := k.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pwrkey: %w", err))
		}
		if err := k.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pwrkey: %w", err))
		}
	}
	if k.chip != nil {
		if err := k.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
