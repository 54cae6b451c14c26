package gpio

import (
	"fmt"
	"log"
	"time"
)

// PowerOn pulses PWRKEY and waits for the module to boot. sleep is
// injectable for tests.
func PowerOn(key PowerKey, sleep func(time.Duration)) error {
	log.Printf("gpio: pulsing modem power key for %v", PowerOnPulse)
	if err := key.Pulse(PowerOnPulse); err != nil {
		return fmt.Errorf("power on modem: %w", err)
	}
	sleep(BootDelay)
	return nil
}
