package sensor

import (
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// DefaultADCAddr is the ADS1115 address with ADDR tied to GND.
const DefaultADCAddr = 0x48

// ADS1115 registers and the single-shot configuration word:
// OS=1, MUX=AIN0/GND, PGA=±4.096V, single-shot, 128 SPS, comparator off.
const (
	regConversion = 0x00
	regConfig     = 0x01
	configAIN0    = 0xC383

	// Full-scale input of the PGA setting, and the supply the sensor
	// output is referenced to, in millivolts.
	fullScaleMV = 4096
	supplyMV    = 5000

	conversionDelay = 9 * time.Millisecond
)

// ADS1115 reads channel AIN0 of an ADS1115.
type ADS1115 struct {
	bus i2c.BusCloser
	dev *i2c.Dev
}

// OpenADS1115 initialises the host drivers and opens the ADC on the named
// I²C bus ("" selects the first bus).
func OpenADS1115(busName string, addr uint16) (*ADS1115, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	return &ADS1115{
		bus: bus,
		dev: &i2c.Dev{Bus: bus, Addr: addr},
	}, nil
}

// Read triggers a single conversion and returns the scaled result.
func (a *ADS1115) Read() (int, error) {
	cfg := []byte{regConfig, configAIN0 >> 8, configAIN0 & 0xFF}
	if err := a.dev.Tx(cfg, nil); err != nil {
		return 0, fmt.Errorf("start conversion: %w", err)
	}
	time.Sleep(conversionDelay)

	var raw [2]byte
	if err := a.dev.Tx([]byte{regConversion}, raw[:]); err != nil {
		return 0, fmt.Errorf("read conversion: %w", err)
	}
	return Scale(int16(binary.BigEndian.Uint16(raw[:]))), nil
}

// Close releases the bus.
func (a *ADS1115) Close() error {
	return a.bus.Close()
}

// Scale converts a signed ADS1115 sample at ±4.096V full scale to the
// 0..1023 range of a 10-bit converter referenced to 5V.
func Scale(raw int16) int {
	if raw <= 0 {
		return 0
	}
	v := int64(raw) * fullScaleMV * (MaxReading + 1) / (32768 * supplyMV)
	if v > MaxReading {
		v = MaxReading
	}
	return int(v)
}
