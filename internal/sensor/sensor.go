// Package sensor reads the analog gas sensor.
// The real implementation samples an ADS1115 ADC over I²C and scales the
// result to the 10-bit range the alarm threshold is expressed in.
package sensor

// Reader returns raw gas sensor readings.
type Reader interface {
	// Read returns the current reading in the 0..1023 range.
	Read() (int, error)

	// Close releases sensor resources.
	Close() error
}

// MaxReading is the full-scale value of a reading.
const MaxReading = 1023
