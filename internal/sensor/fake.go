package sensor

import "errors"

// FakeReader is a test double that returns scripted readings.
type FakeReader struct {
	// Readings contains scripted values. Each call to Read() consumes the
	// next one; the last is repeated once exhausted.
	Readings []int

	index int

	// Reads counts calls to Read.
	Reads int

	// ReadError, if set, will be returned by Read().
	ReadError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeReader creates a FakeReader with the given readings.
func NewFakeReader(readings ...int) *FakeReader {
	return &FakeReader{Readings: readings}
}

// Read returns the next scripted reading.
func (f *FakeReader) Read() (int, error) {
	f.Reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Readings) == 0 {
		return 0, errors.New("no readings configured")
	}
	r := f.Readings[f.index]
	if f.index < len(f.Readings)-1 {
		f.index++
	}
	return r, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}
