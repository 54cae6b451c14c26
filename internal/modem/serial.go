package modem

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Default UART settings for SIM800-class modems.
const (
	DefaultPort = "/dev/serial0"
	DefaultBaud = 115200

	// DefaultQuietGap is how long the line must stay silent before a
	// response is considered complete.
	DefaultQuietGap = 100 * time.Millisecond
)

// SerialTransport talks to the modem over a serial port.
type SerialTransport struct {
	port     serial.Port
	quietGap time.Duration
}

// OpenSerial opens the named port at 8N1 and the given baud rate.
func OpenSerial(name string, baud int, quietGap time.Duration) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	if quietGap <= 0 {
		quietGap = DefaultQuietGap
	}
	if err := port.SetReadTimeout(quietGap); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return &SerialTransport{port: port, quietGap: quietGap}, nil
}

// Send writes p in full.
func (s *SerialTransport) Send(p []byte) error {
	for len(p) > 0 {
		n, err := s.port.Write(p)
		if err != nil {
			return fmt.Errorf("serial write: %w", err)
		}
		p = p[n:]
	}
	return nil
}

// ReceiveAvailable reads until the line has been quiet for the quiet gap.
// A read that times out with nothing buffered returns nil.
func (s *SerialTransport) ReceiveAvailable() ([]byte, error) {
	var out []byte
	buf := make([]byte, 256)
	for {
		n, err := s.port.Read(buf)
		if err != nil {
			return out, fmt.Errorf("serial read: %w", err)
		}
		if n == 0 {
			return out, nil
		}
		out = append(out, buf[:n]...)
	}
}

// Close closes the port.
func (s *SerialTransport) Close() error {
	return s.port.Close()
}
