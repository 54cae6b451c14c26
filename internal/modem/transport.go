// Package modem drives a GSM modem with AT commands over a byte transport.
// The real transport is a UART opened with go.bug.st/serial; the fake
// transport scripts modem replies for tests.
package modem

// Transport moves raw bytes to and from the modem.
type Transport interface {
	// Send writes p to the modem.
	Send(p []byte) error

	// ReceiveAvailable returns whatever the modem has sent since the last
	// call, or nil when nothing is pending. It does not wait for data to
	// arrive.
	ReceiveAvailable() ([]byte, error)

	// Close releases the transport.
	Close() error
}
