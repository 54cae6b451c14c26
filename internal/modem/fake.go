package modem

import (
	"errors"
	"strings"
)

// FakeTransport is a test double that records sent bytes and replays
// scripted modem output.
type FakeTransport struct {
	// Sent contains every Send payload in order.
	Sent [][]byte

	// Inbox holds pending chunks. Each ReceiveAvailable call returns the
	// next one.
	Inbox [][]byte

	// Responder, if set, is called with each command line (CR/LF trimmed)
	// and may return a reply to queue in Inbox.
	Responder func(cmd string) []byte

	// SendError, if set, is returned by Send.
	SendError error

	// ReceiveError, if set, is returned by ReceiveAvailable.
	ReceiveError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeTransport creates an empty FakeTransport.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

// Send records p and queues the Responder's reply, if any.
func (f *FakeTransport) Send(p []byte) error {
	if f.SendError != nil {
		return f.SendError
	}
	if f.Closed {
		return errors.New("transport closed")
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	f.Sent = append(f.Sent, cp)

	if f.Responder != nil {
		if reply := f.Responder(strings.TrimRight(string(p), "\r\n")); reply != nil {
			f.Inbox = append(f.Inbox, reply)
		}
	}
	return nil
}

// ReceiveAvailable pops the next queued chunk.
func (f *FakeTransport) ReceiveAvailable() ([]byte, error) {
	if f.ReceiveError != nil {
		return nil, f.ReceiveError
	}
	if len(f.Inbox) == 0 {
		return nil, nil
	}
	next := f.Inbox[0]
	f.Inbox = f.Inbox[1:]
	return next, nil
}

// Push queues a chunk of modem output.
func (f *FakeTransport) Push(s string) {
	f.Inbox = append(f.Inbox, []byte(s))
}

// Close marks the transport as closed.
func (f *FakeTransport) Close() error {
	f.Closed = true
	return nil
}

// Commands returns the sent payloads as strings with CR/LF trimmed.
func (f *FakeTransport) Commands() []string {
	out := make([]string, len(f.Sent))
	for i, p := range f.Sent {
		out[i] = strings.TrimRight(string(p), "\r\n")
	}
	return out
}

// Reset clears recorded traffic.
func (f *FakeTransport) Reset() {
	f.Sent = nil
	f.Inbox = nil
	f.Closed = false
	f.SendError = nil
	f.ReceiveError = nil
}
