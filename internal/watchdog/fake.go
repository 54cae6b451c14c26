package watchdog

import "time"

// FakeRestarter records restart requests for test assertions.
type FakeRestarter struct {
	// Requests contains every delay passed to Request, including ignored
	// repeats.
	Requests []time.Duration
}

// NewFakeRestarter creates a FakeRestarter.
func NewFakeRestarter() *FakeRestarter {
	return &FakeRestarter{}
}

// Request records the delay.
func (f *FakeRestarter) Request(after time.Duration) {
	f.Requests = append(f.Requests, after)
}

// Pending reports whether any request was made.
func (f *FakeRestarter) Pending() bool {
	return len(f.Requests) > 0
}
