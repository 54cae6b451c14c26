package clock

import (
	"context"
	"time"
)

// Fake is a manual clock. Sleep advances the current time instantly.
// Not safe for concurrent use.
type Fake struct {
	now time.Time

	// Slept records every duration passed to Sleep.
	Slept []time.Duration

	// OnSleep, if set, is called after each Sleep has advanced the clock.
	// Tests use it to inject modem traffic at a given point in time.
	OnSleep func(now time.Time, d time.Duration)
}

// NewFake creates a Fake clock starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time { return f.now }

// Sleep advances the clock by d.
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Slept = append(f.Slept, d)
	if d > 0 {
		f.now = f.now.Add(d)
	}
	if f.OnSleep != nil {
		f.OnSleep(f.now, d)
	}
	return ctx.Err()
}

// Advance moves the clock forward without recording a sleep.
func (f *Fake) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// Total returns the sum of all recorded sleeps.
func (f *Fake) Total() time.Duration {
	var sum time.Duration
	for _, d := range f.Slept {
		sum += d
	}
	return sum
}
