package watchdog

import (
	"testing"
	"time"
)

func TestTimerFiresOnce(t *testing.T) {
	fired := make(chan struct{}, 2)
	tm := NewTimer(func() { fired <- struct{}{} })

	if tm.Pending() {
		t.Fatal("should not be pending before Request")
	}
	tm.Request(10 * time.Millisecond)
	tm.Request(10 * time.Millisecond)
	if !tm.Pending() {
		t.Fatal("should be pending after Request")
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
	select {
	case <-fired:
		t.Fatal("timer fired twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTimerStop(t *testing.T) {
	fired := make(chan struct{}, 1)
	tm := NewTimer(func() { fired <- struct{}{} })
	tm.Request(50 * time.Millisecond)
	tm.Stop()

	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestFakeRestarter(t *testing.T) {
	f := NewFakeRestarter()
	if f.Pending() {
		t.Error("should not be pending initially")
	}
	f.Request(4 * time.Second)
	if !f.Pending() || len(f.Requests) != 1 || f.Requests[0] != 4*time.Second {
		t.Errorf("unexpected state: %+v", f.Requests)
	}
}
