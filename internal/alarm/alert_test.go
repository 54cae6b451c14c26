package alarm

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sweeney/gas-alarm/internal/logic"
	"github.com/sweeney/gas-alarm/internal/registry"
)

func TestDispatchDialsBothSlotsInOrder(t *testing.T) {
	h := newHarness(t, testConfig())
	h.register(t, registry.Slot0, "5551234")
	h.register(t, registry.Slot1, "9998887")

	if err := h.c.Dispatch(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"ATD5551234;", "ATD9998887;"}
	if got := h.ft.Commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("commands: got %q, want %q", got, want)
	}
	wantSleeps := []time.Duration{20 * time.Second, 20 * time.Second}
	if !reflect.DeepEqual(h.clk.Slept, wantSleeps) {
		t.Errorf("sleeps: got %v, want %v", h.clk.Slept, wantSleeps)
	}
	dials := h.pub.OfType(logic.EventDial)
	if len(dials) != 2 || dials[0].Slot != 0 || dials[1].Slot != 1 {
		t.Errorf("DIAL events: got %+v", dials)
	}
}

func TestDispatchSkipsEmptySlots(t *testing.T) {
	tests := []struct {
		name   string
		slot0  string
		slot1  string
		expect []string
	}{
		{"slot1 only", "", "9998887", []string{"ATD9998887;"}},
		{"slot0 only", "5551234", "", []string{"ATD5551234;"}},
		{"none", "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testConfig())
			if tt.slot0 != "" {
				h.register(t, registry.Slot0, tt.slot0)
			}
			if tt.slot1 != "" {
				h.register(t, registry.Slot1, tt.slot1)
			}

			if err := h.c.Dispatch(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := h.commandsWithPrefix("ATD")
			if !reflect.DeepEqual(got, tt.expect) {
				t.Errorf("dials: got %q, want %q", got, tt.expect)
			}
			if want := time.Duration(len(tt.expect)) * h.cfg.DialWait; h.clk.Total() != want {
				t.Errorf("elapsed: got %v, want %v", h.clk.Total(), want)
			}
		})
	}
}

func TestDispatchContinuesAfterDialError(t *testing.T) {
	h := newHarness(t, testConfig())
	h.register(t, registry.Slot0, "5551234")
	h.register(t, registry.Slot1, "9998887")
	h.ft.SendError = errors.New("uart gone")

	if err := h.c.Dispatch(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.clk.Slept) != 2 {
		t.Errorf("both slots should be attempted, sleeps %v", h.clk.Slept)
	}
}

func TestListenAcknowledged(t *testing.T) {
	tests := []struct {
		name   string
		caller string
		slot   registry.Slot
	}{
		{"slot0", "5551234", registry.Slot0},
		{"slot1", "9998887", registry.Slot1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testConfig())
			h.register(t, registry.Slot0, "5551234")
			h.register(t, registry.Slot1, "9998887")
			h.ring(tt.caller)
			start := h.clk.Now()

			acked, err := h.c.Listen(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !acked {
				t.Fatal("expected acknowledgment")
			}

			if got := h.ft.Commands(); !reflect.DeepEqual(got, []string{"ATH"}) {
				t.Errorf("commands: got %q, want [ATH]", got)
			}
			// Hang up, wait, then arm the restart.
			if len(h.clk.Slept) == 0 || h.clk.Slept[0] != h.cfg.HangupDelay {
				t.Errorf("first sleep should be the hang-up delay, got %v", h.clk.Slept)
			}
			if want := []time.Duration{4 * time.Second}; !reflect.DeepEqual(h.rst.Requests, want) {
				t.Errorf("restart requests: got %v, want %v", h.rst.Requests, want)
			}
			acks := h.pub.OfType(logic.EventAck)
			if len(acks) != 1 || acks[0].Slot != int(tt.slot) {
				t.Errorf("ACK events: got %+v", acks)
			}
			if len(h.pub.OfType(logic.EventRestart)) != 1 {
				t.Error("expected one RESTART event")
			}
			if h.c.Phase() != logic.PhaseRestarting {
				t.Errorf("expected RESTARTING, got %s", h.c.Phase())
			}
			// The window runs to completion after a match.
			if elapsed := h.clk.Now().Sub(start); elapsed < h.cfg.AckWindow {
				t.Errorf("window closed early after %v", elapsed)
			}
			if !h.track.Snapshot().RestartPending {
				t.Error("tracker should report restart pending")
			}
		})
	}
}

func TestListenIgnoresUnknownCaller(t *testing.T) {
	h := newHarness(t, testConfig())
	h.register(t, registry.Slot0, "5551234")
	h.ring("9998887")
	start := h.clk.Now()

	acked, err := h.c.Listen(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acked {
		t.Error("unexpected acknowledgment")
	}
	if len(h.ft.Sent) != 0 {
		t.Errorf("expected no commands, got %q", h.ft.Commands())
	}
	if len(h.rst.Requests) != 0 {
		t.Errorf("expected no restart, got %v", h.rst.Requests)
	}
	elapsed := h.clk.Now().Sub(start)
	if elapsed < h.cfg.AckWindow || elapsed >= h.cfg.AckWindow+h.cfg.AckPoll {
		t.Errorf("window: got %v, want %v", elapsed, h.cfg.AckWindow)
	}
}

func TestListenIgnoresDeletedSlot(t *testing.T) {
	h := newHarness(t, testConfig())
	h.register(t, registry.Slot0, "5551234")
	if err := h.store.Clear(registry.Slot0); err != nil {
		t.Fatalf("clear: %v", err)
	}
	h.register(t, registry.Slot1, "9998887")
	h.ring("5551234")

	acked, err := h.c.Listen(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acked || len(h.rst.Requests) != 0 {
		t.Errorf("deleted number must not acknowledge: acked=%v requests=%v", acked, h.rst.Requests)
	}
}

func TestListenSkipsMalformedRing(t *testing.T) {
	h := newHarness(t, testConfig())
	h.register(t, registry.Slot0, "5551234")
	h.ft.Push("\r\nRING\r\n")
	h.ring("5551234")

	acked, err := h.c.Listen(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acked {
		t.Error("valid ring after a malformed one should acknowledge")
	}
}

func TestListenRestartArmedOnce(t *testing.T) {
	h := newHarness(t, testConfig())
	h.register(t, registry.Slot0, "5551234")
	h.ring("5551234")
	h.ring("5551234")

	if _, err := h.c.Listen(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.rst.Requests) != 1 {
		t.Errorf("restart requests: got %v, want one", h.rst.Requests)
	}
	if got := h.commandsWithPrefix("ATH"); len(got) != 1 {
		t.Errorf("hang-ups: got %q, want one", got)
	}
}

func TestListenRingMidWindow(t *testing.T) {
	h := newHarness(t, testConfig())
	h.register(t, registry.Slot0, "5551234")
	start := h.clk.Now()
	pushed := false
	h.clk.OnSleep = func(now time.Time, d time.Duration) {
		if !pushed && now.Sub(start) >= 30*time.Second {
			pushed = true
			h.ring("5551234")
		}
	}

	acked, err := h.c.Listen(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acked {
		t.Error("expected acknowledgment")
	}
}

func TestListenRingAfterWindow(t *testing.T) {
	h := newHarness(t, testConfig())
	h.register(t, registry.Slot0, "5551234")
	start := h.clk.Now()
	pushed := false
	h.clk.OnSleep = func(now time.Time, d time.Duration) {
		if !pushed && now.Sub(start) >= h.cfg.AckWindow {
			pushed = true
			h.ring("5551234")
		}
	}

	acked, err := h.c.Listen(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acked {
		t.Error("a ring after the window must not acknowledge")
	}
	if len(h.ft.Inbox) != 1 {
		t.Errorf("late ring should remain unread, inbox %q", h.ft.Inbox)
	}
}
