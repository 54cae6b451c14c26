package alarm

import (
	"testing"
	"time"

	"github.com/sweeney/gas-alarm/internal/clock"
	"github.com/sweeney/gas-alarm/internal/config"
	"github.com/sweeney/gas-alarm/internal/modem"
	"github.com/sweeney/gas-alarm/internal/mqtt"
	"github.com/sweeney/gas-alarm/internal/registry"
	"github.com/sweeney/gas-alarm/internal/sensor"
	"github.com/sweeney/gas-alarm/internal/status"
	"github.com/sweeney/gas-alarm/internal/watchdog"
)

// testConfig returns the factory settings with the short polls made
// distinct, so a test can tell sleeps apart by duration.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.NetworkPoll = 700 * time.Millisecond
	cfg.CommandSettle = 300 * time.Millisecond
	cfg.SMSPoll = 70 * time.Millisecond
	cfg.AckPoll = 250 * time.Millisecond
	cfg.SensorPoll = 150 * time.Millisecond
	return cfg
}

type harness struct {
	cfg   config.Config
	ft    *modem.FakeTransport
	clk   *clock.Fake
	mem   *registry.MemMedium
	store *registry.Store
	sens  *sensor.FakeReader
	rst   *watchdog.FakeRestarter
	pub   *mqtt.FakePublisher
	track *status.Tracker
	c     *Controller

	// sms is the body returned by the next AT+CMGR=1.
	sms string
}

func newHarness(t *testing.T, cfg config.Config) *harness {
	t.Helper()
	start := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	h := &harness{
		cfg:   cfg,
		ft:    modem.NewFakeTransport(),
		clk:   clock.NewFake(start),
		mem:   registry.NewMemMedium(),
		sens:  sensor.NewFakeReader(100),
		rst:   watchdog.NewFakeRestarter(),
		pub:   mqtt.NewFakePublisher(),
		track: status.NewTracker(start, status.Config{Threshold: cfg.Threshold}),
	}
	h.store = registry.New(h.mem)
	h.ft.Responder = func(cmd string) []byte {
		switch cmd {
		case modem.CmdNetworkStatus:
			return []byte("\r\n+CCALR: 1\r\n\r\nOK\r\n")
		case modem.CmdReadSMS:
			if h.sms == "" {
				return nil
			}
			reply := "\r\n+CMGR: \"REC UNREAD\",\"+15550001111\",\"\",\"26/10/16,10:00:00+00\"\r\n" + h.sms + "\r\n\r\nOK\r\n"
			h.sms = ""
			return []byte(reply)
		}
		return nil
	}
	h.c = New(cfg, Deps{
		Modem:     modem.New(h.ft, h.clk),
		Store:     h.store,
		Sensor:    h.sens,
		Restarter: h.rst,
		Clock:     h.clk,
		Publisher: h.pub,
		Tracker:   h.track,
	})
	return h
}

// inboundSMS queues a +CMTI notification whose message reads body.
func (h *harness) inboundSMS(body string) {
	h.sms = body
	h.ft.Push("\r\n+CMTI: \"SM\",1\r\n")
}

// ring queues an incoming call notification from number.
func (h *harness) ring(number string) {
	h.ft.Push("\r\nRING\r\n\r\n+CLIP: \"" + number + "\",129,\"\",0,\"\",0\r\n")
}

func (h *harness) register(t *testing.T, slot registry.Slot, number string) {
	t.Helper()
	if err := h.store.Write(slot, number); err != nil {
		t.Fatalf("write %s: %v", slot, err)
	}
}

func (h *harness) read(t *testing.T, slot registry.Slot) (string, bool) {
	t.Helper()
	ok, err := h.store.IsOccupied(slot)
	if err != nil {
		t.Fatalf("occupied %s: %v", slot, err)
	}
	n, err := h.store.Read(slot)
	if err != nil {
		t.Fatalf("read %s: %v", slot, err)
	}
	return n, ok
}

// countSleeps returns how many recorded sleeps equal d.
func (h *harness) countSleeps(d time.Duration) int {
	n := 0
	for _, s := range h.clk.Slept {
		if s == d {
			n++
		}
	}
	return n
}

// commandsWithPrefix returns sent command lines starting with prefix.
func (h *harness) commandsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range h.ft.Commands() {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}
