// Package alarm is the gas alarm controller: it registers phone numbers sent
// by SMS, arms after a grace period, dials the registered numbers when the
// sensor reads above threshold, and restarts once a registered number calls
// back.
//
// The controller is single-threaded. The registry is the only state shared
// with other goroutines (the status server) and serializes itself.
package alarm

import (
	"context"
	"errors"
	"log"

	"github.com/sweeney/gas-alarm/internal/clock"
	"github.com/sweeney/gas-alarm/internal/config"
	"github.com/sweeney/gas-alarm/internal/logic"
	"github.com/sweeney/gas-alarm/internal/modem"
	"github.com/sweeney/gas-alarm/internal/mqtt"
	"github.com/sweeney/gas-alarm/internal/registry"
	"github.com/sweeney/gas-alarm/internal/sensor"
	"github.com/sweeney/gas-alarm/internal/status"
	"github.com/sweeney/gas-alarm/internal/watchdog"
)

// ErrNoRecipient is returned by SendSMS when no slot is occupied.
var ErrNoRecipient = errors.New("alarm: no registered number")

// Deps are the collaborators a Controller drives. Publisher and Tracker
// are optional.
type Deps struct {
	Modem     *modem.Modem
	Store     *registry.Store
	Sensor    sensor.Reader
	Restarter watchdog.Restarter
	Clock     clock.Clock
	Publisher mqtt.Publisher
	Tracker   *status.Tracker
}

// Controller runs the alarm.
type Controller struct {
	cfg   config.Config
	modem *modem.Modem
	store *registry.Store
	sens  sensor.Reader
	rst   watchdog.Restarter
	clock clock.Clock
	pub   mqtt.Publisher
	track *status.Tracker

	phase logic.Phase
}

// New creates a Controller.
func New(cfg config.Config, d Deps) *Controller {
	return &Controller{
		cfg:   cfg,
		modem: d.Modem,
		store: d.Store,
		sens:  d.Sensor,
		rst:   d.Restarter,
		clock: d.Clock,
		pub:   d.Publisher,
		track: d.Tracker,
	}
}

// Phase returns the current phase.
func (c *Controller) Phase() logic.Phase {
	return c.phase
}

// Run bootstraps and then monitors the sensor until ctx is done.
// Cancellation is a clean exit and returns nil.
func (c *Controller) Run(ctx context.Context) error {
	err := c.Bootstrap(ctx)
	if err == nil {
		err = c.Monitor(ctx)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Monitor polls the sensor and raises the alarm on every breach. It returns
// only when ctx is done.
func (c *Controller) Monitor(ctx context.Context) error {
	log.Printf("monitoring: threshold=%d", c.cfg.Threshold)
	for {
		if c.rst.Pending() {
			// Restart is armed; nothing left to do but wait for it.
			<-ctx.Done()
			return ctx.Err()
		}

		reading, err := c.sens.Read()
		if err != nil {
			log.Printf("sensor read error: %v", err)
			if err := c.clock.Sleep(ctx, c.cfg.SensorPoll); err != nil {
				return err
			}
			continue
		}
		if c.track != nil {
			c.track.SetReading(reading)
		}

		if !logic.Breach(reading, c.cfg.Threshold) {
			if err := c.clock.Sleep(ctx, c.cfg.SensorPoll); err != nil {
				return err
			}
			continue
		}

		log.Printf("gas detected: reading=%d threshold=%d", reading, c.cfg.Threshold)
		c.setPhase(logic.PhaseAlerting)
		c.emit(logic.Event{Type: logic.EventAlarm, Phase: logic.PhaseAlerting, Slot: -1, Reading: reading})
		if err := c.Dispatch(ctx); err != nil {
			return err
		}
		c.setPhase(logic.PhaseAwaitingAck)
		acked, err := c.Listen(ctx)
		if err != nil {
			return err
		}
		if !acked {
			log.Printf("no acknowledgment within %v", c.cfg.AckWindow)
			c.setPhase(logic.PhaseArmed)
		}
	}
}

func (c *Controller) setPhase(p logic.Phase) {
	if p == c.phase {
		return
	}
	log.Printf("phase: %s -> %s", c.phaseName(), p)
	c.phase = p
	if c.track != nil {
		c.track.SetPhase(p)
	}
	c.emit(logic.Event{Type: logic.EventPhase, Phase: p, Slot: -1})
}

func (c *Controller) phaseName() string {
	if c.phase == "" {
		return "START"
	}
	return string(c.phase)
}

// emit publishes an event and bumps the tracker's counters. Publish
// failures are logged; they never stop the alarm.
func (c *Controller) emit(e logic.Event) {
	e.Timestamp = c.clock.Now()
	if c.track != nil {
		c.track.Count(e.Type)
	}
	if c.pub == nil {
		return
	}
	if err := c.pub.Publish(e); err != nil {
		log.Printf("publish %s: %v", e.Type, err)
	}
}

// refreshSlots copies registry occupancy into the tracker.
func (c *Controller) refreshSlots() {
	if c.track == nil {
		return
	}
	entries, err := c.store.Snapshot()
	if err != nil {
		log.Printf("registry snapshot: %v", err)
		return
	}
	var slots [2]status.SlotStatus
	for i, e := range entries {
		slots[i] = status.SlotStatus{Occupied: e.Occupied, Number: logic.MaskNumber(e.Number)}
	}
	c.track.SetSlots(slots)
}
