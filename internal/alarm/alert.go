package alarm

import (
	"context"
	"log"

	"github.com/sweeney/gas-alarm/internal/logic"
	"github.com/sweeney/gas-alarm/internal/registry"
)

// Dispatch dials every occupied slot, Slot0 first, holding each call for
// the dial wait. Both numbers are dialled whatever happens to the first
// call.
func (c *Controller) Dispatch(ctx context.Context) error {
	for _, slot := range registry.Slots {
		ok, err := c.store.IsOccupied(slot)
		if err != nil {
			log.Printf("dial %s: %v", slot, err)
			continue
		}
		if !ok {
			continue
		}
		number, err := c.store.Read(slot)
		if err != nil {
			log.Printf("dial %s: %v", slot, err)
			continue
		}

		masked := logic.MaskNumber(number)
		log.Printf("dialing %s (%s)", masked, slot)
		if err := c.modem.Dial(number); err != nil {
			log.Printf("dial %s: %v", slot, err)
		}
		c.emit(logic.Event{Type: logic.EventDial, Phase: c.phase, Slot: int(slot), Number: masked})
		if err := c.clock.Sleep(ctx, c.cfg.DialWait); err != nil {
			return err
		}
	}
	return nil
}

// Listen watches for a call back from a registered number for the ack
// window. On the first match it hangs up and arms the restart, then keeps
// polling until the window closes. It reports whether a match occurred.
func (c *Controller) Listen(ctx context.Context) (bool, error) {
	start := c.clock.Now()
	acked := false

	for c.clock.Now().Sub(start) < c.cfg.AckWindow {
		data, err := c.modem.Receive()
		if err != nil {
			log.Printf("poll modem: %v", err)
		} else if !acked && logic.HasRing(string(data)) {
			acked, err = c.handleRing(ctx, string(data))
			if err != nil {
				return acked, err
			}
		}
		if err := c.clock.Sleep(ctx, c.cfg.AckPoll); err != nil {
			return acked, err
		}
	}
	return acked, nil
}

func (c *Controller) handleRing(ctx context.Context, note string) (bool, error) {
	caller, err := logic.ExtractCaller(note)
	if err != nil {
		log.Printf("ring: %v: %q", err, note)
		return false, nil
	}

	slot, ok := c.match(caller)
	if !ok {
		log.Printf("ring: ignoring call from %s", logic.MaskNumber(caller))
		return false, nil
	}

	masked := logic.MaskNumber(caller)
	log.Printf("ring: acknowledged by %s (%s)", masked, slot)
	if err := c.modem.HangUp(); err != nil {
		log.Printf("hang up: %v", err)
	}
	if err := c.clock.Sleep(ctx, c.cfg.HangupDelay); err != nil {
		return false, err
	}
	c.rst.Request(c.cfg.RestartDelay)

	c.emit(logic.Event{Type: logic.EventAck, Phase: c.phase, Slot: int(slot), Number: masked})
	c.setPhase(logic.PhaseRestarting)
	c.emit(logic.Event{Type: logic.EventRestart, Phase: logic.PhaseRestarting, Slot: -1})
	return true, nil
}

// match compares caller against the occupied slots only.
func (c *Controller) match(caller string) (registry.Slot, bool) {
	for _, slot := range registry.Slots {
		ok, err := c.store.IsOccupied(slot)
		if err != nil || !ok {
			continue
		}
		number, err := c.store.Read(slot)
		if err != nil {
			continue
		}
		if number == caller {
			return slot, true
		}
	}
	return 0, false
}
