package alarm

import (
	"context"
	"log"

	"github.com/sweeney/gas-alarm/internal/logic"
)

// Bootstrap brings the alarm from power-on to ARMED:
//
//	CONNECTING_NETWORK -> CONFIGURING_MODEM -> AWAITING_FIRST_REGISTRATION
//	  -> GRACE_PERIOD -> SETTLING -> ARMED
//
// Network registration and the first phone number are waited for without
// limit. It returns early only when ctx is done or the registry cannot be
// read.
func (c *Controller) Bootstrap(ctx context.Context) error {
	c.setPhase(logic.PhaseConnectingNetwork)
	if err := c.connectNetwork(ctx); err != nil {
		return err
	}

	c.setPhase(logic.PhaseConfiguringModem)
	if err := c.modem.Configure(ctx, c.cfg.CommandSettle, c.cfg.VerifyCommands); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("modem setup: %v", err)
	}
	c.refreshSlots()

	c.setPhase(logic.PhaseAwaitingFirstRegistration)
	for {
		occupied, err := c.store.AnyOccupied()
		if err != nil {
			return err
		}
		if occupied {
			break
		}
		if err := c.pollSMS(ctx); err != nil {
			return err
		}
		if err := c.clock.Sleep(ctx, c.cfg.SMSPoll); err != nil {
			return err
		}
	}

	c.setPhase(logic.PhaseGracePeriod)
	if err := c.notify(ctx, c.cfg.ReadyMessage); err != nil {
		return err
	}
	// A second number may register during the window. Leaving requires the
	// full window and a registered number, so deleting the only number
	// during the window extends it until one is registered again.
	for i := 1; ; i++ {
		if err := c.clock.Sleep(ctx, c.cfg.GracePoll); err != nil {
			return err
		}
		if err := c.pollSMS(ctx); err != nil {
			return err
		}
		if i < c.cfg.GraceIterations {
			continue
		}
		occupied, err := c.store.AnyOccupied()
		if err != nil {
			return err
		}
		if occupied {
			break
		}
	}

	c.setPhase(logic.PhaseSettling)
	if err := c.notify(ctx, c.cfg.BootMessage); err != nil {
		return err
	}
	if err := c.clock.Sleep(ctx, c.cfg.SettleDelay); err != nil {
		return err
	}

	c.setPhase(logic.PhaseArmed)
	return nil
}

func (c *Controller) connectNetwork(ctx context.Context) error {
	log.Printf("waiting to connect to network")
	for attempt := 1; ; attempt++ {
		ok, err := c.modem.NetworkRegistered(ctx, c.cfg.NetworkPoll)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			log.Printf("network status (attempt %d): %v", attempt, err)
			if err := c.clock.Sleep(ctx, c.cfg.NetworkPoll); err != nil {
				return err
			}
			continue
		}
		if ok {
			log.Printf("connected to network after %d attempts", attempt)
			if c.track != nil {
				c.track.SetNetwork(true)
			}
			return nil
		}
		if attempt%60 == 0 {
			log.Printf("still not registered on network after %d attempts", attempt)
		}
	}
}

// pollSMS runs one CheckSMS. Protocol and registry errors are logged and
// swallowed; only cancellation is returned.
func (c *Controller) pollSMS(ctx context.Context) error {
	err := c.CheckSMS(ctx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	log.Printf("sms: %v", err)
	return nil
}

// notify sends text to the first registered number. Failures are logged.
func (c *Controller) notify(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	err := c.SendSMS(ctx, text)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	log.Printf("sms notify: %v", err)
	return nil
}
