package alarm

import (
	"context"
	"fmt"
	"log"

	"github.com/sweeney/gas-alarm/internal/logic"
	"github.com/sweeney/gas-alarm/internal/modem"
	"github.com/sweeney/gas-alarm/internal/registry"
)

// CheckSMS polls the modem once for an inbound SMS notification and, if
// one is pending, reads message 1 and applies its command to the registry.
// Message storage is cleared after every read attempt, successful or not.
//
// A timed-out read returns modem.ErrTimeout, a body without '!'...'#'
// returns logic.ErrMalformed, and an overlong number returns
// registry.ErrTooLong. In each case the registry is unchanged and the
// caller simply polls again.
func (c *Controller) CheckSMS(ctx context.Context) error {
	data, err := c.modem.Receive()
	if err != nil {
		return fmt.Errorf("poll modem: %w", err)
	}
	if !logic.HasSMS(string(data)) {
		return nil
	}

	if err := c.modem.Drain(); err != nil {
		return fmt.Errorf("drain modem: %w", err)
	}
	resp, readErr := c.modem.ReadSMS(ctx, c.cfg.SMSReadTimeout)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var body string
	if readErr == nil {
		body, readErr = logic.ExtractSMSBody(string(resp))
	}

	if err := c.modem.DeleteAllSMS(ctx, c.cfg.CommandSettle); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("delete sms: %v", err)
	}
	if readErr != nil {
		return fmt.Errorf("read sms: %w", readErr)
	}

	return c.apply(logic.ParseCommand(body))
}

func (c *Controller) apply(cmd logic.Command) error {
	switch cmd.Kind {
	case logic.CommandDelete:
		slot := registry.Slot(cmd.Slot)
		if err := c.store.Clear(slot); err != nil {
			return err
		}
		log.Printf("registry: cleared %s", slot)
		c.emit(logic.Event{Type: logic.EventDeleted, Slot: cmd.Slot})

	case logic.CommandRegister:
		slot, err := c.store.Register(cmd.Number)
		if err != nil {
			return err
		}
		masked := logic.MaskNumber(cmd.Number)
		log.Printf("registry: registered %s in %s", masked, slot)
		c.emit(logic.Event{Type: logic.EventRegistered, Slot: int(slot), Number: masked})

	default:
		return nil
	}
	c.refreshSlots()
	return nil
}

// firstOccupied returns the first occupied slot, Slot0 preferred.
func (c *Controller) firstOccupied() (registry.Slot, string, error) {
	for _, slot := range registry.Slots {
		ok, err := c.store.IsOccupied(slot)
		if err != nil {
			return 0, "", err
		}
		if !ok {
			continue
		}
		number, err := c.store.Read(slot)
		if err != nil {
			return 0, "", err
		}
		return slot, number, nil
	}
	return 0, "", ErrNoRecipient
}

// SendSMS texts the first registered number (Slot0 if occupied, else
// Slot1). Exactly one recipient is notified.
func (c *Controller) SendSMS(ctx context.Context, text string) error {
	slot, number, err := c.firstOccupied()
	if err != nil {
		return err
	}
	log.Printf("sms: %q to %s (%s)", text, logic.MaskNumber(number), slot)
	return c.modem.SendSMS(ctx, number, text, modem.SMSTiming{
		Prompt: c.cfg.SMSPromptDelay,
		Send:   c.cfg.SMSSendWait,
	})
}
