package modem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/gas-alarm/internal/clock"
	"github.com/sweeney/gas-alarm/internal/logic"
)

// AT commands used by the alarm.
const (
	CmdNetworkStatus = "AT+CCALR?"
	CmdTextMode      = "AT+CMGF=1"
	CmdDeleteAllSMS  = "AT+CMGD=1,4"
	CmdSMSParams     = "AT+CSMP=17,167,0,0"
	CmdCallerID      = "AT+CLIP=1"
	CmdReadSMS       = "AT+CMGR=1"
	CmdHangUp        = "ATH"

	// ctrlZ terminates an SMS body after AT+CMGS.
	ctrlZ = 0x1A
)

// DefaultPollInterval is how often WaitData re-checks the transport.
const DefaultPollInterval = 50 * time.Millisecond

// maxDrain bounds Drain against a modem that never stops talking.
const maxDrain = 8

var (
	// ErrTimeout is returned when the modem sends nothing within the
	// allowed window.
	ErrTimeout = errors.New("modem: timed out waiting for response")

	// ErrNoAck is returned when a response fails its acknowledgment check.
	ErrNoAck = errors.New("modem: command not acknowledged")
)

// Ack decides whether a command response acknowledges the command.
type Ack func(resp []byte) bool

// AckOK accepts any response containing "OK".
func AckOK(resp []byte) bool {
	return strings.Contains(string(resp), logic.MarkerOK)
}

// Modem issues AT commands over a Transport.
type Modem struct {
	t     Transport
	clock clock.Clock

	// PollInterval is the WaitData re-check period.
	PollInterval time.Duration
}

// New creates a Modem over t.
func New(t Transport, clk clock.Clock) *Modem {
	return &Modem{t: t, clock: clk, PollInterval: DefaultPollInterval}
}

// Command sends a single command line terminated by CR LF.
func (m *Modem) Command(cmd string) error {
	if err := m.t.Send([]byte(cmd + "\r\n")); err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	return nil
}

// Receive returns pending modem output, or nil.
func (m *Modem) Receive() ([]byte, error) {
	return m.t.ReceiveAvailable()
}

// Drain discards pending modem output.
func (m *Modem) Drain() error {
	for i := 0; i < maxDrain; i++ {
		data, err := m.t.ReceiveAvailable()
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return nil
		}
	}
	return nil
}

// WaitData polls the transport until it has data. A timeout of zero waits
// until ctx is done.
func (m *Modem) WaitData(ctx context.Context, timeout time.Duration) ([]byte, error) {
	deadline := m.clock.Now().Add(timeout)
	for {
		data, err := m.t.ReceiveAvailable()
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			return data, nil
		}
		if timeout > 0 && !m.clock.Now().Before(deadline) {
			return nil, ErrTimeout
		}
		if err := m.clock.Sleep(ctx, m.PollInterval); err != nil {
			return nil, err
		}
	}
}

// Exchange sends cmd, waits settle, and when ack is non-nil checks the
// response with it. A nil ack makes the command fire-and-forget.
func (m *Modem) Exchange(ctx context.Context, cmd string, settle time.Duration, ack Ack) error {
	if err := m.Command(cmd); err != nil {
		return err
	}
	if err := m.clock.Sleep(ctx, settle); err != nil {
		return err
	}
	if ack == nil {
		return nil
	}
	resp, err := m.t.ReceiveAvailable()
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	if !ack(resp) {
		return fmt.Errorf("%w: %s replied %q", ErrNoAck, cmd, strings.TrimSpace(string(resp)))
	}
	return nil
}

// NetworkRegistered asks the modem for its registration status and reports
// whether it is on the network.
func (m *Modem) NetworkRegistered(ctx context.Context, wait time.Duration) (bool, error) {
	if err := m.Drain(); err != nil {
		return false, err
	}
	if err := m.Command(CmdNetworkStatus); err != nil {
		return false, err
	}
	if err := m.clock.Sleep(ctx, wait); err != nil {
		return false, err
	}
	resp, err := m.t.ReceiveAvailable()
	if err != nil {
		return false, err
	}
	return logic.NetworkRegistered(string(resp)), nil
}

// SetupCommands is the one-shot configuration sequence run after the
// network comes up.
var SetupCommands = []string{CmdTextMode, CmdDeleteAllSMS, CmdSMSParams, CmdCallerID}

// Configure runs SetupCommands, each followed by settle. When verify is
// set, each reply is checked for OK; failures are collected but every
// command is still sent.
func (m *Modem) Configure(ctx context.Context, settle time.Duration, verify bool) error {
	var ack Ack
	if verify {
		ack = AckOK
	}
	var errs []error
	for _, cmd := range SetupCommands {
		err := m.Exchange(ctx, cmd, settle, ack)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := m.Drain(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ReadSMS requests message 1 and waits up to timeout for the reply.
func (m *Modem) ReadSMS(ctx context.Context, timeout time.Duration) ([]byte, error) {
	if err := m.Command(CmdReadSMS); err != nil {
		return nil, err
	}
	return m.WaitData(ctx, timeout)
}

// DeleteAllSMS clears the modem's message storage and waits settle.
func (m *Modem) DeleteAllSMS(ctx context.Context, settle time.Duration) error {
	return m.Exchange(ctx, CmdDeleteAllSMS, settle, nil)
}

// SMSTiming controls the pauses around an SMS submission.
type SMSTiming struct {
	Prompt time.Duration // after AT+CMGS and after the body
	Send   time.Duration // after Ctrl-Z, while the network accepts the message
}

// SendSMS submits a plain-text message to number.
func (m *Modem) SendSMS(ctx context.Context, number, text string, timing SMSTiming) error {
	if err := m.Command(fmt.Sprintf("AT+CMGS=%q", number)); err != nil {
		return err
	}
	if err := m.clock.Sleep(ctx, timing.Prompt); err != nil {
		return err
	}
	if err := m.t.Send([]byte(text + "\r\n")); err != nil {
		return fmt.Errorf("send sms body: %w", err)
	}
	if err := m.clock.Sleep(ctx, timing.Prompt); err != nil {
		return err
	}
	if err := m.t.Send([]byte{ctrlZ}); err != nil {
		return fmt.Errorf("send sms terminator: %w", err)
	}
	return m.clock.Sleep(ctx, timing.Send)
}

// Dial starts a voice call to number.
func (m *Modem) Dial(number string) error {
	return m.Command("ATD" + number + ";")
}

// HangUp ends the current call.
func (m *Modem) HangUp() error {
	return m.Command(CmdHangUp)
}
