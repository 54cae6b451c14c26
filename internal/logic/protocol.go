package logic

import (
	"errors"
	"strings"
)

// Modem notification markers.
const (
	MarkerSMS        = "+CMTI"
	MarkerRing       = "RING"
	MarkerRegistered = "+CCALR: 1"
	MarkerOK         = "OK"
)

// ErrMalformed is returned when a modem response lacks the delimiters a
// field is extracted from.
var ErrMalformed = errors.New("malformed modem response")

// HasSMS reports whether raw carries an inbound SMS notification.
func HasSMS(raw string) bool { return strings.Contains(raw, MarkerSMS) }

// HasRing reports whether raw carries an incoming call notification.
func HasRing(raw string) bool { return strings.Contains(raw, MarkerRing) }

// NetworkRegistered reports whether an AT+CCALR? response says the modem
// is registered on the network.
func NetworkRegistered(raw string) bool { return strings.Contains(raw, MarkerRegistered) }

// ExtractSMSBody returns the text strictly between the first '!' and the
// first '#' of an AT+CMGR response.
func ExtractSMSBody(raw string) (string, error) {
	start := strings.IndexByte(raw, '!')
	end := strings.IndexByte(raw, '#')
	if start < 0 || end < 0 || end <= start {
		return "", ErrMalformed
	}
	return raw[start+1 : end], nil
}

// ExtractCaller returns the caller number from a RING/+CLIP notification:
// the text from three bytes past the first ':' up to one byte before the
// following ','. For `+CLIP: "5551234",129` that skips `: "` and drops the
// closing quote.
func ExtractCaller(raw string) (string, error) {
	colon := strings.IndexByte(raw, ':')
	if colon < 0 {
		return "", ErrMalformed
	}
	comma := strings.IndexByte(raw[colon:], ',')
	if comma < 0 {
		return "", ErrMalformed
	}
	start := colon + 3
	end := colon + comma - 1
	if end <= start {
		return "", ErrMalformed
	}
	return raw[start:end], nil
}

// CommandKind is the action requested by an SMS body.
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandRegister
	CommandDelete
)

// Command is a parsed SMS body.
type Command struct {
	Kind   CommandKind
	Slot   int    // CommandDelete only
	Number string // CommandRegister only
}

// ParseCommand maps an extracted SMS body to an action. "D1" and "D2"
// delete the first and second slot; any other non-empty body is a number
// to register.
func ParseCommand(body string) Command {
	switch body {
	case "":
		return Command{Kind: CommandNone}
	case "D1":
		return Command{Kind: CommandDelete, Slot: 0}
	case "D2":
		return Command{Kind: CommandDelete, Slot: 1}
	}
	return Command{Kind: CommandRegister, Number: body}
}

// MaskNumber hides all but the last four characters of a phone number for
// logs and published payloads.
func MaskNumber(n string) string {
	if len(n) <= 4 {
		return n
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}
