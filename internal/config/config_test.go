package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gas-alarm.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultMatchesFactoryBehaviour(t *testing.T) {
	c := Default()
	if c.Threshold != 350 {
		t.Errorf("Threshold: got %d, want 350", c.Threshold)
	}
	if c.GraceIterations != 120 || c.GracePoll != time.Second {
		t.Errorf("grace: got %d x %v", c.GraceIterations, c.GracePoll)
	}
	if c.SettleDelay != 300*time.Second {
		t.Errorf("SettleDelay: got %v", c.SettleDelay)
	}
	if c.DialWait != 20*time.Second {
		t.Errorf("DialWait: got %v", c.DialWait)
	}
	if c.AckWindow != 60*time.Second {
		t.Errorf("AckWindow: got %v", c.AckWindow)
	}
	if c.HangupDelay != 500*time.Millisecond || c.RestartDelay != 4*time.Second {
		t.Errorf("ack: hangup %v restart %v", c.HangupDelay, c.RestartDelay)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadOverridesSubset(t *testing.T) {
	path := writeConfig(t, `
threshold: 400
dial_wait: 30s
sms_read_timeout: 0s
verify_commands: true
boot_message: "ALARM ONLINE"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Threshold != 400 {
		t.Errorf("Threshold: got %d", c.Threshold)
	}
	if c.DialWait != 30*time.Second {
		t.Errorf("DialWait: got %v", c.DialWait)
	}
	if c.SMSReadTimeout != 0 {
		t.Errorf("SMSReadTimeout: got %v", c.SMSReadTimeout)
	}
	if !c.VerifyCommands {
		t.Error("VerifyCommands should be true")
	}
	if c.BootMessage != "ALARM ONLINE" {
		t.Errorf("BootMessage: got %q", c.BootMessage)
	}
	// Untouched keys keep defaults.
	if c.AckWindow != 60*time.Second {
		t.Errorf("AckWindow: got %v", c.AckWindow)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "ack_window: 0s\nthreshold: -1\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"ack_window", "threshold"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "dial_wait: [not a duration\n")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
