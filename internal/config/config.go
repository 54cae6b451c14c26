// Package config holds the alarm's behavioural settings: threshold, the
// delays between modem operations, and the SMS texts. Defaults match the
// appliance's factory behaviour; a YAML file may override any of them.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/gas-alarm/internal/logic"
)

// Config is the full set of tunables.
type Config struct {
	Threshold int `yaml:"threshold"`

	NetworkPoll    time.Duration `yaml:"network_poll"`
	CommandSettle  time.Duration `yaml:"command_settle"`
	VerifyCommands bool          `yaml:"verify_commands"`

	SMSPoll        time.Duration `yaml:"sms_poll"`
	SMSReadTimeout time.Duration `yaml:"sms_read_timeout"` // 0 waits forever

	GraceIterations int           `yaml:"grace_iterations"`
	GracePoll       time.Duration `yaml:"grace_poll"`
	SettleDelay     time.Duration `yaml:"settle_delay"`

	DialWait     time.Duration `yaml:"dial_wait"`
	AckWindow    time.Duration `yaml:"ack_window"`
	AckPoll      time.Duration `yaml:"ack_poll"`
	HangupDelay  time.Duration `yaml:"hangup_delay"`
	RestartDelay time.Duration `yaml:"restart_delay"`

	SMSPromptDelay time.Duration `yaml:"sms_prompt_delay"`
	SMSSendWait    time.Duration `yaml:"sms_send_wait"`

	SensorPoll time.Duration `yaml:"sensor_poll"`

	ReadyMessage string `yaml:"ready_message"`
	BootMessage  string `yaml:"boot_message"`
}

// Default returns the factory settings.
func Default() Config {
	return Config{
		Threshold:       logic.DefaultThreshold,
		NetworkPoll:     time.Second,
		CommandSettle:   time.Second,
		SMSPoll:         100 * time.Millisecond,
		SMSReadTimeout:  10 * time.Second,
		GraceIterations: 120,
		GracePoll:       time.Second,
		SettleDelay:     300 * time.Second,
		DialWait:        20 * time.Second,
		AckWindow:       60 * time.Second,
		AckPoll:         100 * time.Millisecond,
		HangupDelay:     500 * time.Millisecond,
		RestartDelay:    4 * time.Second,
		SMSPromptDelay:  500 * time.Millisecond,
		SMSSendWait:     15 * time.Second,
		SensorPoll:      100 * time.Millisecond,
		ReadyMessage:    "READY TO RECEIVE SETTING!",
		BootMessage:     "GAS LEAK DETECTOR BOOTED!",
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the controller cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Threshold < 0 {
		errs = append(errs, fmt.Errorf("threshold must be >= 0, got %d", c.Threshold))
	}
	if c.GraceIterations < 0 {
		errs = append(errs, fmt.Errorf("grace_iterations must be >= 0, got %d", c.GraceIterations))
	}
	if c.SMSReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("sms_read_timeout must be >= 0, got %v", c.SMSReadTimeout))
	}
	positive := []struct {
		name string
		d    time.Duration
	}{
		{"network_poll", c.NetworkPoll},
		{"sms_poll", c.SMSPoll},
		{"grace_poll", c.GracePoll},
		{"ack_window", c.AckWindow},
		{"ack_poll", c.AckPoll},
		{"sensor_poll", c.SensorPoll},
	}
	for _, p := range positive {
		if p.d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v", p.name, p.d))
		}
	}
	nonNegative := []struct {
		name string
		d    time.Duration
	}{
		{"command_settle", c.CommandSettle},
		{"settle_delay", c.SettleDelay},
		{"dial_wait", c.DialWait},
		{"hangup_delay", c.HangupDelay},
		{"restart_delay", c.RestartDelay},
		{"sms_prompt_delay", c.SMSPromptDelay},
		{"sms_send_wait", c.SMSSendWait},
	}
	for _, p := range nonNegative {
		if p.d < 0 {
			errs = append(errs, fmt.Errorf("%s must be >= 0, got %v", p.name, p.d))
		}
	}
	return errors.Join(errs...)
}
