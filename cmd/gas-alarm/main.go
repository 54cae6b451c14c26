// Command gas-alarm watches a gas sensor and phones the registered numbers
// over a GSM modem when the reading crosses the alarm threshold.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sweeney/gas-alarm/internal/alarm"
	"github.com/sweeney/gas-alarm/internal/clock"
	"github.com/sweeney/gas-alarm/internal/config"
	"github.com/sweeney/gas-alarm/internal/gpio"
	"github.com/sweeney/gas-alarm/internal/modem"
	"github.com/sweeney/gas-alarm/internal/mqtt"
	"github.com/sweeney/gas-alarm/internal/registry"
	"github.com/sweeney/gas-alarm/internal/sensor"
	"github.com/sweeney/gas-alarm/internal/status"
	"github.com/sweeney/gas-alarm/internal/watchdog"
	"github.com/sweeney/gas-alarm/internal/web"
)

// exitRestart tells the service manager the alarm was acknowledged and the
// process wants to be started again.
const exitRestart = 3

// statusInterval is how often the supervisor refreshes connection state
// and checks the heartbeat.
const statusInterval = 5 * time.Second

type options struct {
	configPath    string
	port          string
	baud          int
	store         string
	i2cBus        string
	adcAddr       uint
	pwrKeyPin     int
	broker        string
	httpAddr      string
	heartbeat     time.Duration
	printRegistry bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML file overriding threshold, delays and messages")
	flag.StringVar(&o.port, "port", modem.DefaultPort, "Modem serial port")
	flag.IntVar(&o.baud, "baud", modem.DefaultBaud, "Modem baud rate")
	flag.StringVar(&o.store, "store", "/var/lib/gas-alarm/registry.bin", "Phone number registry file")
	flag.StringVar(&o.i2cBus, "i2c-bus", "", `I2C bus for the ADC ("" selects the first bus)`)
	flag.UintVar(&o.adcAddr, "adc-addr", sensor.DefaultADCAddr, "ADS1115 I2C address")
	flag.IntVar(&o.pwrKeyPin, "pwrkey-pin", gpio.DisabledPin, "BCM pin driving the modem power key (-1 to disable)")
	flag.StringVar(&o.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable)")
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.BoolVar(&o.printRegistry, "print-registry", false, "Print the registered numbers and exit")

	flag.Parse()

	code, err := run(o)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	os.Exit(code)
}

func run(o options) (int, error) {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return 1, err
	}

	medium, err := registry.OpenFile(o.store)
	if err != nil {
		return 1, fmt.Errorf("open registry: %w", err)
	}
	defer medium.Close()
	store := registry.New(medium)

	// Print registry mode
	if o.printRegistry {
		return 0, printRegistry(os.Stdout, store)
	}

	if o.pwrKeyPin != gpio.DisabledPin {
		key, err := gpio.NewRealPowerKey(o.pwrKeyPin)
		if err != nil {
			return 1, fmt.Errorf("init power key: %w", err)
		}
		defer key.Close()
		if err := gpio.PowerOn(key, time.Sleep); err != nil {
			return 1, err
		}
	}

	transport, err := modem.OpenSerial(o.port, o.baud, modem.DefaultQuietGap)
	if err != nil {
		return 1, fmt.Errorf("open modem: %w", err)
	}
	defer transport.Close()

	adc, err := sensor.OpenADS1115(o.i2cBus, uint16(o.adcAddr))
	if err != nil {
		return 1, fmt.Errorf("open sensor: %w", err)
	}
	defer adc.Close()

	// A nil interface, never a nil *RealPublisher, when MQTT is off.
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if o.broker != "" {
		p := mqtt.NewRealPublisher(o.broker)
		defer p.Close()
		publisher, mqttStatus = p, p
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Threshold: cfg.Threshold,
		Port:      o.port,
		Broker:    o.broker,
		HTTPAddr:  o.httpAddr,
	})

	if publisher != nil {
		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	restart := make(chan struct{})
	var once sync.Once
	rst := watchdog.NewTimer(func() { once.Do(func() { close(restart) }) })
	defer rst.Stop()

	ctrl := alarm.New(cfg, alarm.Deps{
		Modem:     modem.New(transport, clock.Real{}),
		Store:     store,
		Sensor:    adc,
		Restarter: rst,
		Clock:     clock.Real{},
		Publisher: publisher,
		Tracker:   tracker,
	})

	log.Printf("started: port=%s threshold=%d broker=%s store=%s", o.port, cfg.Threshold, o.broker, o.store)

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return supervise(ctrl, publisher, mqttStatus, tracker, o.heartbeat, time.Now, ticker.C, sigCh, restart)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	log.Printf("loaded config from %s", path)
	return cfg, nil
}

func printRegistry(w io.Writer, store *registry.Store) error {
	entries, err := store.Snapshot()
	if err != nil {
		return fmt.Errorf("read registry: %w", err)
	}
	for _, e := range entries {
		number := "empty"
		if e.Occupied {
			number = e.Number
		}
		fmt.Fprintf(w, "%s: %s\n", e.Slot, number)
	}
	return nil
}

// runner is the part of the alarm controller the supervisor drives.
type runner interface {
	Run(ctx context.Context) error
}

// supervise runs the controller until a signal arrives or the restart timer
// fires, then publishes SHUTDOWN. It returns the process exit code.
func supervise(ctrl runner, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, restart <-chan struct{}) (int, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Run(ctx)
	}()

	lastBeat := now()
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			cancel()
			logStopped(<-done)
			publishShutdown(publisher, mqttStatus, tracker, now(), signalName(s))
			return 0, nil

		case <-restart:
			log.Printf("alarm acknowledged, restarting")
			cancel()
			logStopped(<-done)
			publishShutdown(publisher, mqttStatus, tracker, now(), "RESTART")
			return exitRestart, nil

		case err := <-done:
			// Run only returns early on an unrecoverable error.
			if err == nil {
				err = errors.New("stopped unexpectedly")
			}
			publishShutdown(publisher, mqttStatus, tracker, now(), "ERROR")
			return 1, fmt.Errorf("controller: %w", err)

		case <-tick:
			t := now()
			if tracker != nil && mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			if heartbeat <= 0 || t.Sub(lastBeat) < heartbeat {
				continue
			}
			lastBeat = t
			publishHeartbeat(publisher, tracker, t)
		}
	}
}

func logStopped(err error) {
	if err != nil {
		log.Printf("controller stopped: %v", err)
	}
}

func publishHeartbeat(publisher mqtt.Publisher, tracker *status.Tracker, t time.Time) {
	if publisher == nil {
		return
	}
	event := mqtt.SystemEvent{Timestamp: t, Event: "HEARTBEAT"}
	if tracker != nil {
		snap := tracker.Snapshot()
		log.Printf("heartbeat: phase=%s uptime=%v alarms=%d acks=%d",
			snap.Phase, snap.Uptime().Truncate(time.Second), snap.Counts.Alarms, snap.Counts.Acks)
		event.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

func publishShutdown(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, t time.Time, reason string) {
	if publisher == nil {
		return
	}
	event := mqtt.SystemEvent{
		Timestamp: t,
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if tracker != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		snap := tracker.Snapshot()
		event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", reason)
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
