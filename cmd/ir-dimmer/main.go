// Command ir-dimmer drives a dimmable output from an infrared remote control,
// persisting power and level across restarts and reporting commits to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/ir-dimmer/internal/clock"
	"github.com/sweeney/ir-dimmer/internal/gpio"
	"github.com/sweeney/ir-dimmer/internal/ir"
	"github.com/sweeney/ir-dimmer/internal/keymap"
	"github.com/sweeney/ir-dimmer/internal/logic"
	"github.com/sweeney/ir-dimmer/internal/mqtt"
	"github.com/sweeney/ir-dimmer/internal/nvstore"
	"github.com/sweeney/ir-dimmer/internal/pwm"
	"github.com/sweeney/ir-dimmer/internal/status"
	"github.com/sweeney/ir-dimmer/internal/web"
)

// commandQueueSize bounds network remote commands waiting for a tick.
const commandQueueSize = 16

type config struct {
	poll       time.Duration
	lirc       string
	eeprom     string
	pwmChip    int
	pwmChannel int
	pwmPeriod  time.Duration
	ledChip    string
	ledPin     int
	keymap     string
	broker     string
	heartbeat  time.Duration
	httpAddr   string
	printState bool
}

func main() {
	var cfg config
	flag.DurationVar(&cfg.poll, "poll", 5*time.Millisecond, "Control loop tick period")
	flag.StringVar(&cfg.lirc, "lirc", ir.DefaultDevice, "LIRC device for the IR receiver (empty to disable)")
	flag.StringVar(&cfg.eeprom, "eeprom", "/var/lib/ir-dimmer/eeprom.bin", "Non-volatile store image")
	flag.IntVar(&cfg.pwmChip, "pwm-chip", 0, "sysfs PWM chip number")
	flag.IntVar(&cfg.pwmChannel, "pwm-channel", 0, "sysfs PWM channel number")
	flag.DurationVar(&cfg.pwmPeriod, "pwm-period", pwm.DefaultPeriodNs*time.Nanosecond, "PWM period")
	flag.StringVar(&cfg.ledChip, "led-chip", gpio.DefaultChip, "GPIO chip for the indicator LED")
	flag.IntVar(&cfg.ledPin, "led-pin", gpio.DefaultPinLED, "BCM pin number for the indicator LED")
	flag.StringVar(&cfg.keymap, "keymap", "", "YAML file with additional remote layouts")
	flag.StringVar(&cfg.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable)")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.BoolVar(&cfg.printState, "print-state", false, "Print stored state and exit")

	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	store, err := nvstore.OpenFile(cfg.eeprom)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()

	restored, err := nvstore.Restore(store)
	if cfg.printState {
		if err != nil {
			return fmt.Errorf("read store: %w", err)
		}
		fmt.Printf("power: %s, level: %d\n", mqtt.PowerString(restored.Power), restored.Level)
		return nil
	}
	if err != nil {
		log.Printf("store: restore: %v (using %+v)", err, restored)
	}
	log.Printf("restored: power=%s level=%d", mqtt.PowerString(restored.Power), restored.Level)

	mapper := logic.DefaultMapper()
	if cfg.keymap != "" {
		km, err := keymap.Load(cfg.keymap)
		if err != nil {
			return fmt.Errorf("init keymap: %w", err)
		}
		log.Printf("keymap: registered %d codes from %s", km.Apply(mapper), cfg.keymap)
	}

	// Network remote commands share the decoder slot with the IR receiver
	queue := ir.NewQueueDecoder(commandQueueSize)
	decoders := []ir.Decoder{}
	if cfg.lirc != "" {
		lirc, err := ir.OpenLIRC(cfg.lirc)
		if err != nil {
			return fmt.Errorf("init ir: %w", err)
		}
		decoders = append(decoders, lirc)
	}
	decoder := ir.Multi(append(decoders, queue)...)
	defer decoder.Close()

	sink, err := pwm.OpenSysfs(pwm.SysfsRoot, cfg.pwmChip, cfg.pwmChannel, uint64(cfg.pwmPeriod.Nanoseconds()))
	if err != nil {
		return fmt.Errorf("init pwm: %w", err)
	}
	defer sink.Close()

	led, err := gpio.NewRealWriter(cfg.ledChip, cfg.ledPin, false)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer led.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var counter clock.Counter
	go counter.Run(ctx, time.Millisecond)

	var publisher mqtt.Publisher = noPublisher{}
	var mqttStatus mqtt.ConnectionStatus
	if cfg.broker != "" {
		p := mqtt.NewRealPublisher(cfg.broker, func(cmd logic.Command) {
			if err := queue.Push(cmd); err != nil {
				log.Printf("mqtt: command %s 0x%02x: %v", cmd.Protocol, cmd.Code, err)
			}
		})
		publisher, mqttStatus = p, p
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.poll.Milliseconds(),
		HeartbeatMs: cfg.heartbeat.Milliseconds(),
		Broker:      cfg.broker,
		HTTPAddr:    cfg.httpAddr,
		LIRC:        cfg.lirc,
		EEPROM:      cfg.eeprom,
		Keymap:      cfg.keymap,
	})
	ctrl := logic.NewController(mapper, restored, counter.Now())
	tracker.Update(ctrl.View())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	log.Printf("started: poll=%v lirc=%s broker=%s heartbeat=%v", cfg.poll, cfg.lirc, cfg.broker, cfg.heartbeat)

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	dev := devices{decoder: decoder, pwm: sink, indicator: led, store: store}
	heartbeat := logic.Millis(cfg.heartbeat.Milliseconds())
	return runLoop(dev, ctrl, publisher, mqttStatus, tracker, heartbeat, counter.Now, time.Now, ticker.C, sigCh)
}

// devices bundles the hardware the loop drives.
type devices struct {
	decoder   ir.Decoder
	pwm       pwm.Sink
	indicator gpio.Writer
	store     nvstore.Store
}

func runLoop(dev devices, ctrl *logic.Controller, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat logic.Millis, now func() logic.Millis, wall func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	decodeErr := errLatch{what: "ir"}
	pwmErr := errLatch{what: "pwm"}
	ledErr := errLatch{what: "indicator"}

	var pin, pinWritten bool

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: wall(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()

			var cmd *logic.Command
			c, ok, err := dev.decoder.Poll()
			decodeErr.check(err)
			if ok {
				cmd = &c
			}

			out := ctrl.Tick(cmd, t)

			pwmErr.check(dev.pwm.SetLevel(out.PWM))
			if !pinWritten || out.Indicator != pin {
				err := dev.indicator.Set(out.Indicator)
				ledErr.check(err)
				pin, pinWritten = out.Indicator, err == nil
			}

			if len(out.Commits) > 0 {
				// The scheduler already counts these as committed; a failed
				// write is retried only after the next change settles.
				for _, commit := range out.Commits {
					if err := nvstore.Commit(dev.store, commit); err != nil {
						log.Printf("store: commit %s=%d: %v", commit.Field, commit.Value, err)
						continue
					}
					log.Printf("commit: %s=%d", commit.Field, commit.Value)
				}
				at := wall()
				if tracker != nil {
					tracker.RecordCommit(at)
				}
				event := mqtt.CommitEvent{Timestamp: at, State: out.State, Commits: out.Commits}
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
				}
			}

			if hbData := ctrl.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%dms power=%s level=%d commits=%d",
					hbData.Uptime, mqtt.PowerString(hbData.State.Power), hbData.State.Level, hbData.Commits)

				hbEvent := mqtt.SystemEvent{
					Timestamp: wall(),
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					tracker.Update(ctrl.View())
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(ctrl.View())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// errLatch logs the first error of a run of failures and the recovery,
// so a device failing on every tick does not flood the log.
type errLatch struct {
	what    string
	failing bool
}

func (l *errLatch) check(err error) {
	if err != nil {
		if !l.failing {
			log.Printf("%s error: %v", l.what, err)
			l.failing = true
		}
		return
	}
	if l.failing {
		log.Printf("%s recovered", l.what)
		l.failing = false
	}
}

// noPublisher stands in when MQTT is disabled.
type noPublisher struct{}

func (noPublisher) Publish(mqtt.CommitEvent) error       { return nil }
func (noPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }
func (noPublisher) Close() error                         { return nil }
