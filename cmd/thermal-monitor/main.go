// Command thermal-monitor samples a temperature sensor, forecasts where the
// reading is heading and warns on the LEDs, matrix, buzzer and display before
// it crosses the configured threshold. Telemetry goes to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/thermal-monitor/internal/config"
	"github.com/sweeney/thermal-monitor/internal/display"
	"github.com/sweeney/thermal-monitor/internal/gpio"
	"github.com/sweeney/thermal-monitor/internal/indicator"
	"github.com/sweeney/thermal-monitor/internal/logic"
	"github.com/sweeney/thermal-monitor/internal/metrics"
	"github.com/sweeney/thermal-monitor/internal/mirror"
	"github.com/sweeney/thermal-monitor/internal/monitor"
	"github.com/sweeney/thermal-monitor/internal/mqtt"
	"github.com/sweeney/thermal-monitor/internal/sensor"
	"github.com/sweeney/thermal-monitor/internal/state"
	"github.com/sweeney/thermal-monitor/internal/status"
	"github.com/sweeney/thermal-monitor/internal/web"
)

func main() {
	configPath := flag.String("config", "/etc/thermal-monitor/config.yaml", "Path to YAML config file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config, \"off\" disables)")
	simulate := flag.Bool("simulate", false, "Run without hardware")
	printState := flag.Bool("print-state", false, "Print current readings and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "broker":
			cfg.MQTT.Broker = *broker
		case "http":
			cfg.HTTP.Addr = *httpAddr
			if *httpAddr == "off" {
				cfg.HTTP.Addr = ""
			}
		case "simulate":
			cfg.Simulate = *simulate
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: invalid config: %v", err)
	}

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg *config.Config, printState bool) error {
	hw, err := openHardware(cfg)
	if err != nil {
		return err
	}
	defer hw.Close()

	if printState {
		return printReadings(os.Stdout, hw)
	}

	clientID := cfg.MQTT.ClientID
	if clientID == "" {
		host, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("hostname: %w", err)
		}
		clientID = mqtt.ClientID(host)
	}

	initial := state.Default()
	initial.Threshold = cfg.Monitor.Threshold

	var sinks []monitor.NamedSink

	// Optional Redis mirror. A missing server is not fatal.
	redisAddr := ""
	if cfg.Redis.Enabled {
		key := cfg.Redis.Key
		if key == "" {
			key = "thermal:" + clientID
		}
		m, err := mirror.NewRedisMirror(mirror.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      key,
		})
		if err != nil {
			log.Printf("redis mirror disabled: %v", err)
		} else {
			defer m.Close()
			redisAddr = cfg.Redis.Addr
			if cfg.Redis.RestoreThreshold {
				initial.Threshold = restoreThreshold(m, initial.Threshold)
			}
			sinks = append(sinks, monitor.NamedSink{Name: "redis", Sink: m})
		}
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		SamplePeriodMs: cfg.Monitor.SamplePeriod.Milliseconds(),
		InputPollMs:    cfg.Input.Poll.Milliseconds(),
		TelemetryMs:    cfg.Monitor.TelemetryInterval.Milliseconds(),
		HorizonSeconds: int64(cfg.Forecast.Horizon.Seconds()),
		ClassifyWith:   cfg.Forecast.ClassifyWith,
		Broker:         cfg.MQTT.Broker,
		ClientID:       clientID,
		HTTPAddr:       cfg.HTTP.Addr,
		RedisAddr:      redisAddr,
		Simulate:       cfg.Simulate,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Initialize MQTT
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:         cfg.MQTT.Broker,
			ClientID:       clientID,
			Username:       cfg.MQTT.Username,
			Password:       cfg.MQTT.Password,
			ConnectTimeout: cfg.MQTT.ConnectTimeout,
			OnConnectionChange: func(connected bool) {
				tracker.SetMQTTConnected(connected)
				metrics.SetConnected(connected)
			},
		})
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer pub.Close()
		publisher, mqttStatus = pub, pub
		// MQTT goes first so a slow mirror never delays the broker.
		sinks = append([]monitor.NamedSink{{Name: "mqtt", Sink: pub}}, sinks...)
	}

	store := state.NewStore(initial, cfg.Monitor.StateReadTimeout)
	metrics.Threshold.Set(float64(initial.Threshold))

	ind := indicator.New(hw.leds, indicator.NewVirtualMatrix(), gpio.NewBuzzer(hw.tone), nil)
	mon := monitor.New(monitorConfig(cfg), store, monitor.Devices{
		Thermometer: hw.thermometer,
		Analog:      hw.analog,
		Buttons:     hw.buttons,
		Indicator:   ind,
		Screen:      display.New(hw.panel),
		Sinks:       sinks,
	}, tracker.Update)

	// Publish startup event with full status snapshot
	publishEvent(publisher, tracker, mqttStatus, "STARTUP", "", time.Now())

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: client=%s period=%v horizon=%v classify=%s threshold=%d simulate=%v",
		clientID, cfg.Monitor.SamplePeriod, cfg.Forecast.Horizon, cfg.Forecast.ClassifyWith, initial.Threshold, cfg.Simulate)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(mon, publisher, mqttStatus, tracker, time.Now, sigCh)
}

// runner is the part of *monitor.Monitor that runLoop drives.
type runner interface {
	Run(ctx context.Context) error
}

// runLoop runs the monitor until a signal arrives or a task fails, then
// publishes the SHUTDOWN event.
func runLoop(mon runner, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- mon.Run(ctx) }()

	var reason string
	var runErr error
	select {
	case s := <-sig:
		log.Printf("received %v, shutting down", s)
		reason = signalName(s)
		cancel()
		runErr = <-done
	case runErr = <-done:
		log.Printf("monitor stopped: %v", runErr)
		reason = "ERROR"
	}

	publishEvent(publisher, tracker, mqttStatus, "SHUTDOWN", reason, now())
	return runErr
}

func publishEvent(publisher mqtt.Publisher, tracker *status.Tracker, mqttStatus mqtt.ConnectionStatus, event, reason string, t time.Time) {
	if publisher == nil {
		return
	}
	ev := mqtt.SystemEvent{
		Timestamp: t,
		Event:     event,
		Reason:    reason,
		Retained:  true,
	}
	if tracker != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		ev.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), event, reason)
	}
	if err := publisher.PublishSystem(ev); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
	} else {
		log.Printf("published %s event", event)
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

// thresholdStore is the part of the mirror used at startup.
type thresholdStore interface {
	LoadThreshold(ctx context.Context) (int, bool, error)
}

// restoreThreshold returns the mirrored setpoint, or fallback when there is
// none.
func restoreThreshold(m thresholdStore, fallback int) int {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	th, ok, err := m.LoadThreshold(ctx)
	switch {
	case err != nil:
		log.Printf("restore threshold: %v", err)
		return fallback
	case !ok:
		return fallback
	}
	log.Printf("restored threshold %d from mirror", th)
	return th
}

// monitorConfig maps the file configuration onto the task parameters.
func monitorConfig(cfg *config.Config) monitor.Config {
	mc := monitor.DefaultConfig()
	mc.SamplePeriod = cfg.Monitor.SamplePeriod
	mc.InputPoll = cfg.Input.Poll
	mc.ProcessTimeout = cfg.Monitor.ProcessTimeout
	mc.TelemetryInterval = cfg.Monitor.TelemetryInterval
	mc.QueueDepth = cfg.Monitor.QueueDepth
	mc.Envelope = sensor.Envelope{Min: cfg.Sensor.MinC, Max: cfg.Sensor.MaxC}
	mc.Forecast.Alpha = cfg.Forecast.Alpha
	mc.Forecast.Beta = cfg.Forecast.Beta
	mc.Forecast.FilterWeight = cfg.Forecast.FilterWeight
	mc.Forecast.Horizon = cfg.Forecast.Horizon
	mc.Forecast.Capacity = cfg.Forecast.History
	if cfg.Forecast.ClassifyWith == "holt" {
		mc.ClassifyWith = state.ForecastHolt
	}
	mc.Input = logic.InputConfig{
		ADCHigh:          cfg.Input.ADCHigh,
		ADCLow:           cfg.Input.ADCLow,
		JoystickDebounce: cfg.Input.JoystickDebounce,
	}
	return mc
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
