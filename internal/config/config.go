// Package config loads the daemon configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the daemon configuration.
type Config struct {
	Simulate bool           `yaml:"simulate"` // replace all hardware with in-memory fakes
	Sensor   SensorConfig   `yaml:"sensor"`
	Input    InputConfig    `yaml:"input"`
	GPIO     GPIOConfig     `yaml:"gpio"`
	Display  DisplayConfig  `yaml:"display"`
	Forecast ForecastConfig `yaml:"forecast"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Redis    RedisConfig    `yaml:"redis"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// SensorConfig selects the temperature and joystick sources.
type SensorConfig struct {
	Source     string  `yaml:"source"` // "w1" or "serial"
	W1Root     string  `yaml:"w1_root"`
	W1Device   string  `yaml:"w1_device"` // empty = first DS18B20 found
	SerialPort string  `yaml:"serial_port"`
	BaudRate   int     `yaml:"baud_rate"`
	Analog     string  `yaml:"analog"` // "iio" or "serial"
	ADCPath    string  `yaml:"adc_path"`
	ADCBits    int     `yaml:"adc_bits"`
	MinC       float32 `yaml:"min_c"` // plausible range, exclusive
	MaxC       float32 `yaml:"max_c"`
}

// InputConfig contains the local control parameters.
type InputConfig struct {
	Poll             time.Duration `yaml:"poll"`
	ADCHigh          int           `yaml:"adc_high"`
	ADCLow           int           `yaml:"adc_low"`
	JoystickDebounce time.Duration `yaml:"joystick_debounce"`
}

// GPIOConfig contains pin assignments (BCM numbering).
type GPIOConfig struct {
	ButtonA  int `yaml:"button_a"`
	ButtonB  int `yaml:"button_b"`
	LEDGreen int `yaml:"led_green"`
	LEDRed   int `yaml:"led_red"`
	Buzzer   int `yaml:"buzzer"`
}

// DisplayConfig contains the OLED panel settings.
type DisplayConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`
}

// ForecastConfig contains the forecasting parameters.
type ForecastConfig struct {
	Alpha        float32       `yaml:"alpha"`
	Beta         float32       `yaml:"beta"`
	FilterWeight float32       `yaml:"filter_weight"` // weight of the new reading
	Horizon      time.Duration `yaml:"horizon"`
	History      int           `yaml:"history"`
	ClassifyWith string        `yaml:"classify_with"` // "linear" or "holt"
}

// MonitorConfig contains task timing and the startup threshold.
type MonitorConfig struct {
	SamplePeriod      time.Duration `yaml:"sample_period"`
	ProcessTimeout    time.Duration `yaml:"process_timeout"`
	TelemetryInterval time.Duration `yaml:"telemetry_interval"`
	StateReadTimeout  time.Duration `yaml:"state_read_timeout"`
	QueueDepth        int           `yaml:"queue_depth"`
	Threshold         int           `yaml:"threshold"`
}

// MQTTConfig contains the telemetry broker settings.
type MQTTConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Broker         string        `yaml:"broker"`
	ClientID       string        `yaml:"client_id"` // empty = <hostname>_temp_monitor
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// RedisConfig contains the optional telemetry mirror.
type RedisConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Addr             string `yaml:"addr"`
	Password         string `yaml:"password"`
	DB               int    `yaml:"db"`
	Key              string `yaml:"key"` // empty = thermal:<client_id>
	RestoreThreshold bool   `yaml:"restore_threshold"`
}

// HTTPConfig contains the status server settings.
type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty = disabled
}

// Default returns the stock firmware configuration.
func Default() *Config {
	return &Config{
		Sensor: SensorConfig{
			Source:   "w1",
			W1Root:   "/sys/bus/w1/devices",
			BaudRate: 115200,
			Analog:   "iio",
			ADCPath:  "/sys/bus/iio/devices/iio:device0/in_voltage0_raw",
			ADCBits:  12,
			MinC:     -20,
			MaxC:     80,
		},
		Input: InputConfig{
			Poll:             50 * time.Millisecond,
			ADCHigh:          3000,
			ADCLow:           1000,
			JoystickDebounce: 300 * time.Millisecond,
		},
		GPIO: GPIOConfig{
			ButtonA:  5,
			ButtonB:  6,
			LEDGreen: 12,
			LEDRed:   13,
			Buzzer:   21,
		},
		Display: DisplayConfig{
			Enabled: true,
			Bus:     "/dev/i2c-1",
			Address: 0x3C,
		},
		Forecast: ForecastConfig{
			Alpha:        0.3,
			Beta:         0.1,
			FilterWeight: 0.2,
			Horizon:      300 * time.Second,
			History:      30,
			ClassifyWith: "linear",
		},
		Monitor: MonitorConfig{
			SamplePeriod:      5 * time.Second,
			ProcessTimeout:    100 * time.Millisecond,
			TelemetryInterval: 10 * time.Second,
			StateReadTimeout:  10 * time.Millisecond,
			QueueDepth:        10,
			Threshold:         30,
		},
		MQTT: MQTTConfig{
			Enabled:        true,
			Broker:         "tcp://localhost:1883",
			ConnectTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Addr:             "localhost:6379",
			RestoreThreshold: true,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills zero values left by an explicit empty key.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Sensor.Source == "" {
		c.Sensor.Source = def.Sensor.Source
	}
	if c.Sensor.W1Root == "" {
		c.Sensor.W1Root = def.Sensor.W1Root
	}
	if c.Sensor.BaudRate == 0 {
		c.Sensor.BaudRate = def.Sensor.BaudRate
	}
	if c.Sensor.Analog == "" {
		c.Sensor.Analog = def.Sensor.Analog
	}
	if c.Sensor.ADCBits == 0 {
		c.Sensor.ADCBits = def.Sensor.ADCBits
	}
	if c.Sensor.MinC == 0 && c.Sensor.MaxC == 0 {
		c.Sensor.MinC, c.Sensor.MaxC = def.Sensor.MinC, def.Sensor.MaxC
	}

	if c.Input.Poll == 0 {
		c.Input.Poll = def.Input.Poll
	}
	if c.Input.ADCHigh == 0 {
		c.Input.ADCHigh = def.Input.ADCHigh
	}
	if c.Input.ADCLow == 0 {
		c.Input.ADCLow = def.Input.ADCLow
	}
	if c.Input.JoystickDebounce == 0 {
		c.Input.JoystickDebounce = def.Input.JoystickDebounce
	}

	if c.Display.Bus == "" {
		c.Display.Bus = def.Display.Bus
	}
	if c.Display.Address == 0 {
		c.Display.Address = def.Display.Address
	}

	if c.Forecast.Alpha == 0 {
		c.Forecast.Alpha = def.Forecast.Alpha
	}
	if c.Forecast.Beta == 0 {
		c.Forecast.Beta = def.Forecast.Beta
	}
	if c.Forecast.FilterWeight == 0 {
		c.Forecast.FilterWeight = def.Forecast.FilterWeight
	}
	if c.Forecast.Horizon == 0 {
		c.Forecast.Horizon = def.Forecast.Horizon
	}
	if c.Forecast.History == 0 {
		c.Forecast.History = def.Forecast.History
	}
	if c.Forecast.ClassifyWith == "" {
		c.Forecast.ClassifyWith = def.Forecast.ClassifyWith
	}

	if c.Monitor.SamplePeriod == 0 {
		c.Monitor.SamplePeriod = def.Monitor.SamplePeriod
	}
	if c.Monitor.ProcessTimeout == 0 {
		c.Monitor.ProcessTimeout = def.Monitor.ProcessTimeout
	}
	if c.Monitor.TelemetryInterval == 0 {
		c.Monitor.TelemetryInterval = def.Monitor.TelemetryInterval
	}
	if c.Monitor.StateReadTimeout == 0 {
		c.Monitor.StateReadTimeout = def.Monitor.StateReadTimeout
	}
	if c.Monitor.QueueDepth == 0 {
		c.Monitor.QueueDepth = def.Monitor.QueueDepth
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = def.MQTT.Broker
	}
	if c.MQTT.ConnectTimeout == 0 {
		c.MQTT.ConnectTimeout = def.MQTT.ConnectTimeout
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = def.Redis.Addr
	}
}

// Validate rejects configurations the monitor cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Sensor.Source {
	case "w1", "serial":
	default:
		errs = append(errs, fmt.Errorf("sensor.source %q: want w1 or serial", c.Sensor.Source))
	}
	switch c.Sensor.Analog {
	case "iio", "serial":
	default:
		errs = append(errs, fmt.Errorf("sensor.analog %q: want iio or serial", c.Sensor.Analog))
	}
	if (c.Sensor.Source == "serial" || c.Sensor.Analog == "serial") && c.Sensor.SerialPort == "" && !c.Simulate {
		errs = append(errs, errors.New("sensor.serial_port is required for the serial source"))
	}
	if c.Sensor.MinC >= c.Sensor.MaxC {
		errs = append(errs, fmt.Errorf("sensor range %.1f..%.1f is empty", c.Sensor.MinC, c.Sensor.MaxC))
	}

	if c.Input.Poll <= 0 {
		errs = append(errs, errors.New("input.poll must be positive"))
	}
	if c.Input.ADCLow >= c.Input.ADCHigh {
		errs = append(errs, fmt.Errorf("input.adc_low %d must be below adc_high %d", c.Input.ADCLow, c.Input.ADCHigh))
	}
	if c.Input.JoystickDebounce < 0 {
		errs = append(errs, errors.New("input.joystick_debounce must not be negative"))
	}

	if c.Forecast.Alpha <= 0 || c.Forecast.Alpha > 1 {
		errs = append(errs, fmt.Errorf("forecast.alpha %v outside (0, 1]", c.Forecast.Alpha))
	}
	if c.Forecast.Beta <= 0 || c.Forecast.Beta > 1 {
		errs = append(errs, fmt.Errorf("forecast.beta %v outside (0, 1]", c.Forecast.Beta))
	}
	if c.Forecast.FilterWeight <= 0 || c.Forecast.FilterWeight > 1 {
		errs = append(errs, fmt.Errorf("forecast.filter_weight %v outside (0, 1]", c.Forecast.FilterWeight))
	}
	if c.Forecast.Horizon <= 0 {
		errs = append(errs, errors.New("forecast.horizon must be positive"))
	}
	if c.Forecast.History < 2 {
		errs = append(errs, fmt.Errorf("forecast.history %d: need at least 2 points", c.Forecast.History))
	}
	switch c.Forecast.ClassifyWith {
	case "linear", "holt":
	default:
		errs = append(errs, fmt.Errorf("forecast.classify_with %q: want linear or holt", c.Forecast.ClassifyWith))
	}

	if c.Monitor.SamplePeriod <= 0 {
		errs = append(errs, errors.New("monitor.sample_period must be positive"))
	}
	if c.Monitor.ProcessTimeout <= 0 {
		errs = append(errs, errors.New("monitor.process_timeout must be positive"))
	}
	if c.Monitor.TelemetryInterval <= 0 {
		errs = append(errs, errors.New("monitor.telemetry_interval must be positive"))
	}
	if c.Monitor.StateReadTimeout <= 0 {
		errs = append(errs, errors.New("monitor.state_read_timeout must be positive"))
	}
	if c.Monitor.QueueDepth < 1 {
		errs = append(errs, errors.New("monitor.queue_depth must be at least 1"))
	}

	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required when mqtt is enabled"))
	}

	return errors.Join(errs...)
}
