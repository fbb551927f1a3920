package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "w1", cfg.Sensor.Source)
	assert.Equal(t, float32(-20), cfg.Sensor.MinC)
	assert.Equal(t, float32(80), cfg.Sensor.MaxC)
	assert.Equal(t, 50*time.Millisecond, cfg.Input.Poll)
	assert.Equal(t, 3000, cfg.Input.ADCHigh)
	assert.Equal(t, 1000, cfg.Input.ADCLow)
	assert.Equal(t, 300*time.Millisecond, cfg.Input.JoystickDebounce)
	assert.Equal(t, 5, cfg.GPIO.ButtonA)
	assert.Equal(t, 6, cfg.GPIO.ButtonB)
	assert.Equal(t, uint16(0x3C), cfg.Display.Address)
	assert.Equal(t, float32(0.3), cfg.Forecast.Alpha)
	assert.Equal(t, float32(0.1), cfg.Forecast.Beta)
	assert.Equal(t, float32(0.2), cfg.Forecast.FilterWeight)
	assert.Equal(t, 300*time.Second, cfg.Forecast.Horizon)
	assert.Equal(t, 30, cfg.Forecast.History)
	assert.Equal(t, "linear", cfg.Forecast.ClassifyWith)
	assert.Equal(t, 5*time.Second, cfg.Monitor.SamplePeriod)
	assert.Equal(t, 100*time.Millisecond, cfg.Monitor.ProcessTimeout)
	assert.Equal(t, 10*time.Second, cfg.Monitor.TelemetryInterval)
	assert.Equal(t, 10*time.Millisecond, cfg.Monitor.StateReadTimeout)
	assert.Equal(t, 10, cfg.Monitor.QueueDepth)
	assert.Equal(t, 30, cfg.Monitor.Threshold)
	assert.False(t, cfg.Redis.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ValidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
sensor:
  source: serial
  serial_port: /dev/ttyACM0
  analog: serial

forecast:
  horizon: 10m
  classify_with: holt

monitor:
  sample_period: 2s
  threshold: 25

mqtt:
  broker: tcp://broker.local:1883
  client_id: kitchen_temp_monitor

redis:
  enabled: true
  addr: redis.local:6379

display:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "serial", cfg.Sensor.Source)
	assert.Equal(t, "/dev/ttyACM0", cfg.Sensor.SerialPort)
	assert.Equal(t, 10*time.Minute, cfg.Forecast.Horizon)
	assert.Equal(t, "holt", cfg.Forecast.ClassifyWith)
	assert.Equal(t, 2*time.Second, cfg.Monitor.SamplePeriod)
	assert.Equal(t, 25, cfg.Monitor.Threshold)
	assert.Equal(t, "kitchen_temp_monitor", cfg.MQTT.ClientID)
	assert.True(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Display.Enabled)

	// Untouched sections keep their defaults.
	assert.Equal(t, 3000, cfg.Input.ADCHigh)
	assert.Equal(t, float32(0.3), cfg.Forecast.Alpha)
	assert.True(t, cfg.MQTT.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EmptyValuesFallBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
forecast:
  alpha: 0
  history: 0
monitor:
  queue_depth: 0
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(0.3), cfg.Forecast.Alpha)
	assert.Equal(t, 30, cfg.Forecast.History)
	assert.Equal(t, 10, cfg.Monitor.QueueDepth)
}

func TestLoad_ThresholdZeroIsKept(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want int
	}{
		{"zero", "monitor:\n  threshold: 0\n", 0},
		{"below zero", "monitor:\n  threshold: -5\n", -5},
		{"empty value", "monitor:\n  threshold:\n", 30},
		{"missing key", "monitor:\n  queue_depth: 4\n", 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Monitor.Threshold)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("monitor: [unclosed"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Monitor.Threshold = 42
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Monitor.Threshold)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"bad source", func(c *Config) { c.Sensor.Source = "thermocouple" }, "sensor.source"},
		{"serial without port", func(c *Config) { c.Sensor.Source = "serial" }, "serial_port"},
		{"empty range", func(c *Config) { c.Sensor.MinC = 80 }, "sensor range"},
		{"adc inverted", func(c *Config) { c.Input.ADCLow = 3500 }, "adc_low"},
		{"alpha too big", func(c *Config) { c.Forecast.Alpha = 1.5 }, "forecast.alpha"},
		{"beta negative", func(c *Config) { c.Forecast.Beta = -0.1 }, "forecast.beta"},
		{"history too short", func(c *Config) { c.Forecast.History = 1 }, "forecast.history"},
		{"bad classifier", func(c *Config) { c.Forecast.ClassifyWith = "arima" }, "classify_with"},
		{"zero period", func(c *Config) { c.Monitor.SamplePeriod = 0 }, "sample_period"},
		{"negative telemetry", func(c *Config) { c.Monitor.TelemetryInterval = -time.Second }, "telemetry_interval"},
		{"no queue", func(c *Config) { c.Monitor.QueueDepth = 0 }, "queue_depth"},
		{"no broker", func(c *Config) { c.MQTT.Broker = "" }, "mqtt.broker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestValidateSimulatedSerialNeedsNoPort(t *testing.T) {
	cfg := Default()
	cfg.Simulate = true
	cfg.Sensor.Source = "serial"
	assert.NoError(t, cfg.Validate())
}
