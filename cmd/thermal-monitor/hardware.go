package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sweeney/thermal-monitor/internal/config"
	"github.com/sweeney/thermal-monitor/internal/display"
	"github.com/sweeney/thermal-monitor/internal/gpio"
	"github.com/sweeney/thermal-monitor/internal/sensor"
)

// hardware holds the opened devices and how to release them.
type hardware struct {
	thermometer sensor.Thermometer
	analog      sensor.Analog
	buttons     gpio.Buttons
	leds        gpio.LEDs
	tone        gpio.Tone
	panel       display.Panel

	closers []func() error
}

// Close releases the devices in reverse order of opening.
func (h *hardware) Close() error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	h.closers = nil
	return errors.Join(errs...)
}

func openHardware(cfg *config.Config) (*hardware, error) {
	if cfg.Simulate {
		return simulatedHardware(), nil
	}

	hw := &hardware{}
	if err := hw.open(cfg); err != nil {
		hw.Close()
		return nil, err
	}
	return hw, nil
}

func (h *hardware) open(cfg *config.Config) error {
	var bridge *sensor.SerialBridge
	if cfg.Sensor.Source == "serial" || cfg.Sensor.Analog == "serial" {
		bridge = sensor.NewSerialBridge(cfg.Sensor.SerialPort, cfg.Sensor.BaudRate)
		if err := bridge.Connect(); err != nil {
			return fmt.Errorf("init serial bridge: %w", err)
		}
		h.closers = append(h.closers, bridge.Close)
	}

	switch cfg.Sensor.Source {
	case "serial":
		h.thermometer = bridge
	default:
		w1, err := sensor.NewW1Thermometer(cfg.Sensor.W1Root, cfg.Sensor.W1Device)
		if err != nil {
			return fmt.Errorf("init thermometer: %w", err)
		}
		h.thermometer = w1
	}

	switch cfg.Sensor.Analog {
	case "serial":
		h.analog = bridge
	default:
		adc, err := sensor.NewIIOAnalog(cfg.Sensor.ADCPath, cfg.Sensor.ADCBits)
		if err != nil {
			return fmt.Errorf("init analog: %w", err)
		}
		h.analog = adc
	}

	buttons, err := gpio.NewRealButtons(cfg.GPIO.ButtonA, cfg.GPIO.ButtonB)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	h.buttons = buttons
	h.closers = append(h.closers, buttons.Close)

	leds, err := gpio.NewRealLEDs(cfg.GPIO.LEDGreen, cfg.GPIO.LEDRed)
	if err != nil {
		return fmt.Errorf("init leds: %w", err)
	}
	h.leds = leds
	h.closers = append(h.closers, leds.Close)

	tone, err := gpio.NewRealTone(cfg.GPIO.Buzzer)
	if err != nil {
		return fmt.Errorf("init buzzer: %w", err)
	}
	h.tone = tone
	h.closers = append(h.closers, tone.Close)

	if !cfg.Display.Enabled {
		h.panel = display.NewFramePanel()
		return nil
	}
	bus, err := display.OpenI2C(cfg.Display.Bus)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	h.closers = append(h.closers, bus.Close)
	panel, err := display.NewSSD1306Panel(bus, cfg.Display.Address)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	h.panel = panel
	return nil
}

// simulatedHardware replaces every device with an in-memory one. Button A is
// pressed once so the monitor leaves the threshold screen on its own.
func simulatedHardware() *hardware {
	return &hardware{
		thermometer: sensor.NewSimulatedThermometer(24, 8, 10*time.Minute, nil),
		analog:      sensor.NewFakeAnalog(sensor.FullScale / 2),
		buttons: gpio.NewFakeButtons([]gpio.Sample{
			{}, {A: true}, {},
		}),
		leds:  &gpio.FakeLEDs{},
		tone:  &gpio.FakeTone{},
		panel: display.NewFramePanel(),
	}
}

// printReadings reads every input once.
func printReadings(w io.Writer, hw *hardware) error {
	temp, err := hw.thermometer.ReadTemperature()
	if err != nil {
		return fmt.Errorf("read temperature: %w", err)
	}
	raw, err := hw.analog.ReadRaw()
	if err != nil {
		return fmt.Errorf("read analog: %w", err)
	}
	a, b, err := hw.buttons.Read()
	if err != nil {
		return fmt.Errorf("read buttons: %w", err)
	}
	fmt.Fprintf(w, "Temperature: %.2f °C, Joystick: %d, A: %s, B: %s\n", temp, raw, pressedString(a), pressedString(b))
	return nil
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
