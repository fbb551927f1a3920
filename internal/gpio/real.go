//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

const chipName = "gpiochip0"

// RealButtons reads the push-buttons from actual hardware using Linux GPIO
// character device.
type RealButtons struct {
	chip *gpiocdev.Chip
	aPin *gpiocdev.Line
	bPin *gpiocdev.Line
}

// NewRealButtons requests the button lines as inputs with pull-up.
func NewRealButtons(pinA, pinB int) (*RealButtons, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Buttons short to ground; active-low makes Value() report pressed as 1.
	aLine, err := chip.RequestLine(pinA, gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button A pin %d: %w", pinA, err)
	}

	bLine, err := chip.RequestLine(pinB, gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow)
	if err != nil {
		aLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request button B pin %d: %w", pinB, err)
	}

	return &RealButtons{chip: chip, aPin: aLine, bPin: bLine}, nil
}

// Read returns the logical pressed state of A and B.
func (r *RealButtons) Read() (bool, bool, error) {
	a, err := r.aPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read button A pin: %w", err)
	}

	b, err := r.bPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read button B pin: %w", err)
	}

	return a == 1, b == 1, nil
}

// Close releases GPIO resources.
// Reconfigures pins to input with pull-down (matching Pi boot defaults) before
// closing to ensure clean state for system shutdown/reboot.
func (r *RealButtons) Close() error {
	return closeLines(r.chip, map[string]*gpiocdev.Line{"button A": r.aPin, "button B": r.bPin})
}

// RealLEDs drives the status LEDs.
type RealLEDs struct {
	chip     *gpiocdev.Chip
	greenPin *gpiocdev.Line
	redPin   *gpiocdev.Line
}

// NewRealLEDs requests the LED lines as outputs, initially off.
func NewRealLEDs(pinGreen, pinRed int) (*RealLEDs, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	green, err := chip.RequestLine(pinGreen, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request green LED pin %d: %w", pinGreen, err)
	}

	red, err := chip.RequestLine(pinRed, gpiocdev.AsOutput(0))
	if err != nil {
		green.Close()
		chip.Close()
		return nil, fmt.Errorf("request red LED pin %d: %w", pinRed, err)
	}

	return &RealLEDs{chip: chip, greenPin: green, redPin: red}, nil
}

// Set drives both LEDs.
func (r *RealLEDs) Set(green, red bool) error {
	if err := r.greenPin.SetValue(bit(green)); err != nil {
		return fmt.Errorf("set green LED: %w", err)
	}
	if err := r.redPin.SetValue(bit(red)); err != nil {
		return fmt.Errorf("set red LED: %w", err)
	}
	return nil
}

// Close switches the LEDs off and releases the lines.
func (r *RealLEDs) Close() error {
	_ = r.Set(false, false)
	return closeLines(r.chip, map[string]*gpiocdev.Line{"green LED": r.greenPin, "red LED": r.redPin})
}

// RealTone bit-bangs a square wave on the buzzer line. Timing jitter from the
// scheduler is audible but harmless for a piezo alert.
type RealTone struct {
	chip *gpiocdev.Chip
	pin  *gpiocdev.Line

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewRealTone requests the buzzer line as an output, initially low.
func NewRealTone(pin int) (*RealTone, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request buzzer pin %d: %w", pin, err)
	}
	return &RealTone{chip: chip, pin: line}, nil
}

// On starts a square wave at freq Hz.
func (r *RealTone) On(freq int) error {
	if freq <= 0 {
		return r.Off()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()

	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go r.wave(time.Second/time.Duration(2*freq), r.stop, r.done)
	return nil
}

// Off stops the wave and leaves the line low.
func (r *RealTone) Off() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
	if err := r.pin.SetValue(0); err != nil {
		return fmt.Errorf("buzzer low: %w", err)
	}
	return nil
}

func (r *RealTone) stopLocked() {
	if r.stop == nil {
		return
	}
	close(r.stop)
	<-r.done
	r.stop, r.done = nil, nil
}

func (r *RealTone) wave(half time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(half)
	defer ticker.Stop()

	level := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			level ^= 1
			_ = r.pin.SetValue(level)
		}
	}
}

// Close silences the buzzer and releases the line.
func (r *RealTone) Close() error {
	_ = r.Off()
	return closeLines(r.chip, map[string]*gpiocdev.Line{"buzzer": r.pin})
}

// closeLines reconfigures each line to match Raspberry Pi boot defaults
// (input with pull-down) and closes it, then closes the chip.
func closeLines(chip *gpiocdev.Chip, lines map[string]*gpiocdev.Line) error {
	var errs []error

	for name, l := range lines {
		if l == nil {
			continue
		}
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", name, err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", name, err))
		}
	}
	if chip != nil {
		if err := chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}
