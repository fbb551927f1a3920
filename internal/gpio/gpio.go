// Package gpio provides the push-buttons, status LEDs and piezo buzzer with
// hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Buttons reads the two push-buttons.
type Buttons interface {
	// Read returns the logical pressed state of A and B.
	// The buttons pull to ground, so raw low = pressed.
	Read() (a, b bool, err error)

	// Close releases GPIO resources.
	Close() error
}

// LEDs drives the green and red status LEDs.
type LEDs interface {
	Set(green, red bool) error
	Close() error
}

// Tone switches a square wave on the buzzer pin.
type Tone interface {
	// On starts a tone at freq Hz, replacing any tone already playing.
	On(freq int) error
	// Off silences the buzzer.
	Off() error
	Close() error
}

// Pin definitions (BCM numbering)
const (
	PinButtonA  = 5
	PinButtonB  = 6
	PinLEDGreen = 12
	PinLEDRed   = 13
	PinBuzzer   = 21
)
