//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealButtons is not available on non-Linux platforms.
type RealButtons struct{}

// NewRealButtons returns an error on non-Linux platforms.
func NewRealButtons(pinA, pinB int) (*RealButtons, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RealButtons) Read() (bool, bool, error) {
	return false, false, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealButtons) Close() error {
	return nil
}

// RealLEDs is not available on non-Linux platforms.
type RealLEDs struct{}

// NewRealLEDs returns an error on non-Linux platforms.
func NewRealLEDs(pinGreen, pinRed int) (*RealLEDs, error) {
	return nil, errUnsupported
}

func (r *RealLEDs) Set(green, red bool) error { return errUnsupported }
func (r *RealLEDs) Close() error              { return nil }

// RealTone is not available on non-Linux platforms.
type RealTone struct{}

// NewRealTone returns an error on non-Linux platforms.
func NewRealTone(pin int) (*RealTone, error) {
	return nil, errUnsupported
}

func (r *RealTone) On(freq int) error { return errUnsupported }
func (r *RealTone) Off() error        { return errUnsupported }
func (r *RealTone) Close() error      { return nil }
