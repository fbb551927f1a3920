// Package sensor provides the temperature and analog control sources with
// hardware abstraction. Real implementations read Linux sysfs or a serial
// co-processor; fakes return scripted values for tests.
package sensor

import (
	"errors"
	"fmt"
)

// ErrOutOfRange marks a reading outside the plausible envelope.
var ErrOutOfRange = errors.New("reading out of range")

// ErrNoReading is returned by sources that have not produced a value yet.
var ErrNoReading = errors.New("no reading available")

// Thermometer reads a temperature in °C. Implausible values are returned
// as-is; callers apply an Envelope.
type Thermometer interface {
	ReadTemperature() (float32, error)
}

// Analog reads a raw analog control value in the range 0..FullScale.
type Analog interface {
	ReadRaw() (int, error)
}

// FullScale is the maximum raw value of a 12-bit converter.
const FullScale = 4095

// Envelope is an exclusive plausibility range for temperature readings.
type Envelope struct {
	Min float32
	Max float32
}

// DefaultEnvelope rejects anything at or outside -20..80 °C.
func DefaultEnvelope() Envelope {
	return Envelope{Min: -20, Max: 80}
}

// Check returns ErrOutOfRange unless Min < v < Max. NaN never passes.
func (e Envelope) Check(v float32) error {
	if v > e.Min && v < e.Max {
		return nil
	}
	return fmt.Errorf("%w: %.2f not in (%.1f, %.1f)", ErrOutOfRange, v, e.Min, e.Max)
}
