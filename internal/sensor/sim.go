package sensor

import (
	"time"

	"github.com/chewxy/math32"
)

// SimulatedThermometer produces a slow sine wave around a base temperature.
// It stands in for the hardware when the daemon runs with simulate: true.
type SimulatedThermometer struct {
	Base      float32       // °C
	Amplitude float32       // °C
	Period    time.Duration // one full swing
	start     time.Time
	now       func() time.Time
}

// NewSimulatedThermometer creates a simulator starting at base and swinging
// ±amplitude over period. now may be nil to use time.Now.
func NewSimulatedThermometer(base, amplitude float32, period time.Duration, now func() time.Time) *SimulatedThermometer {
	if now == nil {
		now = time.Now
	}
	if period <= 0 {
		period = 10 * time.Minute
	}
	return &SimulatedThermometer{
		Base:      base,
		Amplitude: amplitude,
		Period:    period,
		start:     now(),
		now:       now,
	}
}

// ReadTemperature returns the simulated value for the current time.
func (s *SimulatedThermometer) ReadTemperature() (float32, error) {
	phase := float32(s.now().Sub(s.start).Seconds() / s.Period.Seconds())
	return s.Base + s.Amplitude*math32.Sin(2*math32.Pi*phase), nil
}
