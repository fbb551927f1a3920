package sensor

import "sync"

// FakeThermometer returns scripted readings in order. After the script is
// exhausted the last entry repeats.
type FakeThermometer struct {
	mu       sync.Mutex
	readings []FakeReading
	calls    int
}

// FakeReading is one scripted result.
type FakeReading struct {
	Value float32
	Err   error
}

// NewFakeThermometer creates a thermometer that returns values in order.
func NewFakeThermometer(values ...float32) *FakeThermometer {
	f := &FakeThermometer{}
	for _, v := range values {
		f.readings = append(f.readings, FakeReading{Value: v})
	}
	return f
}

// Push appends a scripted result.
func (f *FakeThermometer) Push(r FakeReading) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readings = append(f.readings, r)
}

// ReadTemperature returns the next scripted reading.
func (f *FakeThermometer) ReadTemperature() (float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.readings) == 0 {
		return 0, ErrNoReading
	}
	i := min(f.calls, len(f.readings)-1)
	f.calls++
	return f.readings[i].Value, f.readings[i].Err
}

// Calls returns how many reads have been made.
func (f *FakeThermometer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakeAnalog holds a settable raw value.
type FakeAnalog struct {
	mu  sync.Mutex
	raw int
	err error
}

// NewFakeAnalog creates an analog source resting at raw.
func NewFakeAnalog(raw int) *FakeAnalog {
	return &FakeAnalog{raw: raw}
}

// Set changes the value returned by ReadRaw.
func (f *FakeAnalog) Set(raw int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw = raw
}

// SetError makes subsequent reads fail with err (nil clears it).
func (f *FakeAnalog) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// ReadRaw returns the current value.
func (f *FakeAnalog) ReadRaw() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raw, f.err
}
