package gpio

import (
	"errors"
	"sync"
)

// FakeButtons is a test double that returns scripted button states.
type FakeButtons struct {
	mu sync.Mutex

	// Samples contains scripted (A, B) values to return.
	// Each call to Read() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// Sample represents a single button reading (already in logical form).
type Sample struct {
	A bool // true = pressed
	B bool
}

// NewFakeButtons creates a FakeButtons with the given samples.
func NewFakeButtons(samples []Sample) *FakeButtons {
	return &FakeButtons{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeButtons) Read() (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ReadError != nil {
		return false, false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample.A, sample.B, nil
}

// Hold replaces the script with a single repeating sample.
func (f *FakeButtons) Hold(s Sample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Samples = []Sample{s}
	f.index = 0
}

// Close marks the buttons as closed.
func (f *FakeButtons) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// FakeLEDs records LED writes.
type FakeLEDs struct {
	mu     sync.Mutex
	green  bool
	red    bool
	writes int
	Closed bool
}

// Set records the new LED state.
func (f *FakeLEDs) Set(green, red bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.green, f.red = green, red
	f.writes++
	return nil
}

// State returns the last written LED state.
func (f *FakeLEDs) State() (green, red bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.green, f.red
}

// Writes returns how many times Set was called.
func (f *FakeLEDs) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// Close marks the LEDs as closed.
func (f *FakeLEDs) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// ToneEvent is one recorded buzzer transition. Freq is 0 for Off.
type ToneEvent struct {
	Freq int
}

// FakeTone records buzzer transitions.
type FakeTone struct {
	mu     sync.Mutex
	Events []ToneEvent
	Closed bool
}

// On records a tone start.
func (f *FakeTone) On(freq int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = append(f.Events, ToneEvent{Freq: freq})
	return nil
}

// Off records silence.
func (f *FakeTone) Off() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = append(f.Events, ToneEvent{})
	return nil
}

// Tones returns the frequencies of recorded On events, in order.
func (f *FakeTone) Tones() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for _, e := range f.Events {
		if e.Freq != 0 {
			out = append(out, e.Freq)
		}
	}
	return out
}

// Close marks the tone as closed.
func (f *FakeTone) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
