// Package state holds the single authoritative record of the monitor's shared
// state. One lock guards the whole record so that fields written together are
// always read together.
package state

import (
	"sync/atomic"
	"time"

	"github.com/sweeney/thermal-monitor/internal/logic"
)

// DefaultThreshold is the alert threshold in degrees at startup.
const DefaultThreshold = 30

// DefaultReadTimeout bounds how long Read waits for the lock.
const DefaultReadTimeout = 10 * time.Millisecond

// DegradedTemperature is the sentinel reported by a degraded read.
const DegradedTemperature float32 = -99.9

// Forecast selects which prediction drives classification.
type Forecast int

const (
	ForecastLinear Forecast = iota
	ForecastHolt
)

func (f Forecast) String() string {
	if f == ForecastHolt {
		return "holt"
	}
	return "linear"
}

// State is the shared record.
type State struct {
	Threshold       int     // alert threshold, degrees
	Temperature     float32 // filtered current temperature
	PredictedLinear float32
	PredictedHolt   float32
	Screen          logic.Screen
	Configured      bool // user has left the threshold screen
}

// Default returns the startup state.
func Default() State {
	return State{
		Threshold: DefaultThreshold,
		Screen:    logic.ScreenConfig,
	}
}

// Predicted returns the forecast selected by f.
func (s State) Predicted(f Forecast) float32 {
	if f == ForecastHolt {
		return s.PredictedHolt
	}
	return s.PredictedLinear
}

// Class classifies the state using the forecast selected by f.
func (s State) Class(f Forecast) logic.Class {
	return logic.Classify(s.Temperature, s.Predicted(f), s.Threshold)
}

// Apply folds a user command into the state.
func (s *State) Apply(cmd logic.Command) {
	switch cmd {
	case logic.CommandNextScreen:
		s.Screen = logic.ScreenSummary
		s.Configured = true
	case logic.CommandPreviousScreen:
		s.Screen = logic.ScreenConfig
		s.Configured = false
	case logic.CommandRaiseThreshold, logic.CommandLowerThreshold:
		s.Threshold += cmd.ThresholdDelta()
	}
}

// Snapshot is a point-in-time copy of State.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	State
	// Degraded is set when the lock could not be taken in time. The other
	// fields then hold sentinels and must not be treated as a reading.
	Degraded bool
}

// degradedSnapshot is returned when Read times out.
func degradedSnapshot() Snapshot {
	return Snapshot{
		State: State{
			Threshold:       0,
			Temperature:     DegradedTemperature,
			PredictedLinear: DegradedTemperature,
			PredictedHolt:   DegradedTemperature,
			Screen:          logic.ScreenInvalid,
			Configured:      false,
		},
		Degraded: true,
	}
}

// Store guards a State with a one-slot semaphore. Unlike sync.Mutex the
// semaphore can be acquired with a deadline, which Read needs.
type Store struct {
	sem         chan struct{}
	state       State
	readTimeout time.Duration

	degraded atomic.Uint64
}

// NewStore creates a Store holding initial. A non-positive readTimeout uses
// DefaultReadTimeout.
func NewStore(initial State, readTimeout time.Duration) *Store {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	return &Store{
		sem:         make(chan struct{}, 1),
		state:       initial,
		readTimeout: readTimeout,
	}
}

// Read returns a full copy of the state, waiting at most the read timeout for
// the lock. On timeout it returns the degraded snapshot.
func (s *Store) Read() Snapshot {
	select {
	case s.sem <- struct{}{}:
	default:
		timer := time.NewTimer(s.readTimeout)
		defer timer.Stop()
		select {
		case s.sem <- struct{}{}:
		case <-timer.C:
			s.degraded.Add(1)
			return degradedSnapshot()
		}
	}

	snap := Snapshot{State: s.state}
	<-s.sem
	return snap
}

// Mutate applies f to the state under the lock, waiting as long as it takes
// to acquire it. f must not call back into the Store.
func (s *Store) Mutate(f func(*State)) {
	s.sem <- struct{}{}
	defer func() { <-s.sem }()
	f(&s.state)
}

// DegradedReads returns how many reads have timed out.
func (s *Store) DegradedReads() uint64 {
	return s.degraded.Load()
}
