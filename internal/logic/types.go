// Package logic contains the pure decision rules of the monitor: alert
// classification, user commands, input edge detection and indicator policy.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Screen identifies the page shown on the panel.
type Screen int

const (
	ScreenInvalid Screen = -1 // only ever seen in a degraded state read
	ScreenConfig  Screen = 0  // threshold setting
	ScreenSummary Screen = 1  // normal monitoring
)

func (s Screen) String() string {
	switch s {
	case ScreenConfig:
		return "CONFIG"
	case ScreenSummary:
		return "SUMMARY"
	default:
		return "INVALID"
	}
}

// Command is a user intent produced by the input handler.
type Command int

const (
	CommandNextScreen Command = iota
	CommandPreviousScreen
	CommandRaiseThreshold
	CommandLowerThreshold
)

func (c Command) String() string {
	switch c {
	case CommandNextScreen:
		return "NEXT_SCREEN"
	case CommandPreviousScreen:
		return "PREVIOUS_SCREEN"
	case CommandRaiseThreshold:
		return "RAISE_THRESHOLD"
	case CommandLowerThreshold:
		return "LOWER_THRESHOLD"
	default:
		return "UNKNOWN"
	}
}

// ThresholdDelta returns the threshold adjustment carried by c.
func (c Command) ThresholdDelta() int {
	switch c {
	case CommandRaiseThreshold:
		return 1
	case CommandLowerThreshold:
		return -1
	default:
		return 0
	}
}

// InputSample is one poll of the local controls.
type InputSample struct {
	ADC     int  // analog control, full scale 0-4095
	ButtonA bool // true = pressed
	ButtonB bool
	Time    time.Time
}

// Class is the alert classification derived from the current state.
type Class int

const (
	ClassNormal Class = iota
	ClassAttention
	ClassAlert
	ClassCritical
)

func (c Class) String() string {
	switch c {
	case ClassNormal:
		return "Normal"
	case ClassAttention:
		return "Attention"
	case ClassAlert:
		return "Alert"
	case ClassCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// Color is the colour used for a class on the matrix and in telemetry.
type Color string

const (
	ColorOff    Color = "Off"
	ColorGreen  Color = "Green"
	ColorYellow Color = "Yellow"
	ColorRed    Color = "Red"
)

// Color returns the colour label for c.
func (c Class) Color() Color {
	switch c {
	case ClassNormal:
		return ColorGreen
	case ClassAttention:
		return ColorYellow
	case ClassAlert, ClassCritical:
		return ColorRed
	default:
		return ColorOff
	}
}
