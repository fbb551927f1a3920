package logic

import "time"

// Default analog control thresholds and debounce.
const (
	DefaultADCHigh          = 3000
	DefaultADCLow           = 1000
	DefaultJoystickDebounce = 300 * time.Millisecond
)

// InputConfig configures an InputDetector.
type InputConfig struct {
	ADCHigh          int           // above this the control means "up"
	ADCLow           int           // below this the control means "down"
	JoystickDebounce time.Duration // minimum interval between threshold adjustments
}

// DefaultInputConfig returns the stock control thresholds.
func DefaultInputConfig() InputConfig {
	return InputConfig{
		ADCHigh:          DefaultADCHigh,
		ADCLow:           DefaultADCLow,
		JoystickDebounce: DefaultJoystickDebounce,
	}
}

// InputDetector turns raw control polls into commands. Buttons are
// edge-triggered and latched while held; the analog control is rate limited.
type InputDetector struct {
	cfg InputConfig

	aLatched bool
	bLatched bool

	lastAdjust time.Time
	adjusted   bool // lastAdjust is meaningful
}

// NewInputDetector creates a detector with all buttons released.
func NewInputDetector(cfg InputConfig) *InputDetector {
	return &InputDetector{cfg: cfg}
}

// Process takes one poll and the screen currently shown, and returns the
// commands to emit in order: analog adjustment, then button A, then button B.
//
// Each button is only live on the screen where it means something: A
// advances from the config screen, B returns from any other screen. Pressing
// a dead button still latches it. On ScreenInvalid (state unknown this
// cycle) edges are tracked but nothing is emitted.
func (d *InputDetector) Process(in InputSample, screen Screen) []Command {
	var cmds []Command
	known := screen != ScreenInvalid

	if screen == ScreenConfig {
		if cmd, ok := d.processJoystick(in); ok {
			cmds = append(cmds, cmd)
		}
	}

	if d.edge(&d.aLatched, in.ButtonA) && known && screen == ScreenConfig {
		cmds = append(cmds, CommandNextScreen)
	}

	if d.edge(&d.bLatched, in.ButtonB) && known && screen != ScreenConfig {
		cmds = append(cmds, CommandPreviousScreen)
	}

	return cmds
}

func (d *InputDetector) processJoystick(in InputSample) (Command, bool) {
	if d.adjusted && in.Time.Sub(d.lastAdjust) <= d.cfg.JoystickDebounce {
		return 0, false
	}

	var cmd Command
	switch {
	case in.ADC > d.cfg.ADCHigh:
		cmd = CommandRaiseThreshold
	case in.ADC < d.cfg.ADCLow:
		cmd = CommandLowerThreshold
	default:
		return 0, false
	}

	d.lastAdjust = in.Time
	d.adjusted = true
	return cmd, true
}

// edge reports a released-to-pressed transition and maintains the latch.
func (d *InputDetector) edge(latched *bool, pressed bool) bool {
	if !pressed {
		*latched = false
		return false
	}
	if *latched {
		return false
	}
	*latched = true
	return true
}
