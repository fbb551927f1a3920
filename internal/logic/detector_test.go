package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// poll builds a sample n ticks of 50ms after t0.
func poll(n int, adc int, a, b bool) InputSample {
	return InputSample{ADC: adc, ButtonA: a, ButtonB: b, Time: t0.Add(time.Duration(n) * 50 * time.Millisecond)}
}

const mid = 2048

func TestDetectorIdle(t *testing.T) {
	d := NewInputDetector(DefaultInputConfig())
	for i := 0; i < 20; i++ {
		assert.Empty(t, d.Process(poll(i, mid, false, false), ScreenConfig), "tick %d", i)
	}
}

func TestDetectorButtonAEdgeOnConfig(t *testing.T) {
	d := NewInputDetector(DefaultInputConfig())

	assert.Equal(t, []Command{CommandNextScreen}, d.Process(poll(0, mid, true, false), ScreenConfig))

	// Held: no repeat fire.
	for i := 1; i < 10; i++ {
		assert.Empty(t, d.Process(poll(i, mid, true, false), ScreenConfig), "held tick %d", i)
	}

	// Release then press again fires again.
	assert.Empty(t, d.Process(poll(10, mid, false, false), ScreenConfig))
	assert.Equal(t, []Command{CommandNextScreen}, d.Process(poll(11, mid, true, false), ScreenConfig))
}

func TestDetectorButtonADeadOnSummary(t *testing.T) {
	d := NewInputDetector(DefaultInputConfig())

	assert.Empty(t, d.Process(poll(0, mid, true, false), ScreenSummary))

	// Still held after switching to config: the press was latched, no fire.
	assert.Empty(t, d.Process(poll(1, mid, true, false), ScreenConfig))
}

func TestDetectorButtonBOnlyOffConfig(t *testing.T) {
	d := NewInputDetector(DefaultInputConfig())

	assert.Empty(t, d.Process(poll(0, mid, false, true), ScreenConfig), "B is dead on the config screen")
	assert.Empty(t, d.Process(poll(1, mid, false, false), ScreenSummary))
	assert.Equal(t, []Command{CommandPreviousScreen}, d.Process(poll(2, mid, false, true), ScreenSummary))
	assert.Empty(t, d.Process(poll(3, mid, false, true), ScreenSummary))
}

func TestDetectorJoystickOnlyOnConfig(t *testing.T) {
	d := NewInputDetector(DefaultInputConfig())

	assert.Empty(t, d.Process(poll(0, 4095, false, false), ScreenSummary))
	assert.Equal(t, []Command{CommandRaiseThreshold}, d.Process(poll(1, 4095, false, false), ScreenConfig))
}

func TestDetectorJoystickDebounce(t *testing.T) {
	d := NewInputDetector(DefaultInputConfig())

	// Held high at 50ms polls with a 300ms debounce: fires at 0, then once
	// strictly more than 300ms has passed (tick 7 = 350ms), then tick 14.
	var fired []int
	for i := 0; i <= 14; i++ {
		if cmds := d.Process(poll(i, 3500, false, false), ScreenConfig); len(cmds) > 0 {
			assert.Equal(t, []Command{CommandRaiseThreshold}, cmds)
			fired = append(fired, i)
		}
	}
	assert.Equal(t, []int{0, 7, 14}, fired)
}

func TestDetectorJoystickExactDebounceDoesNotFire(t *testing.T) {
	d := NewInputDetector(DefaultInputConfig())

	assert.NotEmpty(t, d.Process(InputSample{ADC: 0, Time: t0}, ScreenConfig))
	assert.Empty(t, d.Process(InputSample{ADC: 0, Time: t0.Add(300 * time.Millisecond)}, ScreenConfig))
	assert.Equal(t, []Command{CommandLowerThreshold},
		d.Process(InputSample{ADC: 0, Time: t0.Add(301 * time.Millisecond)}, ScreenConfig))
}

func TestDetectorJoystickThresholds(t *testing.T) {
	tests := []struct {
		adc  int
		want []Command
	}{
		{0, []Command{CommandLowerThreshold}},
		{999, []Command{CommandLowerThreshold}},
		{1000, nil},
		{2048, nil},
		{3000, nil},
		{3001, []Command{CommandRaiseThreshold}},
		{4095, []Command{CommandRaiseThreshold}},
	}

	for _, tt := range tests {
		d := NewInputDetector(DefaultInputConfig())
		got := d.Process(InputSample{ADC: tt.adc, Time: t0}, ScreenConfig)
		assert.Equal(t, tt.want, got, "adc=%d", tt.adc)
	}
}

func TestDetectorMidRangeDoesNotRestartDebounce(t *testing.T) {
	d := NewInputDetector(DefaultInputConfig())

	assert.NotEmpty(t, d.Process(poll(0, 4000, false, false), ScreenConfig))
	assert.Empty(t, d.Process(poll(2, mid, false, false), ScreenConfig))
	// 350ms after the last adjustment, not after the mid-range poll.
	assert.NotEmpty(t, d.Process(poll(7, 4000, false, false), ScreenConfig))
}

func TestDetectorOrderJoystickThenButtons(t *testing.T) {
	d := NewInputDetector(DefaultInputConfig())

	got := d.Process(poll(0, 4095, true, true), ScreenConfig)
	assert.Equal(t, []Command{CommandRaiseThreshold, CommandNextScreen}, got)
}

func TestDetectorInvalidScreenEmitsNothing(t *testing.T) {
	d := NewInputDetector(DefaultInputConfig())

	assert.Empty(t, d.Process(poll(0, 4095, true, true), ScreenInvalid))

	// The presses were latched during the unknown cycle.
	assert.Empty(t, d.Process(poll(1, mid, true, true), ScreenSummary))
}
