package display

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"

	"github.com/sweeney/thermal-monitor/internal/logic"
	"github.com/sweeney/thermal-monitor/internal/state"
)

// Centered returns text horizontally centred on the panel at row y.
// Text wider than the panel starts at 0.
func Centered(text string, y int) Line {
	x := (Width - len(text)*GlyphWidth) / 2
	return Line{X: max(x, 0), Y: y, Text: text}
}

// Render lays out the screen selected by snap. predicted is the forecast
// shown on the summary screen, horizon its lead time.
func Render(snap state.Snapshot, predicted float32, class logic.Class, horizon time.Duration) []Line {
	switch snap.Screen {
	case logic.ScreenConfig:
		return ConfigScreen(snap.Threshold)
	case logic.ScreenSummary:
		return SummaryScreen(snap.Temperature, predicted, snap.Threshold, class, horizon)
	default:
		return InvalidScreen()
	}
}

// ConfigScreen shows the threshold being edited.
func ConfigScreen(threshold int) []Line {
	return []Line{
		Centered("Alert", 0),
		Centered("Threshold", 16),
		Centered(fmt.Sprintf("%d C", threshold), 40),
	}
}

// SummaryScreen shows one value per line.
func SummaryScreen(current, predicted float32, threshold int, class logic.Class, horizon time.Duration) []Line {
	return []Line{
		{X: 0, Y: 0, Text: fmt.Sprintf("Threshold: %d C", threshold)},
		{X: 0, Y: 14, Text: fmt.Sprintf("Now: %.1fC", oneDecimal(current))},
		{X: 0, Y: 28, Text: fmt.Sprintf("In %s: %.1fC", shortDuration(horizon), oneDecimal(predicted))},
		{X: 0, Y: 42, Text: fmt.Sprintf("Status: %s", class)},
	}
}

// InvalidScreen is drawn when the state could not be read.
func InvalidScreen() []Line {
	return []Line{
		{X: 0, Y: 0, Text: "Error: Screen"},
		{X: 0, Y: 16, Text: "Invalid"},
	}
}

// oneDecimal rounds v to 0.1 and folds -0 into 0 so the panel never shows
// "-0.0".
func oneDecimal(v float32) float32 {
	r := math32.Round(v*10) / 10
	if r == 0 {
		return 0
	}
	return r
}

func shortDuration(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%dmin", int(d/time.Minute))
	}
	return fmt.Sprintf("%ds", int(d/time.Second))
}
