package forecast

// Default smoothing constants.
const (
	DefaultAlpha float32 = 0.3
	DefaultBeta  float32 = 0.1
)

// HoltState is the recurrence memory of double exponential smoothing.
type HoltState struct {
	Level       float32
	Trend       float32
	Initialized bool
}

// HoltStep advances s by one observation. The first step seeds the level with
// the observation and a zero trend, ignoring whatever s held; the recurrence
// only runs from the second observation on.
func HoltStep(s HoltState, observation, alpha, beta float32) HoltState {
	if !s.Initialized {
		return HoltState{Level: observation, Trend: 0, Initialized: true}
	}

	level := alpha*observation + (1-alpha)*(s.Level+s.Trend)
	trend := beta*(level-s.Level) + (1-beta)*s.Trend
	return HoltState{Level: level, Trend: trend, Initialized: true}
}

// Forecast extrapolates s by steps sample periods.
func (s HoltState) Forecast(steps float32) float32 {
	return s.Level + s.Trend*steps
}

// Holt is a HoltState bound to its smoothing constants.
type Holt struct {
	alpha float32
	beta  float32
	state HoltState
}

// NewHolt creates an uninitialised smoother.
func NewHolt(alpha, beta float32) *Holt {
	return &Holt{alpha: alpha, beta: beta}
}

// Step folds in one observation and returns the new level and trend.
func (h *Holt) Step(observation float32) (level, trend float32) {
	h.state = HoltStep(h.state, observation, h.alpha, h.beta)
	return h.state.Level, h.state.Trend
}

// Forecast extrapolates the current state by steps sample periods.
func (h *Holt) Forecast(steps float32) float32 {
	return h.state.Forecast(steps)
}
