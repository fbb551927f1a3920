package forecast

import (
	"time"

	"github.com/sweeney/thermal-monitor/internal/history"
)

// Default timing.
const (
	DefaultHorizon = 300 * time.Second
	DefaultPeriod  = 5 * time.Second
)

// Params configures a Predictor.
type Params struct {
	Alpha        float32
	Beta         float32
	FilterWeight float32
	Horizon      time.Duration // how far ahead both forecasts look
	Period       time.Duration // sample period, converts Horizon into Holt steps
	Capacity     int           // history length
}

// DefaultParams returns the stock firmware parameters.
func DefaultParams() Params {
	return Params{
		Alpha:        DefaultAlpha,
		Beta:         DefaultBeta,
		FilterWeight: DefaultFilterWeight,
		Horizon:      DefaultHorizon,
		Period:       DefaultPeriod,
		Capacity:     history.DefaultCapacity,
	}
}

// Result is the outcome of one observed sample.
type Result struct {
	Filtered    float32
	Linear      float32
	Holt        float32
	LinearValid bool // false when the linear forecast fell back to Filtered
}

// Predictor owns the low-pass filter, the sample history and the Holt state
// for one sensor. Not safe for concurrent use; the sampler task owns it.
type Predictor struct {
	params  Params
	filter  *LowPass
	history *history.Buffer
	holt    *Holt

	// scratch for regression, sized to the history
	xs []float32
	ys []float32
}

// NewPredictor creates a Predictor. Zero fields in p take their defaults.
func NewPredictor(p Params) *Predictor {
	def := DefaultParams()
	if p.Alpha == 0 {
		p.Alpha = def.Alpha
	}
	if p.Beta == 0 {
		p.Beta = def.Beta
	}
	if p.FilterWeight == 0 {
		p.FilterWeight = def.FilterWeight
	}
	if p.Horizon == 0 {
		p.Horizon = def.Horizon
	}
	if p.Period == 0 {
		p.Period = def.Period
	}
	if p.Capacity == 0 {
		p.Capacity = def.Capacity
	}

	h := history.New(p.Capacity)
	return &Predictor{
		params:  p,
		filter:  NewLowPass(p.FilterWeight),
		history: h,
		holt:    NewHolt(p.Alpha, p.Beta),
		xs:      make([]float32, h.Cap()),
		ys:      make([]float32, h.Cap()),
	}
}

// Observe filters an in-range reading taken elapsed seconds after start,
// records it, steps the Holt state and returns both forecasts.
func (p *Predictor) Observe(elapsed, reading float32) Result {
	filtered := p.filter.Apply(reading)
	p.history.Push(elapsed, filtered)
	p.holt.Step(filtered)

	linear, ok := p.PredictLinear(elapsed, filtered)
	return Result{
		Filtered:    filtered,
		Linear:      linear,
		Holt:        p.holt.Forecast(p.holtSteps()),
		LinearValid: ok,
	}
}

// PredictLinear fits a line through the current history and evaluates it
// Horizon seconds after elapsed. With fewer than two points or a degenerate
// fit it returns fallback and false.
//
// Times are shifted so elapsed sits at zero before fitting. The fit is
// unchanged by the shift, and float32 sums stay well conditioned however long
// the process has been running.
func (p *Predictor) PredictLinear(elapsed, fallback float32) (float32, bool) {
	n := p.history.SnapshotInto(p.xs, p.ys)
	if n < 2 {
		return fallback, false
	}
	for i := 0; i < n; i++ {
		p.xs[i] -= elapsed
	}

	slope, intercept, ok := LinearRegression(p.xs, p.ys, n)
	if !ok {
		return fallback, false
	}
	return slope*p.horizonSeconds() + intercept, true
}

func (p *Predictor) horizonSeconds() float32 {
	return float32(p.params.Horizon.Seconds())
}

func (p *Predictor) holtSteps() float32 {
	return float32(p.params.Horizon.Seconds() / p.params.Period.Seconds())
}
