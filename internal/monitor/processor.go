package monitor

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/thermal-monitor/internal/display"
	"github.com/sweeney/thermal-monitor/internal/logic"
	"github.com/sweeney/thermal-monitor/internal/metrics"
	"github.com/sweeney/thermal-monitor/internal/state"
)

// DefaultProcessTimeout bounds the processor's reaction latency when nobody
// wakes it.
const DefaultProcessTimeout = 100 * time.Millisecond

// Indicator drives the LEDs, matrix and buzzer for a class.
type Indicator interface {
	Apply(class logic.Class, configured bool) logic.IndicatorOutput
}

// Screen shows a frame of text lines.
type Screen interface {
	Show(lines []display.Line) error
}

// Report describes one processor cycle.
type Report struct {
	Time      time.Time
	Snapshot  state.Snapshot
	Predicted float32 // forecast used for classification
	Class     logic.Class
	Indicator logic.IndicatorOutput
	Lines     []display.Line
	Applied   []logic.Command
	Counts    CountsSnapshot
}

// Processor folds queued samples, forecasts and commands into the state,
// classifies it and refreshes the indicators and the screen.
type Processor struct {
	store     *state.Store
	reader    *stateReader
	queues    *Queues
	indicator Indicator
	screen    Screen
	counters  *Counters
	forecast  state.Forecast
	horizon   time.Duration
	timeout   time.Duration
	now       func() time.Time

	// observe, if set, receives every cycle's report.
	observe func(Report)
}

// ProcessorOptions configures a Processor.
type ProcessorOptions struct {
	ClassifyWith state.Forecast
	Horizon      time.Duration // lead time shown on the summary screen
	Timeout      time.Duration
	Now          func() time.Time
	Observe      func(Report)
}

// NewProcessor creates a Processor.
func NewProcessor(store *state.Store, q *Queues, ind Indicator, screen Screen, c *Counters, o ProcessorOptions) *Processor {
	if o.Timeout <= 0 {
		o.Timeout = DefaultProcessTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if c == nil {
		c = &Counters{}
	}
	return &Processor{
		store:     store,
		reader:    newStateReader("processor", store, c),
		queues:    q,
		indicator: ind,
		screen:    screen,
		counters:  c,
		forecast:  o.ClassifyWith,
		horizon:   o.Horizon,
		timeout:   o.Timeout,
		now:       o.Now,
		observe:   o.Observe,
	}
}

// Cycle runs one processor cycle. At most one item is taken from each
// queue; anything left waits for the next cycle.
func (p *Processor) Cycle() Report {
	start := time.Now()
	defer func() { metrics.CycleDuration.Observe(time.Since(start).Seconds()) }()

	var applied []logic.Command

	if s, ok := tryRecv(p.queues.Samples); ok {
		p.store.Mutate(func(st *state.State) { st.Temperature = s.Temperature })
	}
	if f, ok := tryRecv(p.queues.Forecasts); ok {
		p.store.Mutate(func(st *state.State) {
			st.PredictedLinear = f.Linear
			st.PredictedHolt = f.Holt
		})
	}
	if cmd, ok := tryRecv(p.queues.Commands); ok {
		p.store.Mutate(func(st *state.State) { st.Apply(cmd) })
		applied = append(applied, cmd)
		p.counters.Commands.Add(1)
		metrics.Commands.WithLabelValues(cmd.String()).Inc()
		log.Printf("processor: applied %s", cmd)
	}

	snap := p.reader.read()
	predicted := snap.Predicted(p.forecast)
	class := snap.Class(p.forecast)
	out := p.indicator.Apply(class, snap.Configured)

	lines := display.Render(snap, predicted, class, p.horizon)
	if err := p.screen.Show(lines); err != nil {
		log.Printf("processor: display: %v", err)
	}

	if !snap.Degraded {
		metrics.AlertClass.Set(float64(class))
		metrics.Threshold.Set(float64(snap.Threshold))
	}

	r := Report{
		Time:      p.now(),
		Snapshot:  snap,
		Predicted: predicted,
		Class:     class,
		Indicator: out,
		Lines:     lines,
		Applied:   applied,
		Counts:    p.counters.Snapshot(),
	}
	if p.observe != nil {
		p.observe(r)
	}
	return r
}

// Run cycles whenever it is woken or the timeout passes, until ctx is done.
func (p *Processor) Run(ctx context.Context) error {
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.queues.Wake():
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-timer.C:
		}
		p.Cycle()
		timer.Reset(p.timeout)
	}
}

// stateReader wraps Store.Read with degraded-read accounting. Only the first
// degraded read of a streak is logged.
type stateReader struct {
	who      string
	store    *state.Store
	counters *Counters
	streak   bool
}

func newStateReader(who string, store *state.Store, c *Counters) *stateReader {
	return &stateReader{who: who, store: store, counters: c}
}

func (r *stateReader) read() state.Snapshot {
	snap := r.store.Read()
	if !snap.Degraded {
		r.streak = false
		return snap
	}
	r.counters.Degraded.Add(1)
	metrics.DegradedReads.Inc()
	if !r.streak {
		log.Printf("%s: state lock busy, using degraded snapshot", r.who)
	}
	r.streak = true
	return snap
}
