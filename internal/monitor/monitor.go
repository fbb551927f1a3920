package monitor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sweeney/thermal-monitor/internal/forecast"
	"github.com/sweeney/thermal-monitor/internal/gpio"
	"github.com/sweeney/thermal-monitor/internal/indicator"
	"github.com/sweeney/thermal-monitor/internal/logic"
	"github.com/sweeney/thermal-monitor/internal/sensor"
	"github.com/sweeney/thermal-monitor/internal/state"
)

// Config holds task timing and algorithm parameters.
type Config struct {
	SamplePeriod      time.Duration
	InputPoll         time.Duration
	ProcessTimeout    time.Duration
	TelemetryInterval time.Duration
	QueueDepth        int

	Envelope     sensor.Envelope
	Forecast     forecast.Params // Period is overwritten with SamplePeriod
	ClassifyWith state.Forecast
	Input        logic.InputConfig
}

// DefaultConfig returns the stock firmware timing.
func DefaultConfig() Config {
	return Config{
		SamplePeriod:      DefaultSamplePeriod,
		InputPoll:         DefaultInputPoll,
		ProcessTimeout:    DefaultProcessTimeout,
		TelemetryInterval: DefaultTelemetryInterval,
		QueueDepth:        DefaultQueueDepth,
		Envelope:          sensor.DefaultEnvelope(),
		Forecast:          forecast.DefaultParams(),
		ClassifyWith:      state.ForecastLinear,
		Input:             logic.DefaultInputConfig(),
	}
}

// Devices are the collaborators the tasks drive. All but Sinks are required.
type Devices struct {
	Thermometer sensor.Thermometer
	Analog      sensor.Analog
	Buttons     gpio.Buttons
	Indicator   *indicator.Driver
	Screen      Screen
	Sinks       []NamedSink
}

// Monitor owns the tasks and the queues between them.
type Monitor struct {
	cfg       Config
	store     *state.Store
	queues    *Queues
	counters  *Counters
	indicator *indicator.Driver

	Sampler   *Sampler
	Input     *InputHandler
	Processor *Processor
	Telemetry *Telemetry
}

// New wires the tasks around store. observe, if non-nil, receives every
// processor report.
func New(cfg Config, store *state.Store, dev Devices, observe func(Report)) *Monitor {
	def := DefaultConfig()
	if cfg.SamplePeriod <= 0 {
		cfg.SamplePeriod = def.SamplePeriod
	}
	if cfg.InputPoll <= 0 {
		cfg.InputPoll = def.InputPoll
	}
	if cfg.TelemetryInterval <= 0 {
		cfg.TelemetryInterval = def.TelemetryInterval
	}
	cfg.Forecast.Period = cfg.SamplePeriod

	q := NewQueues(cfg.QueueDepth)
	c := &Counters{}
	predictor := forecast.NewPredictor(cfg.Forecast)

	m := &Monitor{
		cfg:       cfg,
		store:     store,
		queues:    q,
		counters:  c,
		indicator: dev.Indicator,
	}
	m.Sampler = NewSampler(dev.Thermometer, cfg.Envelope, predictor, store, q, c, cfg.SamplePeriod, nil)
	m.Input = NewInputHandler(dev.Buttons, dev.Analog, cfg.Input, store, q, dev.Indicator, c, nil)
	m.Processor = NewProcessor(store, q, dev.Indicator, dev.Screen, c, ProcessorOptions{
		ClassifyWith: cfg.ClassifyWith,
		Horizon:      cfg.Forecast.Horizon,
		Timeout:      cfg.ProcessTimeout,
		Observe:      observe,
	})
	m.Telemetry = NewTelemetry(store, dev.Sinks, cfg.ClassifyWith, c)
	return m
}

// Counts returns the current totals.
func (m *Monitor) Counts() CountsSnapshot {
	return m.counters.Snapshot()
}

// Run starts every task and blocks until ctx is cancelled. The indicator
// driver is stopped after the other tasks have returned so the outputs end
// dark and silent.
func (m *Monitor) Run(ctx context.Context) error {
	indCtx, stopIndicator := context.WithCancel(context.Background())
	indDone := make(chan error, 1)
	go func() { indDone <- m.indicator.Run(indCtx) }()

	g, ctx := errgroup.WithContext(ctx)

	sampleTick := time.NewTicker(m.cfg.SamplePeriod)
	defer sampleTick.Stop()
	inputTick := time.NewTicker(m.cfg.InputPoll)
	defer inputTick.Stop()
	telemetryTick := time.NewTicker(m.cfg.TelemetryInterval)
	defer telemetryTick.Stop()

	g.Go(func() error { return m.Sampler.Run(ctx, sampleTick.C) })
	g.Go(func() error { return m.Input.Run(ctx, inputTick.C) })
	g.Go(func() error { return m.Processor.Run(ctx) })
	g.Go(func() error { return m.Telemetry.Run(ctx, telemetryTick.C) })
	err := g.Wait()

	stopIndicator()
	<-indDone
	return err
}
