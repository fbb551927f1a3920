package monitor

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sweeney/thermal-monitor/internal/forecast"
	"github.com/sweeney/thermal-monitor/internal/metrics"
	"github.com/sweeney/thermal-monitor/internal/sensor"
	"github.com/sweeney/thermal-monitor/internal/state"
)

// DefaultSamplePeriod is the time between sensor reads.
const DefaultSamplePeriod = 5 * time.Second

// Sampler reads the thermometer, feeds accepted readings through the
// predictor and commits the results. It owns the predictor.
type Sampler struct {
	thermometer sensor.Thermometer
	envelope    sensor.Envelope
	predictor   *forecast.Predictor
	store       *state.Store
	queues      *Queues
	counters    *Counters
	period      time.Duration
	now         func() time.Time

	start  time.Time
	seeded bool // false until the first in-range reading
}

// NewSampler creates a Sampler. Elapsed time is measured from the first call
// to now.
func NewSampler(t sensor.Thermometer, env sensor.Envelope, p *forecast.Predictor, store *state.Store, q *Queues, c *Counters, period time.Duration, now func() time.Time) *Sampler {
	if period <= 0 {
		period = DefaultSamplePeriod
	}
	if now == nil {
		now = time.Now
	}
	if c == nil {
		c = &Counters{}
	}
	return &Sampler{
		thermometer: t,
		envelope:    env,
		predictor:   p,
		store:       store,
		queues:      q,
		counters:    c,
		period:      period,
		now:         now,
		start:       now(),
	}
}

// Step runs one sampling cycle. A read error or an out-of-range reading
// skips the cycle and is returned; nothing is committed in that case.
func (s *Sampler) Step(ctx context.Context) error {
	raw, err := s.thermometer.ReadTemperature()
	if err != nil {
		s.counters.ReadErrors.Add(1)
		metrics.Samples.WithLabelValues("error").Inc()
		return err
	}
	if err := s.envelope.Check(raw); err != nil {
		s.counters.Discarded.Add(1)
		metrics.Samples.WithLabelValues("discarded").Inc()
		return err
	}

	t := s.now()
	elapsed := float32(t.Sub(s.start).Seconds())
	res := s.predictor.Observe(elapsed, raw)
	if !s.seeded {
		log.Printf("sampler: first reading %.2f", raw)
		s.seeded = true
	}
	s.counters.Accepted.Add(1)
	metrics.Samples.WithLabelValues("accepted").Inc()
	metrics.Temperature.Set(float64(res.Filtered))
	metrics.Prediction.WithLabelValues("linear").Set(float64(res.Linear))
	metrics.Prediction.WithLabelValues("holt").Set(float64(res.Holt))

	if err := sendWithin(ctx, s.queues.Samples, Sample{Temperature: res.Filtered, Time: t}, s.period); err != nil {
		s.dropped("samples", err)
	}
	if err := sendWithin(ctx, s.queues.Forecasts, ForecastResult{Linear: res.Linear, Holt: res.Holt}, s.period); err != nil {
		s.dropped("forecasts", err)
	}

	s.store.Mutate(func(st *state.State) {
		st.Temperature = res.Filtered
		st.PredictedLinear = res.Linear
		st.PredictedHolt = res.Holt
	})
	return nil
}

func (s *Sampler) dropped(queue string, err error) {
	if !errors.Is(err, ErrQueueFull) {
		return
	}
	s.counters.Dropped.Add(1)
	metrics.QueueDrops.WithLabelValues(queue).Inc()
	log.Printf("sampler: %s queue full, dropped", queue)
}

// Run samples once immediately and then on every tick until ctx is done.
func (s *Sampler) Run(ctx context.Context, tick <-chan time.Time) error {
	for {
		if err := s.Step(ctx); err != nil {
			switch {
			case errors.Is(err, sensor.ErrOutOfRange):
				log.Printf("sampler: discarded: %v", err)
			case ctx.Err() != nil:
			default:
				log.Printf("sampler: read error: %v", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-tick:
		}
	}
}
