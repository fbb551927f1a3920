package monitor

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sweeney/thermal-monitor/internal/metrics"
	"github.com/sweeney/thermal-monitor/internal/mqtt"
	"github.com/sweeney/thermal-monitor/internal/state"
)

// DefaultTelemetryInterval is the time between telemetry publishes.
const DefaultTelemetryInterval = 10 * time.Second

// Sink receives telemetry values. mqtt.Publisher and mirror.RedisMirror
// both satisfy it.
type Sink interface {
	Publish(name, payload string) error
}

// NamedSink labels a Sink for logs and metrics.
type NamedSink struct {
	Name string
	Sink Sink
}

// Telemetry publishes a snapshot of the state to every sink on each tick.
// It is best effort: a sink that fails or is disconnected misses the cycle
// and nothing is retried.
type Telemetry struct {
	reader   *stateReader
	sinks    []NamedSink
	forecast state.Forecast
	counters *Counters

	failing map[string]bool
}

// NewTelemetry creates a Telemetry publisher.
func NewTelemetry(store *state.Store, sinks []NamedSink, classifyWith state.Forecast, c *Counters) *Telemetry {
	if c == nil {
		c = &Counters{}
	}
	return &Telemetry{
		reader:   newStateReader("telemetry", store, c),
		sinks:    sinks,
		forecast: classifyWith,
		counters: c,
		failing:  make(map[string]bool),
	}
}

// Publish sends one cycle of telemetry. Nothing is sent until the user has
// completed configuration, or when the state could not be read. It returns
// the number of messages delivered.
func (t *Telemetry) Publish() int {
	snap := t.reader.read()
	if snap.Degraded || !snap.Configured {
		return 0
	}

	msgs := mqtt.FormatTelemetry(mqtt.Reading{
		Temperature: snap.Temperature,
		Linear:      snap.PredictedLinear,
		Holt:        snap.PredictedHolt,
		Class:       snap.Class(t.forecast),
		Threshold:   snap.Threshold,
	})

	sent := 0
	for _, s := range t.sinks {
		n, err := publishAll(s.Sink, msgs)
		sent += n
		switch {
		case errors.Is(err, mqtt.ErrNotConnected):
			metrics.Publishes.WithLabelValues(s.Name, "skipped").Inc()
		case err != nil:
			t.counters.PublishErrors.Add(1)
			metrics.Publishes.WithLabelValues(s.Name, "error").Inc()
			if !t.failing[s.Name] {
				log.Printf("telemetry: %s: %v", s.Name, err)
			}
			t.failing[s.Name] = true
		default:
			t.counters.Published.Add(uint64(n))
			metrics.Publishes.WithLabelValues(s.Name, "ok").Inc()
			if t.failing[s.Name] {
				log.Printf("telemetry: %s recovered", s.Name)
			}
			t.failing[s.Name] = false
		}
	}
	return sent
}

// publishAll sends msgs in order, stopping at the first error.
func publishAll(s Sink, msgs []mqtt.Message) (int, error) {
	for i, m := range msgs {
		if err := s.Publish(m.Name, m.Payload); err != nil {
			return i, err
		}
	}
	return len(msgs), nil
}

// Run publishes on every tick until ctx is done.
func (t *Telemetry) Run(ctx context.Context, tick <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			t.Publish()
		}
	}
}
