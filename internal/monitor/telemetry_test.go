package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/thermal-monitor/internal/logic"
	"github.com/sweeney/thermal-monitor/internal/mqtt"
	"github.com/sweeney/thermal-monitor/internal/state"
)

func configuredStore() *state.Store {
	st := state.Default()
	st.Temperature = 24.5
	st.PredictedLinear = 26.25
	st.PredictedHolt = 31
	st.Apply(logic.CommandNextScreen)
	return state.NewStore(st, time.Millisecond)
}

func TestTelemetryWaitsForConfiguration(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	tel := NewTelemetry(state.NewStore(state.Default(), time.Millisecond),
		[]NamedSink{{Name: "mqtt", Sink: pub}}, state.ForecastLinear, nil)

	assert.Zero(t, tel.Publish())
	assert.Empty(t, pub.Published())
}

func TestTelemetryPublishesSnapshot(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	c := &Counters{}
	tel := NewTelemetry(configuredStore(), []NamedSink{{Name: "mqtt", Sink: pub}}, state.ForecastLinear, c)

	require.Equal(t, 6, tel.Publish())

	want := []mqtt.Message{
		{Name: mqtt.TopicMeasured, Payload: "24.50"},
		{Name: mqtt.TopicPredicted, Payload: "26.25"},
		{Name: mqtt.TopicPredictedHolt, Payload: "31.00"},
		{Name: mqtt.TopicState, Payload: "Attention"},
		{Name: mqtt.TopicSetpoint, Payload: "30"},
		{Name: mqtt.TopicColor, Payload: "Yellow"},
	}
	assert.Equal(t, want, pub.Published())
	assert.Equal(t, uint64(6), c.Published.Load())
}

func TestTelemetryClassifyWithHolt(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	tel := NewTelemetry(configuredStore(), []NamedSink{{Name: "mqtt", Sink: pub}}, state.ForecastHolt, nil)

	tel.Publish()
	v, ok := pub.Last(mqtt.TopicState)
	require.True(t, ok)
	assert.Equal(t, "Alert", v)
}

func TestTelemetrySkipsDisconnectedSink(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	pub.SetConnected(false)
	mirror := mqtt.NewFakePublisher()
	c := &Counters{}
	tel := NewTelemetry(configuredStore(), []NamedSink{
		{Name: "mqtt", Sink: pub},
		{Name: "redis", Sink: mirror},
	}, state.ForecastLinear, c)

	assert.Equal(t, 6, tel.Publish(), "other sinks still receive the cycle")
	assert.Empty(t, pub.Published())
	assert.Len(t, mirror.Published(), 6)
	assert.Zero(t, c.PublishErrors.Load(), "disconnection is not an error")

	pub.SetConnected(true)
	assert.Equal(t, 12, tel.Publish())
	assert.Len(t, pub.Published(), 6, "missed cycle is not replayed")
}

func TestTelemetrySinkError(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	pub.PublishError = errors.New("broker rejected")
	c := &Counters{}
	tel := NewTelemetry(configuredStore(), []NamedSink{{Name: "mqtt", Sink: pub}}, state.ForecastLinear, c)

	assert.Zero(t, tel.Publish())
	assert.Zero(t, tel.Publish())
	assert.Equal(t, uint64(2), c.PublishErrors.Load())
}

func TestTelemetryDegradedReadSkips(t *testing.T) {
	store := configuredStore()
	pub := mqtt.NewFakePublisher()
	tel := NewTelemetry(store, []NamedSink{{Name: "mqtt", Sink: pub}}, state.ForecastLinear, nil)

	release := holdLock(t, store)
	assert.Zero(t, tel.Publish())
	release()
	assert.Empty(t, pub.Published())
}
