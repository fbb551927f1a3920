// Package metrics exposes the monitor's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Temperature is the filtered current temperature.
	Temperature = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thermal_temperature_celsius",
			Help: "Filtered current temperature",
		},
	)

	// Prediction is the forecast at the horizon, by method.
	Prediction = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "thermal_prediction_celsius",
			Help: "Forecast temperature at the prediction horizon",
		},
		[]string{"method"},
	)

	// Threshold is the configured alert threshold.
	Threshold = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thermal_threshold_celsius",
			Help: "Alert threshold",
		},
	)

	// AlertClass is the current classification (0 Normal .. 3 Critical).
	AlertClass = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thermal_alert_class",
			Help: "Current alert class: 0 Normal, 1 Attention, 2 Alert, 3 Critical",
		},
	)

	// Samples counts sensor reads by outcome.
	Samples = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thermal_samples_total",
			Help: "Sensor reads by result (accepted, discarded, error)",
		},
		[]string{"result"},
	)

	// Commands counts user commands applied.
	Commands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thermal_commands_total",
			Help: "User commands applied",
		},
		[]string{"command"},
	)

	// QueueDrops counts items dropped because a queue was full.
	QueueDrops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thermal_queue_drops_total",
			Help: "Items dropped on a full queue",
		},
		[]string{"queue"},
	)

	// DegradedReads counts state reads that timed out.
	DegradedReads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thermal_degraded_reads_total",
			Help: "State reads that could not take the lock in time",
		},
	)

	// Publishes counts telemetry publish attempts by sink and result.
	Publishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thermal_publish_total",
			Help: "Telemetry publish attempts",
		},
		[]string{"sink", "result"},
	)

	// MQTTConnected is 1 while the broker connection is up.
	MQTTConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thermal_mqtt_connected",
			Help: "MQTT broker connection state",
		},
	)

	// CycleDuration is the time spent in one command processor cycle.
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thermal_processor_cycle_seconds",
			Help:    "Command processor cycle duration",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		},
	)
)

// SetConnected records the MQTT connection state.
func SetConnected(connected bool) {
	if connected {
		MQTTConnected.Set(1)
	} else {
		MQTTConnected.Set(0)
	}
}
