package status

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sweeney/thermal-monitor/internal/indicator"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Ready         bool          `json:"ready"`
	Degraded      bool          `json:"degraded"`
	Temperature   float64       `json:"temperature"`
	Forecast      ForecastJSON  `json:"forecast"`
	Threshold     int           `json:"threshold"`
	Screen        string        `json:"screen"`
	Configured    bool          `json:"configured"`
	Class         string        `json:"class"`
	Color         string        `json:"color"`
	Indicator     IndicatorJSON `json:"indicator"`
	Display       []string      `json:"display"`
	Cycles        uint64        `json:"cycles"`
	LastCycle     string        `json:"last_cycle,omitempty"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Counts        CountsJSON    `json:"counts"`
	Network       *NetworkJSON  `json:"network,omitempty"`
	Config        ConfigJSON    `json:"config"`
}

// ForecastJSON holds both forecasts at the horizon.
type ForecastJSON struct {
	Linear         float64 `json:"linear"`
	Holt           float64 `json:"holt"`
	HorizonSeconds int64   `json:"horizon_seconds"`
	ClassifyWith   string  `json:"classify_with"`
}

// IndicatorJSON is the indicator state after the last cycle.
type IndicatorJSON struct {
	Green   bool     `json:"green"`
	Red     bool     `json:"red"`
	Pattern string   `json:"pattern"`
	Matrix  []string `json:"matrix,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	ClientID  string `json:"client_id"`
}

// CountsJSON is the JSON representation of the monitor counters.
type CountsJSON struct {
	Accepted      uint64 `json:"samples_accepted"`
	Discarded     uint64 `json:"samples_discarded"`
	ReadErrors    uint64 `json:"read_errors"`
	Commands      uint64 `json:"commands"`
	Dropped       uint64 `json:"queue_drops"`
	Degraded      uint64 `json:"degraded_reads"`
	Published     uint64 `json:"published"`
	PublishErrors uint64 `json:"publish_errors"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	SamplePeriodMs int64  `json:"sample_period_ms"`
	InputPollMs    int64  `json:"input_poll_ms"`
	TelemetryMs    int64  `json:"telemetry_ms"`
	Broker         string `json:"broker"`
	HTTPAddr       string `json:"http_addr"`
	RedisAddr      string `json:"redis_addr,omitempty"`
	Simulate       bool   `json:"simulate,omitempty"`
}

// round2 keeps float32 noise out of the JSON.
func round2(v float32) float64 {
	return math.Round(float64(v)*100) / 100
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Ready:         snap.Ready,
		Screen:        "UNKNOWN",
		Class:         "UNKNOWN",
		Color:         "Off",
		Display:       []string{},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			ClientID:  snap.Config.ClientID,
		},
		Forecast: ForecastJSON{
			HorizonSeconds: snap.Config.HorizonSeconds,
			ClassifyWith:   snap.Config.ClassifyWith,
		},
		Config: ConfigJSON{
			SamplePeriodMs: snap.Config.SamplePeriodMs,
			InputPollMs:    snap.Config.InputPollMs,
			TelemetryMs:    snap.Config.TelemetryMs,
			Broker:         snap.Config.Broker,
			HTTPAddr:       snap.Config.HTTPAddr,
			RedisAddr:      snap.Config.RedisAddr,
			Simulate:       snap.Config.Simulate,
		},
	}
	if !snap.Ready {
		return inner
	}

	r := snap.Report
	inner.Cycles = snap.Cycles
	if !r.Time.IsZero() {
		inner.LastCycle = r.Time.UTC().Format(time.RFC3339Nano)
	}
	inner.Degraded = r.Snapshot.Degraded
	inner.Temperature = round2(r.Snapshot.Temperature)
	inner.Forecast.Linear = round2(r.Snapshot.PredictedLinear)
	inner.Forecast.Holt = round2(r.Snapshot.PredictedHolt)
	inner.Threshold = r.Snapshot.Threshold
	inner.Screen = r.Snapshot.Screen.String()
	inner.Configured = r.Snapshot.Configured
	inner.Class = r.Class.String()
	inner.Color = string(r.Indicator.Color)
	inner.Indicator = IndicatorJSON{
		Green:   r.Indicator.Green,
		Red:     r.Indicator.Red,
		Pattern: r.Indicator.Pattern.String(),
	}
	if g, ok := indicator.GlyphFor(r.Indicator.Pattern); ok {
		inner.Indicator.Matrix = g.Rows()
	}
	for _, l := range r.Lines {
		inner.Display = append(inner.Display, l.Text)
	}
	inner.Counts = CountsJSON{
		Accepted:      r.Counts.Accepted,
		Discarded:     r.Counts.Discarded,
		ReadErrors:    r.Counts.ReadErrors,
		Commands:      r.Counts.Commands,
		Dropped:       r.Counts.Dropped,
		Degraded:      r.Counts.Degraded,
		Published:     r.Counts.Published,
		PublishErrors: r.Counts.PublishErrors,
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
