// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/thermal-monitor/internal/logic"
)

// Telemetry topic names, published under /<client_id>/.
const (
	TopicMeasured      = "measured_temperature"
	TopicPredicted     = "predicted_temperature"
	TopicPredictedHolt = "predicted_temperature_holt"
	TopicState         = "state"
	TopicSetpoint      = "setpoint"
	TopicColor         = "color"
)

// TopicSystem carries retained lifecycle events.
const TopicSystem = "system"

// ClientIDSuffix is appended to the hostname to form the default client id.
const ClientIDSuffix = "_temp_monitor"

// ErrNotConnected is returned by Publish while the broker is unreachable.
// Telemetry is not buffered; the caller skips the cycle.
var ErrNotConnected = errors.New("mqtt: not connected")

// Publisher publishes telemetry and lifecycle events.
type Publisher interface {
	// Publish sends one telemetry value on /<client_id>/<name>.
	// Returns error if publishing fails (should not crash the process).
	Publish(name, payload string) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// ClientID returns the default client id for hostname.
func ClientID(hostname string) string {
	return hostname + ClientIDSuffix
}

// FullTopic returns the topic for name under clientID.
func FullTopic(clientID, name string) string {
	return "/" + clientID + "/" + name
}

// Reading is one telemetry cycle's worth of values.
type Reading struct {
	Temperature float32
	Linear      float32
	Holt        float32
	Class       logic.Class
	Threshold   int
}

// Message is a formatted telemetry value.
type Message struct {
	Name    string
	Payload string
}

// FormatTelemetry returns the messages for r in publish order.
func FormatTelemetry(r Reading) []Message {
	return []Message{
		{Name: TopicMeasured, Payload: fmt.Sprintf("%.2f", r.Temperature)},
		{Name: TopicPredicted, Payload: fmt.Sprintf("%.2f", r.Linear)},
		{Name: TopicPredictedHolt, Payload: fmt.Sprintf("%.2f", r.Holt)},
		{Name: TopicState, Payload: r.Class.String()},
		{Name: TopicSetpoint, Payload: fmt.Sprintf("%d", r.Threshold)},
		{Name: TopicColor, Payload: string(r.Class.Color())},
	}
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "RECONNECTED"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// WillEvent is registered as the last will: the broker publishes it, retained,
// if the connection drops without a clean disconnect.
func WillEvent(now time.Time) SystemEvent {
	return SystemEvent{
		Timestamp: now,
		Event:     "OFFLINE",
		Reason:    "MQTT_DISCONNECT",
		Retained:  true,
	}
}
