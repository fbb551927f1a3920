package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/thermal-monitor/internal/logic"
)

func TestClientIDAndTopics(t *testing.T) {
	id := ClientID("pi-kitchen")
	if id != "pi-kitchen_temp_monitor" {
		t.Errorf("unexpected client id: %s", id)
	}
	if got := FullTopic(id, TopicMeasured); got != "/pi-kitchen_temp_monitor/measured_temperature" {
		t.Errorf("unexpected topic: %s", got)
	}
	if got := FullTopic(id, TopicSystem); got != "/pi-kitchen_temp_monitor/system" {
		t.Errorf("unexpected system topic: %s", got)
	}
}

func TestFormatTelemetry(t *testing.T) {
	msgs := FormatTelemetry(Reading{
		Temperature: 21.456,
		Linear:      23.1,
		Holt:        22.999,
		Class:       logic.ClassAttention,
		Threshold:   27,
	})

	want := []Message{
		{TopicMeasured, "21.46"},
		{TopicPredicted, "23.10"},
		{TopicPredictedHolt, "23.00"},
		{TopicState, "Attention"},
		{TopicSetpoint, "27"},
		{TopicColor, "Yellow"},
	}
	if len(msgs) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(msgs))
	}
	for i := range want {
		if msgs[i] != want[i] {
			t.Errorf("message %d: expected %+v, got %+v", i, want[i], msgs[i])
		}
	}
}

func TestFormatTelemetryColors(t *testing.T) {
	tests := []struct {
		class logic.Class
		state string
		color string
	}{
		{logic.ClassNormal, "Normal", "Green"},
		{logic.ClassAttention, "Attention", "Yellow"},
		{logic.ClassAlert, "Alert", "Red"},
		{logic.ClassCritical, "Critical", "Red"},
	}

	for _, tt := range tests {
		msgs := FormatTelemetry(Reading{Class: tt.class})
		if msgs[3].Payload != tt.state {
			t.Errorf("%v: expected state %s, got %s", tt.class, tt.state, msgs[3].Payload)
		}
		if msgs[5].Payload != tt.color {
			t.Errorf("%v: expected color %s, got %s", tt.class, tt.color, msgs[5].Payload)
		}
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 1, 3, 22, 32, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-01-03T22:32:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		Event:     "RECONNECTED",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	system := parsed["system"].(map[string]interface{})
	if _, exists := system["reason"]; exists {
		t.Error("RECONNECTED should not have reason field")
	}
}

func TestFormatSystemPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	event := SystemEvent{
		Timestamp: time.Date(2026, 1, 3, 19, 32, 0, 0, loc),
		Event:     "STARTUP",
	}

	payload, _ := FormatSystemPayload(event)

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.System.Timestamp != "2026-01-03T22:32:00Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.System.Timestamp)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload not passed through: %s", payload)
	}
}

func TestWillEvent(t *testing.T) {
	will := WillEvent(time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC))
	if !will.Retained {
		t.Error("will should be retained")
	}

	payload, err := FormatSystemPayload(will)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"OFFLINE","reason":"MQTT_DISCONNECT"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	if err := f.Publish(TopicMeasured, "20.00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Publish(TopicMeasured, "20.50")
	f.Publish(TopicSetpoint, "30")

	if len(f.Published()) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(f.Published()))
	}
	if got, _ := f.Last(TopicMeasured); got != "20.50" {
		t.Errorf("expected last measured 20.50, got %s", got)
	}
	if _, ok := f.Last(TopicColor); ok {
		t.Error("nothing published on color")
	}
}

func TestFakePublisherDisconnected(t *testing.T) {
	f := NewFakePublisher()
	f.SetConnected(false)

	err := f.Publish(TopicMeasured, "20.00")
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if len(f.Messages) != 0 {
		t.Error("nothing should be recorded while disconnected")
	}
	if f.IsConnected() {
		t.Error("should report disconnected")
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("simulated error")

	if err := f.Publish(TopicMeasured, "20.00"); err == nil {
		t.Error("expected error to be returned")
	}
	if len(f.Messages) != 0 {
		t.Error("message should not be recorded on error")
	}
}

func TestFakePublisherPublishSystem(t *testing.T) {
	f := NewFakePublisher()

	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true})
	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "SHUTDOWN", Reason: "SIGINT", Retained: true})

	if len(f.SystemEvents) != 2 {
		t.Fatalf("expected 2 system events, got %d", len(f.SystemEvents))
	}
	if f.SystemEvents[1].Reason != "SIGINT" {
		t.Errorf("expected SIGINT reason, got %s", f.SystemEvents[1].Reason)
	}
	if len(f.SystemPayloads) != 2 {
		t.Errorf("expected 2 payloads, got %d", len(f.SystemPayloads))
	}
	if !f.SystemEvents[0].Retained {
		t.Error("first event should have Retained=true")
	}
}

func TestFakePublisherPublishSystemError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishSystemError = errors.New("simulated system error")

	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err == nil {
		t.Error("expected error")
	}
	if len(f.SystemEvents) != 0 {
		t.Error("event should not be recorded on error")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(TopicMeasured, "1")
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()
	f.SetConnected(false)

	f.Reset()

	if len(f.Messages) != 0 || len(f.SystemEvents) != 0 || len(f.SystemPayloads) != 0 {
		t.Error("recorded events should be cleared")
	}
	if f.Closed {
		t.Error("Closed should be reset")
	}
	if !f.Connected {
		t.Error("Connected should be reset to true")
	}
}
