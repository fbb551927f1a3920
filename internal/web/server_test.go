package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/thermal-monitor/internal/display"
	"github.com/sweeney/thermal-monitor/internal/logic"
	"github.com/sweeney/thermal-monitor/internal/metrics"
	"github.com/sweeney/thermal-monitor/internal/monitor"
	"github.com/sweeney/thermal-monitor/internal/state"
	"github.com/sweeney/thermal-monitor/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		SamplePeriodMs: 5000,
		InputPollMs:    50,
		TelemetryMs:    10000,
		HorizonSeconds: 300,
		ClassifyWith:   "linear",
		Broker:         "tcp://192.168.1.200:1883",
		ClientID:       "pi_temp_monitor",
		HTTPAddr:       ":8080",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func criticalReport() monitor.Report {
	st := state.Default()
	st.Temperature = 31.2
	st.PredictedLinear = 33.9
	st.PredictedHolt = 33.1
	st.Apply(logic.CommandNextScreen)
	return monitor.Report{
		Time:      time.Now(),
		Snapshot:  state.Snapshot{State: st},
		Predicted: 33.9,
		Class:     logic.ClassCritical,
		Indicator: logic.IndicatorFor(logic.ClassCritical, true, true),
		Lines:     display.SummaryScreen(31.2, 33.9, 30, logic.ClassCritical, 5*time.Minute),
		Counts:    monitor.CountsSnapshot{Accepted: 40, Published: 24},
	}
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(criticalReport())
	tr.SetMQTTConnected(true)

	sj := getJSON(t, ts.URL+"/index.json")

	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if sj.Status.Class != "Critical" {
		t.Errorf("Class: got %q, want Critical", sj.Status.Class)
	}
	if sj.Status.Color != "Red" {
		t.Errorf("Color: got %q, want Red", sj.Status.Color)
	}
	if sj.Status.Temperature != 31.2 {
		t.Errorf("Temperature: got %v, want 31.2", sj.Status.Temperature)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.Published != 24 {
		t.Errorf("Counts.Published: got %d, want 24", sj.Status.Counts.Published)
	}
	if sj.Status.Config.SamplePeriodMs != 5000 {
		t.Errorf("Config.SamplePeriodMs: got %d, want 5000", sj.Status.Config.SamplePeriodMs)
	}
}

func TestJSONBeforeFirstCycle(t *testing.T) {
	ts, _ := newTestServer(t)

	sj := getJSON(t, ts.URL+"/index.json")

	if sj.Status.Ready {
		t.Error("expected Ready=false")
	}
	if sj.Status.Class != "UNKNOWN" {
		t.Errorf("Class before first cycle: got %q, want UNKNOWN", sj.Status.Class)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	sj := getJSON(t, ts.URL+"/index.json")

	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(criticalReport())

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		`<td class="critical">Critical</td>`,
		"31.20 °C",
		"Status: Critical",
		"#...#", // X glyph
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestHTMLWaitingBeforeFirstCycle(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Waiting for the first cycle") {
		t.Error("expected waiting message")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	metrics.Threshold.Set(30)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "thermal_threshold_celsius 30") {
		t.Error("expected thermal_threshold_celsius in /metrics output")
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	sj1 := getJSON(t, ts.URL+"/index.json")
	if sj1.Status.Ready {
		t.Error("expected Ready=false initially")
	}

	tr.Update(criticalReport())
	tr.SetMQTTConnected(true)

	sj2 := getJSON(t, ts.URL+"/index.json")
	if !sj2.Status.Ready {
		t.Error("expected Ready=true after update")
	}
	if sj2.Status.Threshold != 30 {
		t.Errorf("Threshold: got %d, want 30", sj2.Status.Threshold)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)

	get := func() (int, string) {
		t.Helper()
		resp, err := http.Get(ts.URL + "/healthz")
		if err != nil {
			t.Fatalf("GET /healthz: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, strings.TrimSpace(string(body))
	}

	if code, body := get(); code != http.StatusServiceUnavailable || body != "starting" {
		t.Errorf("before first cycle: got %d %q, want 503 starting", code, body)
	}

	tr.Update(criticalReport())
	if code, body := get(); code != http.StatusOK || body != "ok" {
		t.Errorf("after cycle: got %d %q, want 200 ok", code, body)
	}

	degraded := criticalReport()
	degraded.Snapshot.Degraded = true
	tr.Update(degraded)
	if code, body := get(); code != http.StatusServiceUnavailable || body != "degraded" {
		t.Errorf("degraded: got %d %q, want 503 degraded", code, body)
	}

	old := criticalReport()
	old.Time = time.Now().Add(-time.Minute)
	tr.Update(old)
	if code, body := get(); code != http.StatusServiceUnavailable || body != "stale" {
		t.Errorf("stale: got %d %q, want 503 stale", code, body)
	}
}

func TestPostNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/index.json", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", resp.StatusCode)
	}
}
