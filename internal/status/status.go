// Package status keeps the diagnostic view of the daemon that the HTTP
// handlers and the lifecycle events publish: the last processor report plus
// process-level facts the monitor itself does not track.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/thermal-monitor/internal/monitor"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config is the subset of the daemon configuration shown on the status page.
type Config struct {
	SamplePeriodMs int64
	InputPollMs    int64
	TelemetryMs    int64
	HorizonSeconds int64
	ClassifyWith   string
	Broker         string
	ClientID       string
	HTTPAddr       string
	RedisAddr      string // empty = mirror disabled
	Simulate       bool
}

// Snapshot is a copy of the tracked state taken at Now.
type Snapshot struct {
	Report        monitor.Report // most recent processor cycle
	Ready         bool           // at least one cycle has been recorded
	Cycles        uint64
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// ReportAge returns how long ago the last cycle ran, or zero before the
// first one.
func (s Snapshot) ReportAge() time.Duration {
	if !s.Ready {
		return 0
	}
	return s.Now.Sub(s.Report.Time)
}

// Tracker records reports from the processor task. Safe for concurrent use.
type Tracker struct {
	now func() time.Time

	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker for a daemon started at startTime.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return NewTrackerWithClock(startTime, cfg, time.Now)
}

// NewTrackerWithClock is NewTracker with an injected clock for Snapshot.Now.
func NewTrackerWithClock(startTime time.Time, cfg Config, now func() time.Time) *Tracker {
	return &Tracker{
		now: now,
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records a processor cycle. It runs on the processor goroutine once
// per cycle, so it only copies.
func (t *Tracker) Update(r monitor.Report) {
	t.mu.Lock()
	t.snap.Report = r
	t.snap.Ready = true
	t.snap.Cycles++
	t.mu.Unlock()
}

// SetMQTTConnected records the broker connection state.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork records the pi-helper network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a copy of the tracked state stamped with the current time.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
