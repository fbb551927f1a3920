package monitor

import "sync/atomic"

// Counters are process-lifetime totals shared by all tasks.
type Counters struct {
	Accepted      atomic.Uint64 // in-range readings
	Discarded     atomic.Uint64 // out-of-range readings
	ReadErrors    atomic.Uint64
	Commands      atomic.Uint64 // commands applied
	Dropped       atomic.Uint64 // items lost to a full queue
	Degraded      atomic.Uint64 // state reads that timed out
	Published     atomic.Uint64
	PublishErrors atomic.Uint64
}

// CountsSnapshot is a plain copy of Counters.
type CountsSnapshot struct {
	Accepted      uint64
	Discarded     uint64
	ReadErrors    uint64
	Commands      uint64
	Dropped       uint64
	Degraded      uint64
	Published     uint64
	PublishErrors uint64
}

// Snapshot copies the current totals. Fields are loaded one at a time, so
// the copy is not atomic across counters.
func (c *Counters) Snapshot() CountsSnapshot {
	return CountsSnapshot{
		Accepted:      c.Accepted.Load(),
		Discarded:     c.Discarded.Load(),
		ReadErrors:    c.ReadErrors.Load(),
		Commands:      c.Commands.Load(),
		Dropped:       c.Dropped.Load(),
		Degraded:      c.Degraded.Load(),
		Published:     c.Published.Load(),
		PublishErrors: c.PublishErrors.Load(),
	}
}
