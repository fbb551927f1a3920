// Package monitor runs the four cooperating tasks of the temperature monitor:
// the sampler, the input handler, the command processor and the telemetry
// publisher. Tasks share nothing but the state store and the bounded queues
// defined here.
package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/sweeney/thermal-monitor/internal/logic"
)

// DefaultQueueDepth is the capacity of each queue.
const DefaultQueueDepth = 10

// ErrQueueFull is returned when an item could not be queued in time.
var ErrQueueFull = errors.New("queue full")

// Sample is one accepted, filtered temperature reading.
type Sample struct {
	Temperature float32
	Time        time.Time
}

// ForecastResult carries both forecasts computed for one sample.
type ForecastResult struct {
	Linear float32
	Holt   float32
}

// Queues connects producers to the command processor.
type Queues struct {
	Samples   chan Sample
	Forecasts chan ForecastResult
	Commands  chan logic.Command

	// wake holds at most one pending notification.
	wake chan struct{}
}

// NewQueues creates queues of the given depth. A non-positive depth uses
// DefaultQueueDepth.
func NewQueues(depth int) *Queues {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	return &Queues{
		Samples:   make(chan Sample, depth),
		Forecasts: make(chan ForecastResult, depth),
		Commands:  make(chan logic.Command, depth),
		wake:      make(chan struct{}, 1),
	}
}

// Notify wakes the command processor. Notifications coalesce.
func (q *Queues) Notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Wake returns the notification channel.
func (q *Queues) Wake() <-chan struct{} {
	return q.wake
}

// TrySendCommand queues cmd without blocking.
func (q *Queues) TrySendCommand(cmd logic.Command) error {
	select {
	case q.Commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// sendWithin queues v, waiting at most budget for room.
func sendWithin[T any](ctx context.Context, ch chan<- T, v T, budget time.Duration) error {
	select {
	case ch <- v:
		return nil
	default:
	}

	timer := time.NewTimer(budget)
	defer timer.Stop()
	select {
	case ch <- v:
		return nil
	case <-timer.C:
		return ErrQueueFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tryRecv takes one item from ch if one is waiting.
func tryRecv[T any](ch <-chan T) (T, bool) {
	select {
	case v := <-ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}
