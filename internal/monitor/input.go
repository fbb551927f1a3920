package monitor

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sweeney/thermal-monitor/internal/gpio"
	"github.com/sweeney/thermal-monitor/internal/logic"
	"github.com/sweeney/thermal-monitor/internal/metrics"
	"github.com/sweeney/thermal-monitor/internal/sensor"
	"github.com/sweeney/thermal-monitor/internal/state"
)

// DefaultInputPoll is the time between control polls.
const DefaultInputPoll = 50 * time.Millisecond

// Clicker plays the button feedback tone.
type Clicker interface {
	Click()
}

// InputHandler polls the buttons and the joystick and queues the resulting
// commands for the processor.
type InputHandler struct {
	buttons  gpio.Buttons
	analog   sensor.Analog
	detector *logic.InputDetector
	reader   *stateReader
	queues   *Queues
	clicker  Clicker
	counters *Counters
	now      func() time.Time

	overflowing bool
}

// NewInputHandler creates an InputHandler. clicker may be nil.
func NewInputHandler(b gpio.Buttons, a sensor.Analog, cfg logic.InputConfig, store *state.Store, q *Queues, clicker Clicker, c *Counters, now func() time.Time) *InputHandler {
	if now == nil {
		now = time.Now
	}
	if c == nil {
		c = &Counters{}
	}
	return &InputHandler{
		buttons:  b,
		analog:   a,
		detector: logic.NewInputDetector(cfg),
		reader:   newStateReader("input", store, c),
		queues:   q,
		clicker:  clicker,
		counters: c,
		now:      now,
	}
}

// Poll reads the controls once and queues any commands. It returns the
// commands that were queued. Commands lost to a full queue are counted and
// reported with ErrQueueFull.
func (h *InputHandler) Poll() ([]logic.Command, error) {
	// A degraded read reports ScreenInvalid; the detector then tracks edges
	// but emits nothing.
	snap := h.reader.read()

	a, b, err := h.buttons.Read()
	if err != nil {
		return nil, err
	}
	raw, err := h.analog.ReadRaw()
	if err != nil {
		// Treat an unreadable joystick as centred; buttons still work.
		log.Printf("input: analog read error: %v", err)
		raw = sensor.FullScale / 2
	}

	cmds := h.detector.Process(logic.InputSample{
		ADC:     raw,
		ButtonA: a,
		ButtonB: b,
		Time:    h.now(),
	}, snap.Screen)

	var queued []logic.Command
	var full bool
	for _, cmd := range cmds {
		if err := h.queues.TrySendCommand(cmd); err != nil {
			full = true
			h.counters.Dropped.Add(1)
			metrics.QueueDrops.WithLabelValues("commands").Inc()
			continue
		}
		queued = append(queued, cmd)
		if h.clicker != nil && (cmd == logic.CommandNextScreen || cmd == logic.CommandPreviousScreen) {
			h.clicker.Click()
		}
	}
	if len(queued) > 0 {
		h.queues.Notify()
	}

	if full {
		if !h.overflowing {
			log.Printf("input: command queue full, dropping commands")
		}
		h.overflowing = true
		return queued, ErrQueueFull
	}
	h.overflowing = false
	return queued, nil
}

// Run polls on every tick until ctx is done.
func (h *InputHandler) Run(ctx context.Context, tick <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			if _, err := h.Poll(); err != nil && !errors.Is(err, ErrQueueFull) {
				log.Printf("input: read error: %v", err)
			}
		}
	}
}
