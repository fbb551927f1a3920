// Package indicator turns an alert class into LED, matrix and buzzer output.
// Output is a function of the class and a blink phase that toggles every
// BlinkInterval while the monitor is configured.
package indicator

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sweeney/thermal-monitor/internal/gpio"
	"github.com/sweeney/thermal-monitor/internal/logic"
)

// BlinkInterval is the minimum time between blink phase changes.
const BlinkInterval = 500 * time.Millisecond

// Blink tracks the visible/hidden phase of blinking outputs.
type Blink struct {
	interval time.Duration
	last     time.Time
	visible  bool
}

// Phase returns the phase at now, toggling it when more than the interval
// has passed since the last toggle. toggled is true on the call that flipped.
func (b *Blink) Phase(now time.Time) (visible, toggled bool) {
	if now.Sub(b.last) > b.interval {
		b.visible = !b.visible
		b.last = now
		return b.visible, true
	}
	return b.visible, false
}

// Beeper plays beep patterns.
type Beeper interface {
	Beep(ctx context.Context, d time.Duration, repeats, freq int) error
	Silence() error
}

var _ Beeper = (*gpio.Buzzer)(nil)

// Driver applies indicator output to hardware. Apply is called from the
// command processor; Click may be called from any goroutine. Beeps are
// played by Run so that a long pattern never stalls the caller.
type Driver struct {
	leds   gpio.LEDs
	matrix Matrix
	buzzer Beeper
	now    func() time.Time

	beeps   chan logic.Beep
	playing atomic.Bool

	mu         sync.Mutex
	blink      Blink
	current    logic.IndicatorOutput
	lastClass  logic.Class
	lastConfig bool
	silenced   bool
}

// New creates a Driver. now may be nil to use time.Now.
func New(leds gpio.LEDs, matrix Matrix, buzzer Beeper, now func() time.Time) *Driver {
	if now == nil {
		now = time.Now
	}
	return &Driver{
		leds:   leds,
		matrix: matrix,
		buzzer: buzzer,
		now:    now,
		beeps:  make(chan logic.Beep, 1),
		blink:  Blink{interval: BlinkInterval},
	}
}

// Apply drives every indicator for class. A pattern's beep is queued once
// per visible phase, or immediately when the class changes.
func (d *Driver) Apply(class logic.Class, configured bool) logic.IndicatorOutput {
	d.mu.Lock()
	defer d.mu.Unlock()

	// The phase is frozen while unconfigured.
	visible, toggled := d.blink.visible, false
	if configured {
		visible, toggled = d.blink.Phase(d.now())
	}
	out := logic.IndicatorFor(class, configured, visible)

	if err := d.leds.Set(out.Green, out.Red); err != nil {
		log.Printf("indicator: set LEDs: %v", err)
	}
	if g, ok := GlyphFor(out.Pattern); ok {
		if err := d.matrix.Show(g, out.Color); err != nil {
			log.Printf("indicator: draw matrix: %v", err)
		}
	} else if err := d.matrix.Clear(); err != nil {
		log.Printf("indicator: clear matrix: %v", err)
	}

	changed := class != d.lastClass || configured != d.lastConfig
	if out.Beep != nil && (toggled || changed) {
		d.queueBeep(*out.Beep)
		d.silenced = false
	}
	if out.Silence && !d.silenced && !d.playing.Load() {
		if err := d.buzzer.Silence(); err != nil {
			log.Printf("indicator: silence buzzer: %v", err)
		}
		d.silenced = true
	}

	d.current = out
	d.lastClass, d.lastConfig = class, configured
	return out
}

// Click queues the button feedback tone.
func (d *Driver) Click() {
	d.queueBeep(logic.BeepClick)
}

// queueBeep hands b to Run. If a beep is already waiting, b is dropped.
func (d *Driver) queueBeep(b logic.Beep) {
	select {
	case d.beeps <- b:
	default:
	}
}

// Current returns the output of the most recent Apply.
func (d *Driver) Current() logic.IndicatorOutput {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Run plays queued beeps until ctx is cancelled, then silences the buzzer
// and turns everything off.
func (d *Driver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return nil
		case b := <-d.beeps:
			d.playing.Store(true)
			err := d.buzzer.Beep(ctx, b.Duration, b.Repeats, b.Frequency)
			d.playing.Store(false)
			if err != nil && ctx.Err() == nil {
				log.Printf("indicator: beep: %v", err)
			}
		}
	}
}

func (d *Driver) shutdown() {
	if err := d.buzzer.Silence(); err != nil {
		log.Printf("indicator: silence buzzer: %v", err)
	}
	if err := d.leds.Set(false, false); err != nil {
		log.Printf("indicator: set LEDs: %v", err)
	}
	if err := d.matrix.Clear(); err != nil {
		log.Printf("indicator: clear matrix: %v", err)
	}
}
