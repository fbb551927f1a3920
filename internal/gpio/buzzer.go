package gpio

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// BeepGap is the silence between repeats of a pattern.
const BeepGap = 100 * time.Millisecond

// Buzzer plays beep patterns on a Tone. Only one pattern plays at a time;
// a second caller waits for the first to finish.
type Buzzer struct {
	mu    sync.Mutex
	tone  Tone
	sleep func(ctx context.Context, d time.Duration) error
}

// NewBuzzer wraps tone.
func NewBuzzer(tone Tone) *Buzzer {
	return &Buzzer{tone: tone, sleep: sleepCtx}
}

// Beep plays repeats+1 tones of duration d at freq Hz, each followed by
// BeepGap of silence. Cancelling ctx silences the buzzer and returns early.
func (b *Buzzer) Beep(ctx context.Context, d time.Duration, repeats, freq int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := 0; i <= repeats; i++ {
		if err := b.tone.On(freq); err != nil {
			return fmt.Errorf("buzzer on: %w", err)
		}
		err := b.sleep(ctx, d)
		if offErr := b.tone.Off(); offErr != nil {
			return fmt.Errorf("buzzer off: %w", offErr)
		}
		if err != nil {
			return err
		}
		if err := b.sleep(ctx, BeepGap); err != nil {
			return err
		}
	}
	return nil
}

// Silence stops any tone immediately. It does not wait for a pattern in
// progress.
func (b *Buzzer) Silence() error {
	return b.tone.Off()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
