package sensor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the co-processor firmware.
const DefaultBaudRate = 115200

// DefaultStaleAfter is how old the last line may be before reads fail.
const DefaultStaleAfter = 3 * time.Second

// SerialBridge reads a microcontroller that streams one line per conversion:
//
//	<temperature °C>,<joystick raw 0..4095>
//	23.44,2048
//
// It serves both Thermometer and Analog from the most recent line.
type SerialBridge struct {
	port       string
	baudRate   int
	staleAfter time.Duration
	now        func() time.Time

	mu      sync.RWMutex
	conn    io.ReadCloser
	temp    float32
	raw     int
	updated time.Time
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSerialBridge creates a bridge for port. Call Connect to start reading.
func NewSerialBridge(port string, baudRate int) *SerialBridge {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &SerialBridge{
		port:       port,
		baudRate:   baudRate,
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
	}
}

// Connect opens the serial port and starts the reader goroutine.
func (b *SerialBridge) Connect() error {
	p, err := serial.Open(b.port, &serial.Mode{BaudRate: b.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", b.port, err)
	}
	b.start(p)
	return nil
}

// start begins consuming lines from r. Split out from Connect for tests.
func (b *SerialBridge) start(r io.ReadCloser) {
	ctx, cancel := context.WithCancel(context.Background())
	b.mu.Lock()
	b.conn = r
	b.cancel = cancel
	b.done = make(chan struct{})
	b.mu.Unlock()
	go b.readLines(ctx, r)
}

// Close stops the reader and closes the port.
func (b *SerialBridge) Close() error {
	b.mu.Lock()
	conn, cancel, done := b.conn, b.cancel, b.done
	b.conn = nil
	b.mu.Unlock()

	if conn == nil {
		return nil
	}
	cancel()
	err := conn.Close()
	<-done
	return err
}

func (b *SerialBridge) readLines(ctx context.Context, r io.Reader) {
	defer close(b.done)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		temp, raw, err := parseBridgeLine(line)
		if err != nil {
			log.Printf("sensor: failed to parse line %q: %v", line, err)
			continue
		}
		b.mu.Lock()
		b.temp, b.raw, b.updated = temp, raw, b.now()
		b.mu.Unlock()
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		log.Printf("sensor: error reading from serial port: %v", err)
	}
}

// ReadTemperature returns the temperature from the latest line.
func (b *SerialBridge) ReadTemperature() (float32, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.freshLocked(); err != nil {
		return 0, err
	}
	return b.temp, nil
}

// ReadRaw returns the joystick value from the latest line.
func (b *SerialBridge) ReadRaw() (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.freshLocked(); err != nil {
		return 0, err
	}
	return b.raw, nil
}

func (b *SerialBridge) freshLocked() error {
	if b.updated.IsZero() {
		return ErrNoReading
	}
	if age := b.now().Sub(b.updated); age > b.staleAfter {
		return fmt.Errorf("%w: last line %v ago", ErrNoReading, age.Round(time.Millisecond))
	}
	return nil
}

func parseBridgeLine(line string) (float32, int, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid line format: expected 2 comma-separated values, got %d", len(parts))
	}

	temp, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid temperature: %w", err)
	}

	raw, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid joystick value: %w", err)
	}
	if raw < 0 || raw > FullScale {
		return 0, 0, fmt.Errorf("joystick value out of range: %d (max %d)", raw, FullScale)
	}

	return float32(temp), raw, nil
}
