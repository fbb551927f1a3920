// Package history provides the fixed-capacity sample ring that feeds the
// linear-regression forecast.
package history

// DefaultCapacity is the number of samples kept: 30 readings at a 5 s period
// covers the last 2.5 minutes.
const DefaultCapacity = 30

// Point is one (elapsed seconds, filtered temperature) pair.
type Point struct {
	Elapsed     float32
	Temperature float32
}

// Buffer is a fixed-capacity ring that overwrites its oldest entry once full.
// Not safe for concurrent use; the sampler owns it exclusively.
type Buffer struct {
	times    []float32
	values   []float32
	capacity int
	cursor   int // next write position
	full     bool
}

// New creates a Buffer holding at most capacity points. A capacity below 1 is
// raised to 1.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		times:    make([]float32, capacity),
		values:   make([]float32, capacity),
		capacity: capacity,
	}
}

// Push writes a point at the cursor and advances it. Once the cursor wraps to
// zero for the first time the buffer is marked full and stays full.
func (b *Buffer) Push(elapsed, temperature float32) {
	b.times[b.cursor] = elapsed
	b.values[b.cursor] = temperature
	b.cursor = (b.cursor + 1) % b.capacity
	if b.cursor == 0 {
		b.full = true
	}
}

// ValidCount returns the number of valid points: capacity once full,
// otherwise the cursor.
func (b *Buffer) ValidCount() int {
	if b.full {
		return b.capacity
	}
	return b.cursor
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int {
	return b.capacity
}

// Full reports whether the cursor has wrapped at least once.
func (b *Buffer) Full() bool {
	return b.full
}

// SnapshotInto copies the valid points into times and values in storage
// order and returns how many were copied. Storage order is not chronological
// after a wrap; regression does not care. Copies stop early if either slice
// is shorter than ValidCount.
func (b *Buffer) SnapshotInto(times, values []float32) int {
	n := b.ValidCount()
	n = min(n, len(times), len(values))
	copy(times[:n], b.times[:n])
	copy(values[:n], b.values[:n])
	return n
}

// chronological returns the valid points oldest first.
func (b *Buffer) chronological() []Point {
	n := b.ValidCount()
	if n == 0 {
		return nil
	}

	out := make([]Point, n)
	// Oldest entry sits at the cursor when full, at 0 otherwise.
	start := 0
	if b.full {
		start = b.cursor
	}
	for i := 0; i < n; i++ {
		j := (start + i) % b.capacity
		out[i] = Point{Elapsed: b.times[j], Temperature: b.values[j]}
	}
	return out
}

// latest returns the most recently pushed point.
func (b *Buffer) latest() (Point, bool) {
	if b.ValidCount() == 0 {
		return Point{}, false
	}
	j := (b.cursor - 1 + b.capacity) % b.capacity
	return Point{Elapsed: b.times[j], Temperature: b.values[j]}, true
}
