package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferEmpty(t *testing.T) {
	b := New(5)

	assert.Equal(t, 0, b.ValidCount())
	assert.False(t, b.Full())
	assert.Nil(t, b.chronological())

	_, ok := b.latest()
	assert.False(t, ok)
}

func TestBufferPartialFill(t *testing.T) {
	b := New(5)
	for i := 0; i < 3; i++ {
		b.Push(float32(i*5), float32(20+i))
	}

	assert.Equal(t, 3, b.ValidCount())
	assert.False(t, b.Full())

	times := make([]float32, 5)
	values := make([]float32, 5)
	n := b.SnapshotInto(times, values)
	require.Equal(t, 3, n)
	assert.Equal(t, []float32{0, 5, 10}, times[:n])
	assert.Equal(t, []float32{20, 21, 22}, values[:n])
}

func TestBufferFillToCapacity(t *testing.T) {
	b := New(4)
	for i := 0; i < 4; i++ {
		b.Push(float32(i), float32(i))
	}

	assert.True(t, b.Full(), "cursor wrapped to zero, buffer should be full")
	assert.Equal(t, 4, b.ValidCount())
}

func TestBufferOverwritesOldest(t *testing.T) {
	capacity := 5
	b := New(capacity)

	// Push capacity+3 points (0..7); the ring keeps the most recent 5 (3..7).
	for i := 0; i < capacity+3; i++ {
		b.Push(float32(i), float32(100+i))
	}

	assert.True(t, b.Full())
	assert.Equal(t, capacity, b.ValidCount())

	got := b.chronological()
	require.Len(t, got, capacity)
	for i, p := range got {
		want := float32(i + 3)
		assert.Equal(t, want, p.Elapsed, "point %d elapsed", i)
		assert.Equal(t, 100+want, p.Temperature, "point %d temperature", i)
	}

	times := make([]float32, capacity)
	values := make([]float32, capacity)
	n := b.SnapshotInto(times, values)
	require.Equal(t, capacity, n)
	assert.ElementsMatch(t, []float32{3, 4, 5, 6, 7}, times)
	assert.ElementsMatch(t, []float32{103, 104, 105, 106, 107}, values)
}

func TestBufferStaysFullAcrossManyWraps(t *testing.T) {
	b := New(3)
	for i := 0; i < 100; i++ {
		b.Push(float32(i), float32(i))
		if i >= 2 {
			assert.True(t, b.Full(), "push %d", i)
			assert.Equal(t, 3, b.ValidCount(), "push %d", i)
		}
	}

	last, ok := b.latest()
	require.True(t, ok)
	assert.Equal(t, float32(99), last.Elapsed)
}

func TestBufferSnapshotIntoShortSlices(t *testing.T) {
	b := New(4)
	for i := 0; i < 4; i++ {
		b.Push(float32(i), float32(i))
	}

	times := make([]float32, 2)
	values := make([]float32, 4)
	assert.Equal(t, 2, b.SnapshotInto(times, values))
}

func TestBufferMinimumCapacity(t *testing.T) {
	b := New(0)
	assert.Equal(t, 1, b.Cap())

	b.Push(1, 10)
	assert.True(t, b.Full())
	b.Push(2, 20)

	last, ok := b.latest()
	require.True(t, ok)
	assert.Equal(t, Point{Elapsed: 2, Temperature: 20}, last)
}
