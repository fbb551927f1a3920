package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/thermal-monitor/internal/mqtt"
)

// memHash is an in-memory hashStore.
type memHash struct {
	mu      sync.Mutex
	data    map[string]map[string]string
	pingErr error
	setErr  error
	closed  bool
}

func newMemHash() *memHash {
	return &memHash{data: map[string]map[string]string{}}
}

func (h *memHash) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	h.mu.Lock()
	defer h.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	if h.setErr != nil {
		cmd.SetErr(h.setErr)
		return cmd
	}
	if h.data[key] == nil {
		h.data[key] = map[string]string{}
	}
	for i := 0; i+1 < len(values); i += 2 {
		h.data[key][fmt.Sprint(values[i])] = fmt.Sprint(values[i+1])
	}
	cmd.SetVal(int64(len(values) / 2))
	return cmd
}

func (h *memHash) HGet(ctx context.Context, key, field string) *redis.StringCmd {
	h.mu.Lock()
	defer h.mu.Unlock()
	cmd := redis.NewStringCmd(ctx)
	v, ok := h.data[key][field]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (h *memHash) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if h.pingErr != nil {
		cmd.SetErr(h.pingErr)
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

func (h *memHash) Close() error {
	h.closed = true
	return nil
}

func TestMirrorPublishWritesHashField(t *testing.T) {
	h := newMemHash()
	m, err := newMirror(h, Options{Key: "thermal:pi_temp_monitor"})
	require.NoError(t, err)
	m.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	for _, msg := range mqtt.FormatTelemetry(mqtt.Reading{Temperature: 21.5, Threshold: 28}) {
		require.NoError(t, m.Publish(msg.Name, msg.Payload))
	}

	fields := h.data["thermal:pi_temp_monitor"]
	assert.Equal(t, "21.50", fields[mqtt.TopicMeasured])
	assert.Equal(t, "28", fields[mqtt.TopicSetpoint])
	assert.Equal(t, "Green", fields[mqtt.TopicColor])
	assert.Equal(t, "2026-03-01T12:00:00Z", fields[FieldUpdated])
}

func TestMirrorLoadThreshold(t *testing.T) {
	h := newMemHash()
	m, err := newMirror(h, Options{Key: "k"})
	require.NoError(t, err)

	_, ok, err := m.LoadThreshold(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "nothing stored yet")

	require.NoError(t, m.Publish(mqtt.TopicSetpoint, "33"))
	v, ok, err := m.LoadThreshold(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 33, v)

	require.NoError(t, m.Publish(mqtt.TopicSetpoint, "warm"))
	_, _, err = m.LoadThreshold(context.Background())
	assert.ErrorContains(t, err, "bad value")
}

func TestMirrorPingFailure(t *testing.T) {
	h := newMemHash()
	h.pingErr = errors.New("connection refused")

	_, err := newMirror(h, Options{Key: "k"})
	assert.ErrorContains(t, err, "failed to connect to Redis")
	assert.True(t, h.closed)
}

func TestMirrorRequiresKey(t *testing.T) {
	_, err := newMirror(newMemHash(), Options{})
	assert.Error(t, err)
}

func TestMirrorPublishError(t *testing.T) {
	h := newMemHash()
	m, err := newMirror(h, Options{Key: "k"})
	require.NoError(t, err)

	h.setErr = errors.New("READONLY")
	err = m.Publish(mqtt.TopicState, "Normal")
	assert.ErrorContains(t, err, "mirror state")
}
