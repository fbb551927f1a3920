// Package mirror keeps a copy of the published telemetry in a Redis hash so
// that other services can read the latest values without an MQTT
// subscription, and so the threshold survives a restart.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sweeney/thermal-monitor/internal/mqtt"
)

// FieldUpdated holds the time of the last write, RFC 3339.
const FieldUpdated = "updated_at"

// Options configures the mirror.
type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string        // hash key, e.g. thermal:<client_id>
	Timeout  time.Duration // per-operation deadline
}

// hashStore is the subset of *redis.Client the mirror uses.
type hashStore interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisMirror writes each telemetry value into one field of a hash.
type RedisMirror struct {
	client  hashStore
	key     string
	timeout time.Duration
	now     func() time.Time
}

// NewRedisMirror connects to Redis and checks the connection.
func NewRedisMirror(o Options) (*RedisMirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		PoolSize:     2,
		MinIdleConns: 1,
		MaxRetries:   3,
	})
	return newMirror(client, o)
}

func newMirror(client hashStore, o Options) (*RedisMirror, error) {
	if o.Key == "" {
		return nil, errors.New("mirror: key is required")
	}
	if o.Timeout <= 0 {
		o.Timeout = 2 * time.Second
	}
	m := &RedisMirror{client: client, key: o.Key, timeout: o.Timeout, now: time.Now}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return m, nil
}

// Publish stores payload under field name and stamps the update time.
func (m *RedisMirror) Publish(name, payload string) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	err := m.client.HSet(ctx, m.key, name, payload, FieldUpdated, m.now().UTC().Format(time.RFC3339)).Err()
	if err != nil {
		return fmt.Errorf("mirror %s: %w", name, err)
	}
	return nil
}

// LoadThreshold returns the last mirrored setpoint. ok is false when none has
// been stored yet.
func (m *RedisMirror) LoadThreshold(ctx context.Context) (threshold int, ok bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	val, err := m.client.HGet(ctx, m.key, mqtt.TopicSetpoint).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load threshold: %w", err)
	}

	threshold, err = strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("load threshold: bad value %q: %w", val, err)
	}
	return threshold, true, nil
}

// Close closes the connection pool.
func (m *RedisMirror) Close() error {
	return m.client.Close()
}
