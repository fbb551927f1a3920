package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Options configures a RealPublisher.
type Options struct {
	Broker         string // e.g. tcp://localhost:1883
	ClientID       string
	Username       string
	Password       string
	ConnectTimeout time.Duration // how long NewRealPublisher waits for the first connection
	KeepAlive      time.Duration

	// OnConnectionChange, if set, is called whenever the connection goes up
	// or down.
	OnConnectionChange func(connected bool)
}

// pendingCapacity bounds the system events held while disconnected.
const pendingCapacity = 16

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client   paho.Client
	clientID string
	onChange func(bool)

	mu        sync.Mutex
	pending   *ringBuffer // system events awaiting a connection
	connected bool
	connects  int
}

// NewRealPublisher creates a publisher for the given broker. The client
// reconnects on its own; if the broker is not reachable within the connect
// timeout the publisher is still returned and keeps retrying in the
// background.
func NewRealPublisher(o Options) (*RealPublisher, error) {
	if o.ClientID == "" {
		return nil, fmt.Errorf("mqtt: client id is required")
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	if o.KeepAlive <= 0 {
		o.KeepAlive = 60 * time.Second
	}

	p := &RealPublisher{
		clientID: o.ClientID,
		onChange: o.OnConnectionChange,
		pending:  newRingBuffer(pendingCapacity),
	}

	will, err := FormatSystemPayload(WillEvent(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetUsername(o.Username).
		SetPassword(o.Password).
		SetKeepAlive(o.KeepAlive).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(FullTopic(o.ClientID, TopicSystem), string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(o.ConnectTimeout) {
		log.Printf("mqtt: broker %s not reachable after %v, retrying in background", o.Broker, o.ConnectTimeout)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	p.connected = true
	p.connects++
	reconnect := p.connects > 1
	backlog := p.pending.drainAll()
	p.mu.Unlock()

	log.Printf("mqtt: connected")
	if p.onChange != nil {
		p.onChange(true)
	}

	// The handler runs on its own goroutine, so waiting here is safe.
	for _, m := range backlog {
		if err := p.publishRaw(m); err != nil {
			log.Printf("mqtt: replay buffered event: %v", err)
		}
	}
	if reconnect {
		if err := p.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"}); err != nil {
			log.Printf("mqtt: publish RECONNECTED: %v", err)
		}
	}
}

func (p *RealPublisher) onConnectionLost(c paho.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()

	log.Printf("mqtt: connection lost: %v", err)
	if p.onChange != nil {
		p.onChange(false)
	}
}

// Publish sends a telemetry value. QoS 1 (at-least-once), not retained.
// While disconnected it returns ErrNotConnected without buffering.
func (p *RealPublisher) Publish(name, payload string) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}

	token := p.client.Publish(FullTopic(p.clientID, name), 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s timeout", name)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", name, err)
	}

	return nil
}

// PublishSystem sends a system lifecycle event. Events raised while
// disconnected are held (oldest dropped first) and sent on reconnect.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	msg := bufferedMsg{
		topic:    FullTopic(p.clientID, TopicSystem),
		payload:  payload,
		qos:      1,
		retained: event.Retained,
	}

	p.mu.Lock()
	if !p.connected {
		p.pending.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	return p.publishRaw(msg)
}

func (p *RealPublisher) publishRaw(m bufferedMsg) error {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// IsConnected reports whether the client currently holds a connection.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
