package mqtt

import (
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/ir-dimmer/internal/logic"
)

const (
	outboxSize     = 64
	publishTimeout = 5 * time.Second
)

// RealPublisher publishes to an actual MQTT broker. Publishing never blocks
// the caller: messages are handed to paho and completion is checked in the
// background; while disconnected they are held in an outbox and replayed on
// reconnect.
type RealPublisher struct {
	client    paho.Client
	onCommand func(logic.Command)

	mu      sync.Mutex
	pending *outbox
}

// NewRealPublisher creates a publisher for the given broker and starts
// connecting in the background. If onCommand is non-nil, commands received on
// TopicCommand are passed to it from paho's goroutine.
func NewRealPublisher(broker string, onCommand func(logic.Command)) *RealPublisher {
	p := &RealPublisher{
		onCommand: onCommand,
		pending:   newOutbox(outboxSize),
	}

	will, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE"})
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	// With ConnectRetry the token only completes once connected
	p.client.Connect()
	return p
}

func (p *RealPublisher) onConnect(c paho.Client) {
	log.Printf("mqtt: connected")
	if p.onCommand != nil {
		watch("subscribe "+TopicCommand, c.Subscribe(TopicCommand, 0, p.handleCommand))
	}
	p.flush()
}

func (p *RealPublisher) handleCommand(_ paho.Client, msg paho.Message) {
	cmd, err := ParseCommand(msg.Payload())
	if err != nil {
		log.Printf("mqtt: ignoring command on %s: %v", msg.Topic(), err)
		return
	}
	p.onCommand(cmd)
}

// flush replays messages held while disconnected.
func (p *RealPublisher) flush() {
	p.mu.Lock()
	msgs, dropped := p.pending.take()
	p.mu.Unlock()

	if dropped > 0 {
		log.Printf("mqtt: %d messages dropped while disconnected", dropped)
	}
	for _, m := range msgs {
		p.send(m)
	}
	if len(msgs) > 0 {
		log.Printf("mqtt: replayed %d buffered messages", len(msgs))
	}
}

func (p *RealPublisher) send(m message) {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.pending.add(m)
		p.mu.Unlock()
		return
	}
	watch("publish "+m.topic, p.client.Publish(m.topic, m.qos, m.retained, m.payload))
}

// watch logs a failed or timed-out token without blocking the caller.
func watch(what string, token paho.Token) {
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			log.Printf("mqtt: %s: timeout", what)
			return
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: %s: %v", what, err)
		}
	}()
}

// Publish sends a commit event to the MQTT broker.
func (p *RealPublisher) Publish(event CommitEvent) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	// QoS 0 (at-most-once), not retained
	p.send(message{topic: TopicEvents, payload: payload})
	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	// QoS 1 (at-least-once) for lifecycle events
	p.send(message{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
	return nil
}

// IsConnected reports whether the client is connected to the broker.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second quiesce
	return nil
}
