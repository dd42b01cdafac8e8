// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/ir-dimmer/internal/logic"
)

// TopicEvents is the MQTT topic for commit events.
const TopicEvents = "dimmer/ir/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "dimmer/ir/system"

// TopicCommand is the MQTT topic on which remote commands are accepted.
const TopicCommand = "dimmer/ir/command"

// ClientID identifies the daemon to the broker.
const ClientID = "ir-dimmer"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a commit event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event CommitEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommitEvent reports state that was written to non-volatile storage.
type CommitEvent struct {
	Timestamp time.Time
	State     logic.DeviceState
	Commits   []logic.Commit
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Dimmer DimmerPayload `json:"dimmer"`
}

// DimmerPayload contains the commit event details.
type DimmerPayload struct {
	Timestamp string   `json:"timestamp"`
	Event     string   `json:"event"`
	Power     string   `json:"power"`
	Level     uint8    `json:"level"`
	Fields    []string `json:"fields"`
}

// PowerString renders a power flag the way payloads and the status page do.
func PowerString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// FormatPayload creates the JSON payload for a commit event.
func FormatPayload(event CommitEvent) ([]byte, error) {
	fields := make([]string, 0, len(event.Commits))
	for _, c := range event.Commits {
		fields = append(fields, string(c.Field))
	}
	payload := Payload{
		Dimmer: DimmerPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     "COMMIT",
			Power:     PowerString(event.State.Power),
			Level:     event.State.Level,
			Fields:    fields,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// CommandPayload is a remote command received on TopicCommand.
type CommandPayload struct {
	Protocol string `json:"protocol"`
	Command  uint16 `json:"command"`
	Repeat   bool   `json:"repeat"`
}

// ParseCommand decodes a command message.
func ParseCommand(data []byte) (logic.Command, error) {
	var p CommandPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return logic.Command{}, fmt.Errorf("decode command: %w", err)
	}
	proto, err := logic.ParseProtocol(p.Protocol)
	if err != nil {
		return logic.Command{}, fmt.Errorf("decode command: %w", err)
	}
	return logic.Command{Protocol: proto, Code: p.Command, Repeat: p.Repeat}, nil
}
