package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/ir-dimmer/internal/logic"
)

func TestFormatPayload(t *testing.T) {
	event := CommitEvent{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		State:     logic.DeviceState{Power: true, Level: 17},
		Commits: []logic.Commit{
			{Field: logic.FieldPower, Value: 1},
			{Field: logic.FieldLevel, Value: 17},
		},
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Dimmer.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Dimmer.Timestamp)
	}
	if parsed.Dimmer.Event != "COMMIT" {
		t.Errorf("unexpected event: %s", parsed.Dimmer.Event)
	}
	if parsed.Dimmer.Power != "ON" {
		t.Errorf("unexpected power: %s", parsed.Dimmer.Power)
	}
	if parsed.Dimmer.Level != 17 {
		t.Errorf("unexpected level: %d", parsed.Dimmer.Level)
	}
	if len(parsed.Dimmer.Fields) != 2 || parsed.Dimmer.Fields[0] != "power" || parsed.Dimmer.Fields[1] != "level" {
		t.Errorf("unexpected fields: %v", parsed.Dimmer.Fields)
	}
}

func TestFormatPayloadNonUTC(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	event := CommitEvent{
		Timestamp: time.Date(2026, 2, 2, 17, 18, 12, 0, loc),
		State:     logic.DeviceState{Power: false, Level: 3},
		Commits:   []logic.Commit{{Field: logic.FieldPower, Value: 0}},
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Dimmer.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Dimmer.Timestamp)
	}
	if parsed.Dimmer.Power != "OFF" {
		t.Errorf("unexpected power: %s", parsed.Dimmer.Power)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.System.Event != "SHUTDOWN" || parsed.System.Reason != "SIGTERM" {
		t.Errorf("unexpected payload: %+v", parsed.System)
	}

	// Reason omitted when empty
	payload, _ = FormatSystemPayload(SystemEvent{Timestamp: event.Timestamp, Event: "OFFLINE"})
	var raw map[string]map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := raw["system"]["reason"]; ok {
		t.Error("reason should be omitted when empty")
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"HEARTBEAT"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "HEARTBEAT", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload, got %s", payload)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want logic.Command
	}{
		{`{"protocol":"rc5","command":16}`, logic.Command{Protocol: logic.ProtocolRC5, Code: 16}},
		{`{"protocol":"nec","command":92,"repeat":true}`, logic.Command{Protocol: logic.ProtocolNEC, Code: 92, Repeat: true}},
		{`{"protocol":"apple","command":10}`, logic.Command{Protocol: logic.ProtocolNEC, Code: 10}},
	}
	for _, tt := range tests {
		got, err := ParseCommand([]byte(tt.in))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, in := range []string{
		`not json`,
		`{"protocol":"sony","command":1}`,
		`{"command":1}`,
		`{"protocol":"rc5","command":-1}`,
	} {
		if _, err := ParseCommand([]byte(in)); err == nil {
			t.Errorf("%s: expected error", in)
		}
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()
	event := CommitEvent{Timestamp: time.Now(), State: logic.DeviceState{Power: true, Level: 9}}

	if err := f.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Events) != 1 || len(f.Payloads) != 1 {
		t.Errorf("expected 1 event recorded, got %d", len(f.Events))
	}
	if names := f.SystemEventNames(); len(names) != 1 || names[0] != "STARTUP" {
		t.Errorf("unexpected system events: %v", names)
	}

	f.PublishError = errors.New("broker down")
	if err := f.Publish(event); err == nil {
		t.Error("expected publish error")
	}
	if len(f.Events) != 1 {
		t.Error("failed publish should not be recorded")
	}
}

// offlinePublisher returns a RealPublisher whose client never connects.
func offlinePublisher(onCommand func(logic.Command)) *RealPublisher {
	return &RealPublisher{
		client:    paho.NewClient(paho.NewClientOptions().AddBroker("tcp://127.0.0.1:1")),
		onCommand: onCommand,
		pending:   newOutbox(outboxSize),
	}
}

func TestRealPublisherBuffersWhileDisconnected(t *testing.T) {
	p := offlinePublisher(nil)

	event := CommitEvent{Timestamp: time.Now(), State: logic.DeviceState{Power: true, Level: 9}}
	if err := p.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "HEARTBEAT"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.IsConnected() {
		t.Error("offline publisher should not report connected")
	}
	if got := p.Buffered(); got != 2 {
		t.Errorf("expected 2 buffered messages, got %d", got)
	}

	p.mu.Lock()
	msgs, _ := p.pending.take()
	p.mu.Unlock()
	if msgs[0].topic != TopicEvents || msgs[0].qos != 0 {
		t.Errorf("unexpected commit message: topic=%s qos=%d", msgs[0].topic, msgs[0].qos)
	}
	if msgs[1].topic != TopicSystem || msgs[1].qos != 1 {
		t.Errorf("unexpected system message: topic=%s qos=%d", msgs[1].topic, msgs[1].qos)
	}
}

// fakeMessage implements paho.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func TestRealPublisherHandleCommand(t *testing.T) {
	var got []logic.Command
	p := offlinePublisher(func(cmd logic.Command) { got = append(got, cmd) })

	p.handleCommand(nil, &fakeMessage{topic: TopicCommand, payload: []byte(`{"protocol":"rc5","command":12}`)})
	p.handleCommand(nil, &fakeMessage{topic: TopicCommand, payload: []byte(`garbage`)})

	if len(got) != 1 {
		t.Fatalf("expected 1 command delivered, got %d", len(got))
	}
	if got[0] != (logic.Command{Protocol: logic.ProtocolRC5, Code: logic.RC5Power}) {
		t.Errorf("unexpected command: %+v", got[0])
	}
}
