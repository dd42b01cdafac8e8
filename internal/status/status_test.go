package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/ir-dimmer/internal/logic"
)

func testView() logic.View {
	return logic.View{
		State:          logic.DeviceState{Power: true, Level: 17},
		Committed:      logic.DeviceState{Power: true, Level: 10},
		IRActive:       true,
		Indicator:      false,
		Owner:          logic.OwnerBlink,
		BlinkRemaining: 9,
		Commits:        4,
	}
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{PollMs: 5, Broker: "tcp://localhost:1883", HTTPAddr: ":80", LIRC: "/dev/lirc0"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.PollMs != 5 {
		t.Errorf("Config.PollMs: got %d, want 5", snap.Config.PollMs)
	}
	if snap.Config.LIRC != "/dev/lirc0" {
		t.Errorf("Config.LIRC: got %q", snap.Config.LIRC)
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
	if !snap.LastCommit.IsZero() {
		t.Error("expected no commit initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(testView())

	snap := tr.Snapshot()
	if snap.View != testView() {
		t.Errorf("View: got %+v, want %+v", snap.View, testView())
	}
}

func TestRecordCommit(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	tr.RecordCommit(at)
	if got := tr.Snapshot().LastCommit; !got.Equal(at) {
		t.Errorf("LastCommit: got %v, want %v", got, at)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotNowIsSet(t *testing.T) {
	tr := NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Config{})

	before := time.Now()
	snap := tr.Snapshot()
	after := time.Now()

	if snap.Now.Before(before) || snap.Now.After(after) {
		t.Errorf("Now (%v) not between %v and %v", snap.Now, before, after)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(testView())

	snap1 := tr.Snapshot()

	v := testView()
	v.State.Level = 200
	tr.Update(v)

	if snap1.View.State.Level != 17 {
		t.Error("snapshot should be a copy; level was modified")
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		View:          testView(),
		LastCommit:    start.Add(5 * time.Minute),
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{PollMs: 5, HeartbeatMs: 900000, Broker: "tcp://localhost:1883", HTTPAddr: ":80"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := parsed.Status
	if s.Power != "ON" || s.Level != 17 || s.Output != 17 {
		t.Errorf("state: got power=%s level=%d output=%d", s.Power, s.Level, s.Output)
	}
	if s.Committed.Power != "ON" || s.Committed.Level != 10 {
		t.Errorf("committed: got %+v", s.Committed)
	}
	if s.Indicator.On || s.Indicator.Owner != "BLINK" || !s.Indicator.IRActive || s.Indicator.BlinkRemaining != 9 {
		t.Errorf("indicator: got %+v", s.Indicator)
	}
	if s.Commits != 4 {
		t.Errorf("Commits: got %d, want 4", s.Commits)
	}
	if s.LastCommit != "2026-01-01T00:05:00Z" {
		t.Errorf("LastCommit: got %q", s.LastCommit)
	}
	if s.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", s.UptimeSeconds)
	}
	if !s.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	// Event and Reason should be omitted
	if s.Event != "" || s.Reason != "" {
		t.Errorf("expected empty event/reason for web format, got %q/%q", s.Event, s.Reason)
	}
}

func TestFormatJSONPowerOff(t *testing.T) {
	snap := Snapshot{
		View:      logic.View{State: logic.DeviceState{Power: false, Level: 80}},
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Power != "OFF" || parsed.Status.Level != 80 {
		t.Errorf("got power=%s level=%d", parsed.Status.Power, parsed.Status.Level)
	}
	if parsed.Status.Output != 0 {
		t.Errorf("Output: got %d, want 0 while off", parsed.Status.Output)
	}
	if parsed.Status.Indicator.Owner != "ACTIVITY" {
		t.Errorf("Owner: got %q, want ACTIVITY", parsed.Status.Indicator.Owner)
	}
	if parsed.Status.LastCommit != "" {
		t.Errorf("LastCommit should be omitted before any commit, got %q", parsed.Status.LastCommit)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		View:          testView(),
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{PollMs: 5, Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "HEARTBEAT", "")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "HEARTBEAT" {
		t.Errorf("Event: got %q, want HEARTBEAT", parsed.Status.Event)
	}
	if parsed.Status.Level != 17 {
		t.Errorf("Level: got %d, want 17", parsed.Status.Level)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
}

func TestFormatStatusEventShutdown(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(30 * time.Minute),
		Config:    Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	status := raw["status"].(map[string]interface{})
	if _, exists := status["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			v := testView()
			v.State.Level = uint8(i)
			tr.Update(v)
			tr.SetMQTTConnected(i%2 == 0)
			tr.RecordCommit(time.Now())
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = snap.Uptime()
			_ = FormatJSON(snap)
		}
	}()

	wg.Wait()
}
