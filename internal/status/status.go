// Package status provides a thread-safe status tracker for the ir-dimmer daemon.
// It is written by the tick loop and read by HTTP handlers and heartbeats.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/ir-dimmer/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	LIRC        string
	EEPROM      string
	Keymap      string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	View          logic.View
	LastCommit    time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the controller view. Called from runLoop on every tick.
func (t *Tracker) Update(view logic.View) {
	t.mu.Lock()
	t.snap.View = view
	t.mu.Unlock()
}

// RecordCommit notes the wall-clock time of the latest store commit.
func (t *Tracker) RecordCommit(at time.Time) {
	t.mu.Lock()
	t.snap.LastCommit = at
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
