package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Power         string        `json:"power"`
	Level         uint8         `json:"level"`
	Output        uint8         `json:"output"`
	Committed     CommittedJSON `json:"committed"`
	Indicator     IndicatorJSON `json:"indicator"`
	Commits       int           `json:"commits"`
	LastCommit    string        `json:"last_commit,omitempty"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Config        ConfigJSON    `json:"config"`
}

// CommittedJSON is the state last written to the store.
type CommittedJSON struct {
	Power string `json:"power"`
	Level uint8  `json:"level"`
}

// IndicatorJSON reports the indicator pin and who drives it.
type IndicatorJSON struct {
	On             bool   `json:"on"`
	Owner          string `json:"owner"`
	IRActive       bool   `json:"ir_active"`
	BlinkRemaining uint8  `json:"blink_remaining"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	LIRC        string `json:"lirc"`
	EEPROM      string `json:"eeprom"`
	Keymap      string `json:"keymap,omitempty"`
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func buildInner(snap Snapshot) StatusInner {
	v := snap.View
	inner := StatusInner{
		Power:  onOff(v.State.Power),
		Level:  v.State.Level,
		Output: v.State.Output(),
		Committed: CommittedJSON{
			Power: onOff(v.Committed.Power),
			Level: v.Committed.Level,
		},
		Indicator: IndicatorJSON{
			On:             v.Indicator,
			Owner:          v.Owner.String(),
			IRActive:       v.IRActive,
			BlinkRemaining: v.BlinkRemaining,
		},
		Commits:       v.Commits,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			LIRC:        snap.Config.LIRC,
			EEPROM:      snap.Config.EEPROM,
			Keymap:      snap.Config.Keymap,
		},
	}
	if !snap.LastCommit.IsZero() {
		inner.LastCommit = snap.LastCommit.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
