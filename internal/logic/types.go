// Package logic contains the pure control logic of the IR dimmer.
// This package has NO external dependencies (no GPIO, IR, storage, or wall clock).
// Time is always injectable as a Millis timestamp.
package logic

import "fmt"

// Millis is a monotonic timestamp in milliseconds since boot.
type Millis uint64

// Timing policy.
const (
	// SessionTimeout is the longest gap between events of one button press-and-hold.
	SessionTimeout Millis = 200
	// SettlePeriod is the quiet time after the last input before a change is committed.
	SettlePeriod Millis = 60000
	// TogglePeriod is the interval between indicator toggles while blinking.
	TogglePeriod Millis = 40
)

// BlinkPulses is the number of indicator toggles in one feedback cycle.
const BlinkPulses uint8 = 16

// Level bounds. MinLevel is the lowest level a powered-on device may have.
const (
	MinLevel uint8 = 1
	MaxLevel uint8 = 255
)

// Protocol identifies the IR protocol family a command was decoded from.
type Protocol uint8

const (
	ProtocolUnknown Protocol = iota
	ProtocolRC5
	ProtocolNEC
)

func (p Protocol) String() string {
	switch p {
	case ProtocolRC5:
		return "rc5"
	case ProtocolNEC:
		return "nec"
	default:
		return "unknown"
	}
}

// ParseProtocol returns the protocol named s ("rc5" or "nec").
func ParseProtocol(s string) (Protocol, error) {
	switch s {
	case "rc5", "RC5":
		return ProtocolRC5, nil
	case "nec", "NEC", "apple":
		return ProtocolNEC, nil
	}
	return ProtocolUnknown, fmt.Errorf("unknown protocol %q", s)
}

// Command is a single decoded remote-control event.
type Command struct {
	Protocol Protocol
	Code     uint16
	Repeat   bool // set when the decoder saw a held-button repeat frame
}

// Action is what a command asks the controller to do.
type Action uint8

const (
	ActionNone Action = iota
	ActionPowerToggle
	ActionLevelUp
	ActionLevelDown
)

func (a Action) String() string {
	switch a {
	case ActionPowerToggle:
		return "POWER_TOGGLE"
	case ActionLevelUp:
		return "LEVEL_UP"
	case ActionLevelDown:
		return "LEVEL_DOWN"
	default:
		return "NONE"
	}
}

// DeviceState is the user-visible state of the controller.
type DeviceState struct {
	Power bool
	Level uint8
}

// Output returns the PWM level the sink should receive for this state.
func (s DeviceState) Output() uint8 {
	if !s.Power {
		return 0
	}
	return s.Level
}

// Field names a persisted part of DeviceState.
type Field string

const (
	FieldPower Field = "power"
	FieldLevel Field = "level"
)

// Commit is a single field write that the persistence scheduler decided on.
type Commit struct {
	Field Field
	Value uint8
}

// Output is everything the tick loop must apply to hardware after a tick.
type Output struct {
	PWM       uint8
	Indicator bool
	State     DeviceState
	Changed   bool     // DeviceState changed during this tick
	Commits   []Commit // nil unless the scheduler fired
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Uptime  Millis
	State   DeviceState
	Commits int
}
