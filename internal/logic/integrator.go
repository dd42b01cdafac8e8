package logic

import "math"

// Input is one decoded event after mapping.
type Input struct {
	Action Action
	Repeat bool
}

// InputActivity tracks the current input session.
type InputActivity struct {
	// Whether a session is open
	Open bool
	// Time of the most recent event in the session
	LastEvent Millis
	// Consecutive repeat events since the session opened
	Accel uint8
}

// Integrator turns mapped input events into DeviceState changes.
type Integrator struct {
	state    DeviceState
	activity InputActivity
	irActive bool

	// Unlike activity.LastEvent this survives session close; the
	// persistence scheduler measures settle time from it.
	lastInput Millis
	hasInput  bool
}

// NewIntegrator creates an integrator starting from the given state.
func NewIntegrator(initial DeviceState) *Integrator {
	return &Integrator{state: initial}
}

// OnTick processes the decoder result of one tick. input is nil when the
// decoder had no event. Returns whether DeviceState changed.
func (in *Integrator) OnTick(input *Input, now Millis) bool {
	in.expire(now)
	if input == nil {
		return false
	}

	before := in.state
	step := 1 + int(in.activity.Accel)

	switch input.Action {
	case ActionPowerToggle:
		// Toggling must not auto-repeat from a held button
		if !input.Repeat {
			in.state.Power = !in.state.Power
			if in.state.Power && in.state.Level == 0 {
				in.state.Level = MinLevel
			}
		}
	case ActionLevelUp:
		if in.state.Power && in.state.Level < MaxLevel {
			in.state.Level = uint8(min(int(in.state.Level)+step, int(MaxLevel)))
		}
	case ActionLevelDown:
		if in.state.Power && in.state.Level > 0 {
			in.state.Level = uint8(max(int(in.state.Level)-step, 0))
		}
	}

	if in.activity.Open && input.Repeat && in.activity.Accel < math.MaxUint8 {
		in.activity.Accel++
	}
	in.activity.Open = true
	in.activity.LastEvent = now
	in.irActive = true
	in.lastInput = now
	in.hasInput = true

	return in.state != before
}

// expire closes the session once no event has arrived for longer than SessionTimeout.
func (in *Integrator) expire(now Millis) {
	if !in.activity.Open || now-in.activity.LastEvent <= SessionTimeout {
		return
	}
	in.activity = InputActivity{}
	in.irActive = false
}

// State returns the current device state.
func (in *Integrator) State() DeviceState {
	return in.state
}

// Activity returns the current session state.
func (in *Integrator) Activity() InputActivity {
	return in.activity
}

// IRActive reports whether the "receiving input" indicator should be lit.
func (in *Integrator) IRActive() bool {
	return in.irActive
}

// LastInput returns the time of the most recent event of any session.
// ok is false if no event has been received since boot.
func (in *Integrator) LastInput() (t Millis, ok bool) {
	return in.lastInput, in.hasInput
}
