package logic

// PinOwner says which component currently drives the indicator pin.
type PinOwner uint8

const (
	// OwnerActivity: the pin mirrors the "receiving input" indicator.
	OwnerActivity PinOwner = iota
	// OwnerBlink: the feedback blinker holds the pin until its cycle ends.
	OwnerBlink
)

func (o PinOwner) String() string {
	if o == OwnerBlink {
		return "BLINK"
	}
	return "ACTIVITY"
}

// Blinker is the commit feedback pulse train: Idle -> Blinking(remaining) -> Idle.
type Blinker struct {
	remaining  uint8
	level      bool
	started    bool
	lastToggle Millis
}

// Trigger starts a blink cycle from the pin's current level.
// A trigger while a cycle is running is ignored. Returns whether a cycle started.
func (b *Blinker) Trigger(current bool) bool {
	if b.remaining > 0 {
		return false
	}
	b.remaining = BlinkPulses
	b.level = current
	b.started = false
	return true
}

// Tick advances the pulse train. The first toggle happens on the first tick
// after Trigger, later ones every TogglePeriod. It returns the blink level and
// whether the blinker still owns the pin; ownership is released on the tick
// that performs the final toggle.
func (b *Blinker) Tick(now Millis) (level bool, owned bool) {
	if b.remaining == 0 {
		return false, false
	}
	if !b.started || now-b.lastToggle >= TogglePeriod {
		b.level = !b.level
		b.remaining--
		b.lastToggle = now
		b.started = true
	}
	if b.remaining == 0 {
		return false, false
	}
	return b.level, true
}

// Remaining returns the number of toggles left in the current cycle.
func (b *Blinker) Remaining() uint8 {
	return b.remaining
}

// Owner returns who owns the indicator pin right now.
func (b *Blinker) Owner() PinOwner {
	if b.remaining > 0 {
		return OwnerBlink
	}
	return OwnerActivity
}
