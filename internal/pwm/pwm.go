// Package pwm drives the output level through a PWM channel.
package pwm

// Sink accepts the output level every tick.
type Sink interface {
	// SetLevel sets the duty cycle to level/255.
	SetLevel(level uint8) error

	// Close turns the output off and releases the channel.
	Close() error
}

// SysfsRoot is where the kernel exposes PWM chips.
const SysfsRoot = "/sys/class/pwm"

// DefaultPeriodNs is a 1 kHz PWM period.
const DefaultPeriodNs = 1000000
