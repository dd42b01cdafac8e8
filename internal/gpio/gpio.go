// Package gpio drives the indicator LED with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Writer drives a single binary output.
type Writer interface {
	// Set drives the output high (true) or low (false).
	Set(on bool) error

	// Close releases GPIO resources.
	Close() error
}

// Default indicator line (BCM numbering).
const DefaultPinLED = 17

// DefaultChip is the GPIO chip of the Raspberry Pi header.
const DefaultChip = "gpiochip0"
