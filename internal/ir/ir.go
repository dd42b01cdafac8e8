// Package ir provides decoded remote-control commands with hardware abstraction.
// The real implementation reads kernel-decoded scancodes from a LIRC device.
// The fake implementation allows testing without hardware.
package ir

import (
	"errors"

	"github.com/sweeney/ir-dimmer/internal/logic"
)

// Decoder supplies decoded commands, at most one per call.
type Decoder interface {
	// Poll returns the next command if one is available. It never blocks;
	// ok is false when there is no event this tick.
	Poll() (cmd logic.Command, ok bool, err error)

	// Close releases decoder resources.
	Close() error
}

// DefaultDevice is the LIRC character device of the first IR receiver.
const DefaultDevice = "/dev/lirc0"

// ErrQueueFull is returned by QueueDecoder.Push when the queue has no room.
var ErrQueueFull = errors.New("ir: command queue full")

type multiDecoder []Decoder

// Multi returns a Decoder that polls each decoder in order and returns the
// first event found. This lets several receivers (or a network remote) share
// the single per-tick decoder slot.
func Multi(decoders ...Decoder) Decoder {
	return multiDecoder(decoders)
}

func (m multiDecoder) Poll() (logic.Command, bool, error) {
	var errs []error
	for _, d := range m {
		cmd, ok, err := d.Poll()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			return cmd, true, nil
		}
	}
	return logic.Command{}, false, errors.Join(errs...)
}

func (m multiDecoder) Close() error {
	var errs []error
	for _, d := range m {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
