//go:build !linux

package ir

import (
	"errors"

	"github.com/sweeney/ir-dimmer/internal/logic"
)

// LIRCDecoder is not available on non-Linux platforms.
type LIRCDecoder struct{}

// OpenLIRC returns an error on non-Linux platforms.
func OpenLIRC(path string) (*LIRCDecoder, error) {
	return nil, errors.New("ir: LIRC not supported on this platform (requires Linux)")
}

// Poll is not implemented on non-Linux platforms.
func (d *LIRCDecoder) Poll() (logic.Command, bool, error) {
	return logic.Command{}, false, errors.New("ir: not supported")
}

// Close is not implemented on non-Linux platforms.
func (d *LIRCDecoder) Close() error {
	return nil
}
