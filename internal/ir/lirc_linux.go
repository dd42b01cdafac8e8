//go:build linux

package ir

import (
	"errors"
	"fmt"

	"github.com/sweeney/ir-dimmer/internal/logic"
	"golang.org/x/sys/unix"
)

const (
	lircSetRecMode   = 0x40046912 // _IOW('i', 0x12, __u32)
	lircModeScancode = 0x00000008
)

// LIRCDecoder reads kernel-decoded scancodes from a LIRC character device.
type LIRCDecoder struct {
	fd   int
	path string
	buf  [scancodeSize]byte
}

// OpenLIRC opens the LIRC device at path in non-blocking scancode mode.
func OpenLIRC(path string) (*LIRCDecoder, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := unix.IoctlSetPointerInt(fd, lircSetRecMode, lircModeScancode); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set scancode mode on %s: %w", path, err)
	}

	return &LIRCDecoder{fd: fd, path: path}, nil
}

// Poll reads at most one scancode. Frames from protocols without a layout are
// reported as unknown-protocol commands so they still count as IR activity.
func (d *LIRCDecoder) Poll() (logic.Command, bool, error) {
	n, err := unix.Read(d.fd, d.buf[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return logic.Command{}, false, nil
		}
		return logic.Command{}, false, fmt.Errorf("read %s: %w", d.path, err)
	}

	sc, err := parseScancode(d.buf[:n])
	if err != nil {
		return logic.Command{}, false, fmt.Errorf("read %s: %w", d.path, err)
	}

	cmd, ok := sc.command()
	if !ok {
		cmd = logic.Command{Protocol: logic.ProtocolUnknown, Repeat: sc.Flags&lircScancodeFlagRepeat != 0}
	}
	return cmd, true, nil
}

// Close releases the device.
func (d *LIRCDecoder) Close() error {
	if err := unix.Close(d.fd); err != nil {
		return fmt.Errorf("close %s: %w", d.path, err)
	}
	return nil
}
