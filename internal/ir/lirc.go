package ir

import (
	"encoding/binary"
	"fmt"

	"github.com/sweeney/ir-dimmer/internal/logic"
)

// struct lirc_scancode from <linux/lirc.h>
const scancodeSize = 24

const lircScancodeFlagRepeat = 0x02

// enum rc_proto values from <linux/lirc.h>
const (
	rcProtoRC5   = 2
	rcProtoRC5SZ = 4
	rcProtoNEC   = 9
	rcProtoNECX  = 10
	rcProtoNEC32 = 11
)

// scancode is one decoded frame as reported by the kernel.
type scancode struct {
	Timestamp uint64
	Flags     uint16
	Proto     uint16
	Keycode   uint32
	Scancode  uint64
}

func parseScancode(b []byte) (scancode, error) {
	if len(b) != scancodeSize {
		return scancode{}, fmt.Errorf("short scancode: %d bytes", len(b))
	}
	return scancode{
		Timestamp: binary.NativeEndian.Uint64(b[0:8]),
		Flags:     binary.NativeEndian.Uint16(b[8:10]),
		Proto:     binary.NativeEndian.Uint16(b[10:12]),
		Keycode:   binary.NativeEndian.Uint32(b[12:16]),
		Scancode:  binary.NativeEndian.Uint64(b[16:24]),
	}, nil
}

// command converts a kernel scancode to a logic.Command.
// ok is false for protocols the controller has no layout for.
func (s scancode) command() (logic.Command, bool) {
	cmd := logic.Command{Repeat: s.Flags&lircScancodeFlagRepeat != 0}

	switch s.Proto {
	case rcProtoRC5, rcProtoRC5SZ:
		// address<<8 | command
		cmd.Protocol = logic.ProtocolRC5
		cmd.Code = uint16(s.Scancode & 0xff)
	case rcProtoNEC, rcProtoNECX:
		cmd.Protocol = logic.ProtocolNEC
		cmd.Code = uint16(s.Scancode & 0xff)
	case rcProtoNEC32:
		// Apple remotes: address<<24 | ~address<<16 | command<<8 | id
		cmd.Protocol = logic.ProtocolNEC
		cmd.Code = uint16((s.Scancode >> 8) & 0xff)
	default:
		return logic.Command{}, false
	}
	return cmd, true
}
